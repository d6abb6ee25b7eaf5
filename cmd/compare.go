package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tayloree/shopcli/internal/api"
	"github.com/tayloree/shopcli/internal/catalog"
	"github.com/tayloree/shopcli/internal/display"
	"github.com/tayloree/shopcli/internal/filter"
)

type comparePathResult struct {
	Rank         int      `json:"rank"`
	Path         string   `json:"path"`
	Category     string   `json:"category"`
	IsLeaf       bool     `json:"isLeaf"`
	Matched      int      `json:"matched"`
	Filtered     int      `json:"filtered"`
	Cheapest     *float64 `json:"cheapest"`
	CheapestName string   `json:"cheapestName"`
	TopRated     string   `json:"topRated"`
}

var compareCmd = &cobra.Command{
	Use:   "compare PATH PATH...",
	Short: "Compare category paths under the same filters",
	Long: "Apply one filter state to several category paths and rank them by how many\n" +
		"products survive, then by the cheapest surviving price.",
	Example: `  shopcli compare Electronics/Mobiles Electronics/Laptops
  shopcli compare Electronics/Mobiles Fashion --max-price 20000 --min-discount 20
  shopcli compare Electronics/Mobiles Electronics/Laptops --brand Apple --json`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
	registerFilterFlags(compareCmd.Flags())
}

func runCompare(cmd *cobra.Command, args []string) error {
	opts, err := filterOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	return withCatalog(cmd, func(_ *session, snap *api.Snapshot) error {
		results := make([]comparePathResult, 0, len(args))
		var unknown []string
		for _, raw := range args {
			path := categoryPath([]string{raw})
			listing, err := catalog.Browse(snap.Categories, snap.Products, catalog.Request{
				Path:   path,
				Filter: opts,
				Sort:   filter.SortPriceAsc,
			})
			if errors.Is(err, catalog.ErrCategoryNotFound) {
				unknown = append(unknown, path)
				continue
			}
			if err != nil {
				return err
			}
			results = append(results, summarizeListing(path, listing))
		}

		if len(results) == 0 {
			return notFoundError(
				fmt.Sprintf("no category matches any of %s", strings.Join(unknown, ", ")),
				"Run `shopcli categories` to list valid paths.",
			)
		}

		rankCompareResults(results)

		if flagJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(results)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "\nCategory comparison (%d path(s))\n\n", len(results))
		for _, r := range results {
			cheapest := "-"
			if r.Cheapest != nil {
				cheapest = fmt.Sprintf("%s (%s)", display.FormatPrice(*r.Cheapest), r.CheapestName)
			}
			fmt.Fprintf(out,
				"%d. %s\n   matches: %d | after filters: %d | cheapest: %s\n   top rated: %s\n\n",
				r.Rank,
				r.Path,
				r.Matched,
				r.Filtered,
				cheapest,
				emptyIf(r.TopRated, "-"),
			)
		}
		if len(unknown) > 0 {
			fmt.Fprintf(out, "note: skipped unknown path(s): %s\n", strings.Join(unknown, ", "))
		}
		return nil
	})
}

// summarizeListing expects products sorted by ascending price.
func summarizeListing(path string, listing *catalog.Listing) comparePathResult {
	r := comparePathResult{
		Path:     strings.Join(listing.Resolution.Names(), "/"),
		Category: listing.Resolution.Node.Name,
		IsLeaf:   listing.Resolution.IsLeaf,
		Matched:  listing.Matched,
		Filtered: listing.Total,
	}
	if r.Path == "" {
		r.Path = path
	}
	if len(listing.Products) == 0 {
		return r
	}

	cheapest := listing.Products[0]
	r.Cheapest = filter.Float(cheapest.Price)
	r.CheapestName = productTitle(cheapest)
	if rated := filter.Sort(listing.Products, filter.SortRating)[0]; rated.Rating != nil {
		r.TopRated = fmt.Sprintf("%s (★ %.1f)", productTitle(rated), *rated.Rating)
	}
	return r
}

func rankCompareResults(results []comparePathResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Filtered != results[j].Filtered {
			return results[i].Filtered > results[j].Filtered
		}
		return cheaper(results[i].Cheapest, results[j].Cheapest)
	})
	for i := range results {
		results[i].Rank = i + 1
	}
}

func cheaper(a, b *float64) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a < *b
	}
}

func productTitle(p api.Product) string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	if p.ID != "" {
		return "Product " + p.ID
	}
	return "Unnamed product"
}

func emptyIf(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
