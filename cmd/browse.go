package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tayloree/shopcli/internal/api"
	"github.com/tayloree/shopcli/internal/catalog"
	"github.com/tayloree/shopcli/internal/display"
)

var browseCmd = &cobra.Command{
	Use:   "browse PATH",
	Short: "List the products of a category path with filters applied",
	Long: "Resolve a category path such as Electronics/Mobiles, select the products that\n" +
		"belong to it, then narrow and sort them. Unknown deeper segments are ignored;\n" +
		"an unknown first segment is an error.",
	Example: `  shopcli browse Electronics
  shopcli browse Electronics/Mobiles --brand Samsung --brand Apple
  shopcli browse "Electronics/Smart Watches" --sort rating --limit 5
  shopcli browse Electronics Mobiles --min-discount 20 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
	registerFilterFlags(browseCmd.Flags())
}

func runBrowse(cmd *cobra.Command, args []string) error {
	path := categoryPath(args)
	opts, err := filterOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	return withCatalog(cmd, func(s *session, snap *api.Snapshot) error {
		strategy, err := sortStrategyFromFlags(s.cfg.Defaults.Sort)
		if err != nil {
			return err
		}
		limit, err := limitFromFlags(s.cfg.Defaults.Limit)
		if err != nil {
			return err
		}

		listing, err := catalog.Browse(snap.Categories, snap.Products, catalog.Request{
			Path:   path,
			Filter: opts,
			Sort:   strategy,
			Limit:  limit,
		})
		if err != nil {
			return categoryError(path, err)
		}

		if listing.Total == 0 {
			where := strings.Join(listing.Resolution.Names(), " › ")
			if listing.Matched == 0 {
				return notFoundError(
					fmt.Sprintf("no products found in %s", where),
					"Try a parent category.",
				)
			}
			return notFoundError(
				fmt.Sprintf("no products in %s match your filters", where),
				"Relax filters like --brand/--ram/--tag/--min-discount.",
				fmt.Sprintf("shopcli facets %q", path),
			)
		}

		if flagJSON {
			return display.PrintListingJSON(cmd.OutOrStdout(), listing)
		}
		display.PrintListing(cmd.OutOrStdout(), listing)
		return nil
	})
}
