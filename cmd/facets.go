package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tayloree/shopcli/internal/api"
	"github.com/tayloree/shopcli/internal/catalog"
	"github.com/tayloree/shopcli/internal/display"
)

var flagBrandSearch string

var facetsCmd = &cobra.Command{
	Use:   "facets PATH",
	Short: "Show the brands, RAM sizes, tags and price range available in a category",
	Example: `  shopcli facets Electronics/Mobiles
  shopcli facets Electronics --brand-search sam --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFacets,
}

func init() {
	rootCmd.AddCommand(facetsCmd)
	facetsCmd.Flags().StringVar(&flagBrandSearch, "brand-search", "", "Only show brands containing this text")
}

func runFacets(cmd *cobra.Command, args []string) error {
	path := categoryPath(args)

	return withCatalog(cmd, func(_ *session, snap *api.Snapshot) error {
		res, facets, err := catalog.FacetsFor(snap.Categories, snap.Products, path)
		if err != nil {
			return categoryError(path, err)
		}
		if flagBrandSearch != "" {
			facets.Brands = catalog.SearchFacet(facets.Brands, flagBrandSearch)
		}

		if flagJSON {
			return display.PrintFacetsJSON(cmd.OutOrStdout(), res, facets)
		}
		display.PrintFacets(cmd.OutOrStdout(), res, facets)
		return nil
	})
}
