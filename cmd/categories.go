package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tayloree/shopcli/internal/api"
	"github.com/tayloree/shopcli/internal/display"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Show the category tree",
	Example: `  shopcli categories
  shopcli categories --catalog ./catalog.json --json`,
	RunE: runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	return withCatalog(cmd, func(_ *session, snap *api.Snapshot) error {
		if len(snap.Categories) == 0 {
			return notFoundError("the catalog has no categories", "Check --api or --catalog.")
		}

		if flagJSON {
			return display.PrintCategoriesJSON(cmd.OutOrStdout(), snap.Categories)
		}
		display.PrintCategoryTree(cmd.OutOrStdout(), snap.Categories)
		return nil
	})
}
