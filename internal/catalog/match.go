package catalog

import (
	"strings"

	"github.com/tayloree/shopcli/internal/api"
)

// MatchesCategory reports whether p belongs to the category called name. The
// association signals are tried in a fixed order and the first hit wins:
// the category field, tags, populated subcategories, the legacy singular
// subcategory, and finally, for products carrying no tags field, the product
// name. An empty tag list still counts as tags and disables the name check.
func MatchesCategory(p api.Product, name string) bool {
	want := Normalize(name)
	if want == "" {
		return false
	}

	if Normalize(p.Category) == want {
		return true
	}
	for _, tag := range p.Tags {
		if Normalize(tag) == want {
			return true
		}
	}
	for _, sub := range p.SubCategories {
		if Normalize(sub.Name) == want {
			return true
		}
	}
	if p.SubCategory != nil && Normalize(p.SubCategory.Name) == want {
		return true
	}

	if p.Tags != nil {
		return false
	}
	return strings.Contains(strings.ToLower(p.Name), want)
}

// MatchProducts selects the products under a breadcrumb chain. A product must
// match the base category and, when the chain is deeper than one level, the
// deepest category as well. Intermediate levels are not checked.
func MatchProducts(products []api.Product, breadcrumbs []api.Category) []api.Product {
	if len(breadcrumbs) == 0 {
		return []api.Product{}
	}

	base := breadcrumbs[0].Name
	deepest := ""
	if len(breadcrumbs) > 1 {
		deepest = breadcrumbs[len(breadcrumbs)-1].Name
	}

	result := make([]api.Product, 0, len(products))
	for _, p := range products {
		if !MatchesCategory(p, base) {
			continue
		}
		if deepest != "" && !MatchesCategory(p, deepest) {
			continue
		}
		result = append(result, p)
	}
	return result
}
