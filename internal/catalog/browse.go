package catalog

import (
	"fmt"

	"github.com/tayloree/shopcli/internal/api"
	"github.com/tayloree/shopcli/internal/filter"
)

// Request describes one category page view.
type Request struct {
	Path   string
	Filter filter.Options
	Sort   filter.SortStrategy
	Limit  int
}

// Listing is the computed view of a category page.
type Listing struct {
	Resolution *Resolution         `json:"resolution"`
	Facets     Facets              `json:"facets"`
	Filter     filter.Options      `json:"filter"`
	Sort       filter.SortStrategy `json:"sort"`
	Matched    int                 `json:"matched"`
	Total      int                 `json:"total"`
	Products   []api.Product       `json:"products"`
}

// Browse resolves req.Path, selects the matching products, extracts facets
// from that subset, then filters, sorts and truncates to req.Limit. It returns
// ErrCategoryNotFound when the base segment names no root category.
func Browse(categories []api.Category, products []api.Product, req Request) (*Listing, error) {
	if err := req.Filter.Validate(); err != nil {
		return nil, err
	}
	strategy := req.Sort
	if strategy == "" {
		strategy = filter.SortPopularity
	}

	res, err := Resolve(categories, req.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", req.Path, err)
	}

	matched := MatchProducts(products, res.Breadcrumbs)
	facets := ExtractFacets(matched, res.Node.Name)

	result := filter.Sort(filter.Apply(matched, req.Filter), strategy)
	total := len(result)
	if req.Limit > 0 && req.Limit < len(result) {
		result = result[:req.Limit]
	}

	return &Listing{
		Resolution: res,
		Facets:     facets,
		Filter:     req.Filter,
		Sort:       strategy,
		Matched:    len(matched),
		Total:      total,
		Products:   result,
	}, nil
}

// FacetsFor resolves path and returns the facets of the matching products.
func FacetsFor(categories []api.Category, products []api.Product, path string) (*Resolution, Facets, error) {
	res, err := Resolve(categories, path)
	if err != nil {
		return nil, Facets{}, fmt.Errorf("resolving %q: %w", path, err)
	}
	matched := MatchProducts(products, res.Breadcrumbs)
	return res, ExtractFacets(matched, res.Node.Name), nil
}
