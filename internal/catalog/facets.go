package catalog

import (
	"strings"

	"github.com/tayloree/shopcli/internal/api"
)

// Facets lists the distinct filterable values of a product subset, each in
// order of first occurrence.
type Facets struct {
	Brands   []string `json:"brands"`
	RAM      []string `json:"ram"`
	Tags     []string `json:"tags"`
	PriceMin float64  `json:"priceMin"`
	PriceMax float64  `json:"priceMax"`
}

// ExtractFacets collects brand, RAM and tag values from products. Blank values
// are skipped, and tags equal to exclude (the current category's own name) are
// left out.
func ExtractFacets(products []api.Product, exclude string) Facets {
	f := Facets{
		Brands: []string{},
		RAM:    []string{},
		Tags:   []string{},
	}
	seenBrand := make(map[string]struct{})
	seenRAM := make(map[string]struct{})
	seenTag := make(map[string]struct{})

	for i, p := range products {
		appendDistinct(&f.Brands, seenBrand, p.Brand)
		appendDistinct(&f.RAM, seenRAM, p.RAM)
		for _, tag := range p.Tags {
			if tag == exclude {
				continue
			}
			appendDistinct(&f.Tags, seenTag, tag)
		}

		if i == 0 || p.Price < f.PriceMin {
			f.PriceMin = p.Price
		}
		if i == 0 || p.Price > f.PriceMax {
			f.PriceMax = p.Price
		}
	}
	return f
}

func appendDistinct(dst *[]string, seen map[string]struct{}, v string) {
	if v == "" {
		return
	}
	if _, ok := seen[v]; ok {
		return
	}
	seen[v] = struct{}{}
	*dst = append(*dst, v)
}

// SearchFacet keeps the values containing query, case-insensitively.
func SearchFacet(values []string, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return values
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), q) {
			out = append(out, v)
		}
	}
	return out
}
