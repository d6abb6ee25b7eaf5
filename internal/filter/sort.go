package filter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tayloree/shopcli/internal/api"
)

// SortStrategy names a listing order.
type SortStrategy string

const (
	SortPopularity SortStrategy = "popularity"
	SortPriceAsc   SortStrategy = "price-asc"
	SortPriceDesc  SortStrategy = "price-desc"
	SortRating     SortStrategy = "rating"
)

// SortStrategies lists the canonical strategies in display order.
var SortStrategies = []SortStrategy{SortPopularity, SortPriceAsc, SortPriceDesc, SortRating}

// ErrInvalidSort is returned for an unrecognized sort name.
var ErrInvalidSort = errors.New("invalid sort")

// ParseSortStrategy maps a user-supplied name, including storefront aliases,
// onto a canonical strategy.
func ParseSortStrategy(raw string) (SortStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "popularity", "popular", "relevance":
		return SortPopularity, nil
	case "price-asc", "price-low", "low-high", "price":
		return SortPriceAsc, nil
	case "price-desc", "price-high", "high-low":
		return SortPriceDesc, nil
	case "rating", "top-rated", "rated":
		return SortRating, nil
	default:
		return "", fmt.Errorf("%w %q (use popularity, price-asc, price-desc, or rating)", ErrInvalidSort, raw)
	}
}

// Label returns a short human-readable name.
func (s SortStrategy) Label() string {
	switch s {
	case SortPriceAsc:
		return "Price: Low to High"
	case SortPriceDesc:
		return "Price: High to Low"
	case SortRating:
		return "Top Rated"
	default:
		return "Popularity"
	}
}

// Sort returns a newly ordered copy of products. Ties keep their input order
// and the input slice is never modified. Popularity preserves input order.
func Sort(products []api.Product, strategy SortStrategy) []api.Product {
	out := make([]api.Product, len(products))
	copy(out, products)

	switch strategy {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool { return ratingOf(out[i]) > ratingOf(out[j]) })
	}
	return out
}

// ratingOf ranks a missing rating below every real one.
func ratingOf(p api.Product) float64 {
	if p.Rating == nil {
		return -1
	}
	return *p.Rating
}
