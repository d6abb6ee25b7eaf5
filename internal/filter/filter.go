package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tayloree/shopcli/internal/api"
)

// ErrInvalidPriceRange is returned when the lower price bound exceeds the upper one.
var ErrInvalidPriceRange = errors.New("invalid price range")

// ErrInvalidDiscount is returned for a discount floor outside 0..100.
var ErrInvalidDiscount = errors.New("invalid minimum discount")

// PriceRange is an inclusive price window. A nil bound is unconstrained.
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// IsEmpty reports whether neither bound is set.
func (r PriceRange) IsEmpty() bool {
	return r.Min == nil && r.Max == nil
}

// Contains reports whether price lies inside the window, bounds included.
func (r PriceRange) Contains(price float64) bool {
	if r.Min != nil && price < *r.Min {
		return false
	}
	if r.Max != nil && price > *r.Max {
		return false
	}
	return true
}

// Set is a small selection of facet values. Membership is exact.
type Set []string

// NewSet builds a Set from values, dropping blanks and duplicates.
func NewSet(values ...string) Set {
	var s Set
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || s.Contains(v) {
			continue
		}
		s = append(s, v)
	}
	return s
}

// IsEmpty reports whether nothing is selected.
func (s Set) IsEmpty() bool {
	return len(s) == 0
}

// Contains reports whether v is selected.
func (s Set) Contains(v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Toggle adds v when absent and removes it when present.
func (s Set) Toggle(v string) Set {
	out := make(Set, 0, len(s)+1)
	found := false
	for _, x := range s {
		if x == v {
			found = true
			continue
		}
		out = append(out, x)
	}
	if !found {
		out = append(out, v)
	}
	return out
}

// Options holds the user's filter state. Every field left at its zero value
// imposes no constraint.
type Options struct {
	Price       PriceRange `json:"price"`
	Tags        Set        `json:"tags,omitempty"`
	Brands      Set        `json:"brands,omitempty"`
	RAM         Set        `json:"ram,omitempty"`
	MinDiscount *int       `json:"minDiscount,omitempty"`
}

// IsEmpty reports whether no constraint is active.
func (o Options) IsEmpty() bool {
	return o.Price.IsEmpty() && o.Tags.IsEmpty() && o.Brands.IsEmpty() &&
		o.RAM.IsEmpty() && o.MinDiscount == nil
}

// Validate checks the options for contradictory bounds.
func (o Options) Validate() error {
	if o.Price.Min != nil && o.Price.Max != nil && *o.Price.Min > *o.Price.Max {
		return fmt.Errorf("%w: min %.2f is above max %.2f", ErrInvalidPriceRange, *o.Price.Min, *o.Price.Max)
	}
	if o.Price.Min != nil && *o.Price.Min < 0 {
		return fmt.Errorf("%w: min must not be negative", ErrInvalidPriceRange)
	}
	if o.MinDiscount != nil && (*o.MinDiscount < 0 || *o.MinDiscount > 100) {
		return fmt.Errorf("%w: must be between 0 and 100, got %d", ErrInvalidDiscount, *o.MinDiscount)
	}
	return nil
}

// Apply narrows products through price, tags, brand, RAM and discount floor,
// in that order. The result keeps input order. With no active constraint the
// input slice is returned as is.
func Apply(products []api.Product, opts Options) []api.Product {
	result := products

	if !opts.Price.IsEmpty() {
		result = where(result, func(p api.Product) bool {
			return opts.Price.Contains(p.Price)
		})
	}

	if !opts.Tags.IsEmpty() {
		result = where(result, func(p api.Product) bool {
			for _, tag := range p.Tags {
				if opts.Tags.Contains(tag) {
					return true
				}
			}
			return false
		})
	}

	if !opts.Brands.IsEmpty() {
		result = where(result, func(p api.Product) bool {
			return opts.Brands.Contains(p.Brand)
		})
	}

	if !opts.RAM.IsEmpty() {
		result = where(result, func(p api.Product) bool {
			return opts.RAM.Contains(p.RAM)
		})
	}

	if opts.MinDiscount != nil {
		floor := *opts.MinDiscount
		result = where(result, func(p api.Product) bool {
			pct, ok := DiscountPercent(p.Discount)
			return ok && pct >= floor
		})
	}

	return result
}

// DiscountPercent extracts the integer formed by every digit of a discount
// label, so "20% OFF" yields 20. It reports false when there are no digits.
func DiscountPercent(discount string) (int, bool) {
	const maxInt = int(^uint(0) >> 1)

	n, seen := 0, false
	for i := 0; i < len(discount); i++ {
		c := discount[i]
		if c < '0' || c > '9' {
			continue
		}
		seen = true
		d := int(c - '0')
		if n > (maxInt-d)/10 {
			n = maxInt
			continue
		}
		n = n*10 + d
	}
	return n, seen
}

// Float returns a pointer to v, for building price bounds.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for building a discount floor.
func Int(v int) *int { return &v }

func where(products []api.Product, fn func(api.Product) bool) []api.Product {
	result := make([]api.Product, 0, len(products))
	for _, p := range products {
		if fn(p) {
			result = append(result, p)
		}
	}
	return result
}
