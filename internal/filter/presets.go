package filter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPriceBand is returned for an unrecognized price band name.
var ErrInvalidPriceBand = errors.New("invalid price band")

// PriceBand is a named price preset.
type PriceBand struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Range converts the band into an inclusive price window.
func (b PriceBand) Range() PriceRange {
	return PriceRange{Min: Float(b.Min), Max: Float(b.Max)}
}

// PriceBands are the storefront's quick price presets, cheapest first.
var PriceBands = []PriceBand{
	{ID: "under-5k", Label: "Under ₹5k", Min: 0, Max: 5000},
	{ID: "5k-15k", Label: "₹5k - ₹15k", Min: 5000, Max: 15000},
	{ID: "15k-30k", Label: "₹15k - ₹30k", Min: 15000, Max: 30000},
	{ID: "30k-plus", Label: "₹30k+", Min: 30000, Max: 1000000},
}

// DiscountPresets are the quick discount floors offered by the storefront.
var DiscountPresets = []int{20, 30, 40, 50}

var priceBandAliases = map[string][]string{
	"under-5k": {"<5k", "under5k", "0-5k", "budget"},
	"5k-15k":   {"5-15k", "5000-15000"},
	"15k-30k":  {"15-30k", "15000-30000"},
	"30k-plus": {"30k+", "30k", "over-30k", "above-30k", "premium"},
}

// ParsePriceBand resolves a band id or one of its aliases.
func ParsePriceBand(raw string) (PriceBand, error) {
	id := resolvePriceBandID(raw)
	for _, band := range PriceBands {
		if band.ID == id {
			return band, nil
		}
	}
	return PriceBand{}, fmt.Errorf("%w %q (use %s)", ErrInvalidPriceBand, raw, strings.Join(PriceBandIDs(), ", "))
}

// PriceBandIDs lists the canonical band ids.
func PriceBandIDs() []string {
	ids := make([]string, 0, len(PriceBands))
	for _, band := range PriceBands {
		ids = append(ids, band.ID)
	}
	return ids
}

func resolvePriceBandID(raw string) string {
	norm := normalizeBand(raw)
	if norm == "" {
		return ""
	}
	if _, ok := priceBandAliases[norm]; ok {
		return norm
	}
	for id, aliases := range priceBandAliases {
		for _, alias := range aliases {
			if normalizeBand(alias) == norm {
				return id
			}
		}
	}
	return norm
}

func normalizeBand(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, " ", "-")
	return s
}
