package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/shopcli/internal/api"
	"github.com/tayloree/shopcli/internal/filter"
)

func rating(v float64) *float64 { return &v }

func sampleProducts() []api.Product {
	return []api.Product{
		{ID: "1", Name: "Pixel 9", Brand: "Google", RAM: "12GB", Tags: []string{"android", "5g"}, Price: 79999, Discount: "11% OFF", Rating: rating(4.6)},
		{ID: "2", Name: "Redmi 13", Brand: "Xiaomi", RAM: "6GB", Tags: []string{"android", "budget"}, Price: 11999, Discount: "20% OFF", Rating: rating(4.1)},
		{ID: "3", Name: "iPhone 16", Brand: "Apple", RAM: "8GB", Tags: []string{"ios", "5g"}, Price: 79999, Discount: "5", Rating: rating(4.7)},
		{ID: "4", Name: "Galaxy M15", Brand: "Samsung", RAM: "6GB", Tags: []string{"android"}, Price: 12999, Discount: "35% OFF"},
		{ID: "5", Name: "Feature Phone", Brand: "Nokia", Price: 1999},
	}
}

func ids(products []api.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestApply_NoFilters(t *testing.T) {
	products := sampleProducts()
	result := filter.Apply(products, filter.Options{})
	assert.Equal(t, products, result)
	assert.True(t, filter.Options{}.IsEmpty())
}

func TestApply_PriceInclusive(t *testing.T) {
	result := filter.Apply(sampleProducts(), filter.Options{
		Price: filter.PriceRange{Min: filter.Float(11999), Max: filter.Float(12999)},
	})
	assert.Equal(t, []string{"2", "4"}, ids(result))
}

func TestApply_PriceSingleBound(t *testing.T) {
	result := filter.Apply(sampleProducts(), filter.Options{
		Price: filter.PriceRange{Max: filter.Float(12000)},
	})
	assert.Equal(t, []string{"2", "5"}, ids(result))

	result = filter.Apply(sampleProducts(), filter.Options{
		Price: filter.PriceRange{Min: filter.Float(79999)},
	})
	assert.Equal(t, []string{"1", "3"}, ids(result))
}

func TestApply_TagsIntersect(t *testing.T) {
	result := filter.Apply(sampleProducts(), filter.Options{Tags: filter.NewSet("5g", "budget")})
	assert.Equal(t, []string{"1", "2", "3"}, ids(result))
}

func TestApply_Brand(t *testing.T) {
	result := filter.Apply(sampleProducts(), filter.Options{Brands: filter.NewSet("Apple", "Nokia")})
	assert.Equal(t, []string{"3", "5"}, ids(result))
}

func TestApply_BrandIsCaseSensitive(t *testing.T) {
	result := filter.Apply(sampleProducts(), filter.Options{Brands: filter.NewSet("apple")})
	assert.Empty(t, result)
}

func TestApply_RAM(t *testing.T) {
	result := filter.Apply(sampleProducts(), filter.Options{RAM: filter.NewSet("6GB")})
	assert.Equal(t, []string{"2", "4"}, ids(result))
}

func TestApply_DiscountFloor(t *testing.T) {
	result := filter.Apply(sampleProducts(), filter.Options{MinDiscount: filter.Int(20)})
	assert.Equal(t, []string{"2", "4"}, ids(result), "products without a discount are excluded")
}

func TestApply_DiscountExample(t *testing.T) {
	products := []api.Product{{ID: "x", Discount: "20% OFF"}}

	assert.Len(t, filter.Apply(products, filter.Options{MinDiscount: filter.Int(20)}), 1)
	assert.Empty(t, filter.Apply(products, filter.Options{MinDiscount: filter.Int(30)}))
}

func TestApply_Combined(t *testing.T) {
	result := filter.Apply(sampleProducts(), filter.Options{
		Price:       filter.PriceRange{Max: filter.Float(20000)},
		Tags:        filter.NewSet("android"),
		RAM:         filter.NewSet("6GB"),
		MinDiscount: filter.Int(30),
	})
	assert.Equal(t, []string{"4"}, ids(result))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	products := sampleProducts()
	before := ids(products)
	_ = filter.Apply(products, filter.Options{Brands: filter.NewSet("Apple")})
	assert.Equal(t, before, ids(products))
}

func TestDiscountPercent(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"20% OFF", 20, true},
		{"35", 35, true},
		{"12.5%", 125, true},
		{"Flat 5 off", 5, true},
		{"", 0, false},
		{"SALE", 0, false},
	}
	for _, tt := range tests {
		got, ok := filter.DiscountPercent(tt.input)
		assert.Equal(t, tt.wantOK, ok, "DiscountPercent(%q) ok", tt.input)
		assert.Equal(t, tt.want, got, "DiscountPercent(%q)", tt.input)
	}

	huge, ok := filter.DiscountPercent("999999999999999999999999%")
	assert.True(t, ok)
	assert.Positive(t, huge)
}

func TestNewSet(t *testing.T) {
	s := filter.NewSet("a", " ", "b", "a", "")
	assert.Equal(t, filter.Set{"a", "b"}, s)
	assert.True(t, s.Contains("b"))
	assert.False(t, s.Contains("c"))
	assert.True(t, filter.NewSet().IsEmpty())
}

func TestSetToggle(t *testing.T) {
	s := filter.NewSet("a", "b")
	assert.Equal(t, filter.Set{"b"}, s.Toggle("a"))
	assert.Equal(t, filter.Set{"a", "b", "c"}, s.Toggle("c"))
	assert.Equal(t, filter.Set{"a", "b"}, s, "toggle returns a copy")
}

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, filter.Options{}.Validate())

	err := filter.Options{Price: filter.PriceRange{Min: filter.Float(10), Max: filter.Float(5)}}.Validate()
	require.ErrorIs(t, err, filter.ErrInvalidPriceRange)

	err = filter.Options{Price: filter.PriceRange{Min: filter.Float(-1)}}.Validate()
	require.ErrorIs(t, err, filter.ErrInvalidPriceRange)

	err = filter.Options{MinDiscount: filter.Int(120)}.Validate()
	require.ErrorIs(t, err, filter.ErrInvalidDiscount)
}

func TestParsePriceBand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"under-5k", "under-5k"},
		{"<5k", "under-5k"},
		{"5k-15k", "5k-15k"},
		{"15K_30K", "15k-30k"},
		{"30k+", "30k-plus"},
		{"₹30k+", "30k-plus"},
	}
	for _, tt := range tests {
		band, err := filter.ParsePriceBand(tt.input)
		require.NoError(t, err, "ParsePriceBand(%q)", tt.input)
		assert.Equal(t, tt.want, band.ID, "ParsePriceBand(%q)", tt.input)
	}

	_, err := filter.ParsePriceBand("cheap-ish")
	require.ErrorIs(t, err, filter.ErrInvalidPriceBand)
}

func TestPriceBandRange(t *testing.T) {
	band, err := filter.ParsePriceBand("5k-15k")
	require.NoError(t, err)

	result := filter.Apply(sampleProducts(), filter.Options{Price: band.Range()})
	assert.Equal(t, []string{"2", "4"}, ids(result))
}
