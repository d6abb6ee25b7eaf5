package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/shopcli/internal/catalog"
	"github.com/tayloree/shopcli/internal/filter"
)

func TestBrowse_FilterSortLimit(t *testing.T) {
	listing, err := catalog.Browse(sampleTree(), sampleCatalog(), catalog.Request{
		Path:   "Electronics/Mobiles",
		Filter: filter.Options{MinDiscount: filter.Int(20)},
		Sort:   filter.SortPriceAsc,
		Limit:  1,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, listing.Matched)
	assert.Equal(t, 2, listing.Total)
	assert.Equal(t, []string{"4"}, productIDs(listing.Products))
	assert.Equal(t, filter.SortPriceAsc, listing.Sort)
	assert.Equal(t, []string{"Samsung", "Apple", "Xiaomi", "Generic"}, listing.Facets.Brands, "facets describe the unfiltered subset")
}

func TestBrowse_DefaultsToPopularity(t *testing.T) {
	listing, err := catalog.Browse(sampleTree(), sampleCatalog(), catalog.Request{Path: "Electronics/Mobiles"})
	require.NoError(t, err)
	assert.Equal(t, filter.SortPopularity, listing.Sort)
	assert.Equal(t, []string{"1", "3", "4", "6"}, productIDs(listing.Products))
}

func TestBrowse_Idempotent(t *testing.T) {
	req := catalog.Request{
		Path:   "Electronics",
		Filter: filter.Options{Price: filter.PriceRange{Max: filter.Float(80000)}},
		Sort:   filter.SortRating,
	}
	categories, products := sampleTree(), sampleCatalog()

	first, err := catalog.Browse(categories, products, req)
	require.NoError(t, err)
	second, err := catalog.Browse(categories, products, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"1", "4", "3", "6"}, productIDs(first.Products))
}

func TestBrowse_NotFound(t *testing.T) {
	_, err := catalog.Browse(sampleTree(), sampleCatalog(), catalog.Request{Path: "Groceries/Fruit"})
	require.ErrorIs(t, err, catalog.ErrCategoryNotFound)
}

func TestBrowse_InvalidFilter(t *testing.T) {
	_, err := catalog.Browse(sampleTree(), sampleCatalog(), catalog.Request{
		Path:   "Electronics",
		Filter: filter.Options{Price: filter.PriceRange{Min: filter.Float(10), Max: filter.Float(1)}},
	})
	require.ErrorIs(t, err, filter.ErrInvalidPriceRange)
}

func TestFacetsFor(t *testing.T) {
	res, facets, err := catalog.FacetsFor(sampleTree(), sampleCatalog(), "Fashion")
	require.NoError(t, err)
	assert.Equal(t, "Fashion", res.Node.Name)
	assert.Equal(t, []string{"Nike", "Noise"}, facets.Brands)
	assert.Equal(t, []string{"Shoes"}, facets.Tags)

	_, _, err = catalog.FacetsFor(sampleTree(), sampleCatalog(), "Nope")
	require.ErrorIs(t, err, catalog.ErrCategoryNotFound)
}
