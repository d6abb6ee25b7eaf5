package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/shopcli/internal/api"
)

func TestParseCategories_Envelopes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"name":"Home"}]`},
		{"categories envelope", `{"categories":[{"name":"Home"}]}`},
		{"data envelope", `{"data":[{"name":"Home"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := api.ParseCategories([]byte(tt.body))
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "Home", got[0].Name)
			assert.Empty(t, got[0].SubCategories)
		})
	}
}

func TestParseCategories_Invalid(t *testing.T) {
	_, err := api.ParseCategories([]byte(`[{"name":`))
	require.ErrorIs(t, err, api.ErrInvalidJSON)

	_, err = api.ParseCategories([]byte(`{"unexpected": true}`))
	require.Error(t, err)
}

func TestParseCategories_Empty(t *testing.T) {
	got, err := api.ParseCategories(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = api.ParseCategories([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseProducts_DiscountShapes(t *testing.T) {
	body := `[
	  {"id": 1, "name": "a", "price": 10, "discount": "20% OFF"},
	  {"id": 2, "name": "b", "price": 10, "discount": 35},
	  {"id": 3, "name": "c", "price": 10, "discount": 0},
	  {"id": 4, "name": "d", "price": 10},
	  {"id": 5, "name": "e", "price": 10, "discount": 12.5}
	]`

	products, err := api.ParseProducts([]byte(body))
	require.NoError(t, err)

	got := make([]string, 0, len(products))
	for _, p := range products {
		got = append(got, p.Discount)
	}
	assert.Equal(t, []string{"20% OFF", "35", "", "", "12.5"}, got)
}

func TestParseProducts_LegacySubCategoryString(t *testing.T) {
	products, err := api.ParseProducts([]byte(`[{"name":"x","subCategory":"Mobiles","tags":["a",3,"b"]}]`))
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.NotNil(t, products[0].SubCategory)
	assert.Equal(t, "Mobiles", products[0].SubCategory.Name)
	assert.Equal(t, []string{"a", "b"}, products[0].Tags, "non-string tags are ignored")
}

func TestParseProducts_TagsPresence(t *testing.T) {
	products, err := api.ParseProducts([]byte(`[{"name":"a"},{"name":"b","tags":[]},{"name":"c","tags":null}]`))
	require.NoError(t, err)
	require.Len(t, products, 3)

	assert.Nil(t, products[0].Tags, "missing field")
	assert.NotNil(t, products[1].Tags, "empty list is kept")
	assert.Empty(t, products[1].Tags)
	assert.Nil(t, products[2].Tags)
}

func TestParseSnapshot(t *testing.T) {
	body := `{"categories":[{"name":"Electronics","subCategories":["Mobiles"]}],
	          "products":[{"_id":"abc","name":"Phone","category":"Electronics","price":100}]}`

	snap, err := api.ParseSnapshot([]byte(body))
	require.NoError(t, err)
	require.Len(t, snap.Categories, 1)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "Mobiles", snap.Categories[0].SubCategories[0].Name)
	assert.Equal(t, "abc", snap.Products[0].ID)

	_, err = api.ParseSnapshot([]byte(`not json`))
	require.ErrorIs(t, err, api.ErrInvalidJSON)
}
