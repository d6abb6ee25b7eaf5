package cmd

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/shopcli/internal/api"
	"github.com/tayloree/shopcli/internal/catalog"
	"github.com/tayloree/shopcli/internal/filter"
)

func tuiSnapshot() *api.Snapshot {
	return &api.Snapshot{
		Categories: []api.Category{
			{Name: "Electronics", SubCategories: []api.Category{
				{Name: "Mobiles", SubCategories: []api.Category{}},
			}},
		},
		Products: []api.Product{
			{ID: "1", Name: "Phone A", Brand: "Acme", RAM: "8GB", Category: "Electronics", Tags: []string{"Mobiles"}, Price: 20000, Discount: "20% OFF"},
			{ID: "2", Name: "Phone B", Brand: "Bolt", RAM: "6GB", Category: "Electronics", Tags: []string{"Mobiles"}, Price: 9000},
			{ID: "3", Name: "Phone C", Brand: "Acme", RAM: "6GB", Category: "Electronics", Tags: []string{"Mobiles", "5G"}, Price: 15000, Discount: "35% OFF"},
		},
	}
}

func loadedTUIModel(t *testing.T, req catalog.Request) productsTUIModel {
	t.Helper()
	m := newLoadingProductsTUIModel(tuiLoadConfig{
		ctx:     context.Background(),
		load:    func(context.Context) (*api.Snapshot, error) { return tuiSnapshot(), nil },
		request: req,
	})
	updated, _ := m.Update(tuiDataLoadedMsg{snapshot: tuiSnapshot()})
	model := updated.(productsTUIModel)
	require.NoError(t, model.fatalErr)
	return model
}

func press(t *testing.T, m productsTUIModel, key rune) productsTUIModel {
	t.Helper()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{key}})
	return updated.(productsTUIModel)
}

func visibleIDs(m productsTUIModel) []string {
	ids := []string{}
	for _, item := range m.list.Items() {
		if p, ok := item.(tuiProductItem); ok {
			ids = append(ids, p.product.ID)
		}
	}
	return ids
}

func TestBuildGroupedListItems_SectionsByBrandInFirstSeenOrder(t *testing.T) {
	products := []api.Product{
		{ID: "1", Name: "Cheap", Brand: "Bolt"},
		{ID: "2", Name: "Mid", Brand: "Acme"},
		{ID: "3", Name: "Other Bolt", Brand: "Bolt"},
		{ID: "4", Name: "No brand"},
	}

	items, starts := buildGroupedListItems(products)

	assert.Len(t, items, 7)
	assert.Equal(t, []int{0, 3, 5}, starts)

	header, ok := items[0].(tuiGroupItem)
	require.True(t, ok)
	assert.Equal(t, "Bolt", header.name)
	assert.Equal(t, 2, header.count)
	assert.Equal(t, 1, header.ordinal)

	header2, ok := items[3].(tuiGroupItem)
	require.True(t, ok)
	assert.Equal(t, "Acme", header2.name)

	header3, ok := items[5].(tuiGroupItem)
	require.True(t, ok)
	assert.Equal(t, "Other", header3.name)
}

func TestBuildSetChoices_KeepsCustomSelection(t *testing.T) {
	choices := buildSetChoices([]string{"Acme", "Bolt"}, filter.NewSet("Acme", "Bolt"))

	require.Len(t, choices, 4)
	assert.Nil(t, choices[0])
	assert.Equal(t, filter.Set{"Acme", "Bolt"}, choices[1])
	assert.Equal(t, filter.Set{"Acme"}, choices[2])

	plain := buildSetChoices([]string{"Acme"}, filter.NewSet("Acme"))
	assert.Len(t, plain, 2)
}

func TestBuildDiscountChoices(t *testing.T) {
	choices := buildDiscountChoices(filter.Int(25))
	require.Len(t, choices, 6)
	assert.Nil(t, choices[0])
	assert.Equal(t, 25, *choices[1])

	assert.Len(t, buildDiscountChoices(filter.Int(30)), 5)
}

func TestBuildPriceChoices(t *testing.T) {
	band, err := filter.ParsePriceBand("5k-15k")
	require.NoError(t, err)

	assert.Len(t, buildPriceChoices(band.Range()), 5)

	custom := buildPriceChoices(filter.PriceRange{Max: filter.Float(100)})
	require.Len(t, custom, 6)
	assert.Equal(t, "custom", custom[1].label)
}

func TestTUIModel_LoadsDefaultCategory(t *testing.T) {
	m := loadedTUIModel(t, catalog.Request{})

	assert.False(t, m.loading)
	assert.Equal(t, "Electronics", m.request.Path)
	assert.Equal(t, filter.SortPopularity, m.request.Sort)
	assert.Equal(t, []string{"1", "3", "2"}, visibleIDs(m), "grouped by brand in first-seen order")
}

func TestTUIModel_CyclesSortAndFilters(t *testing.T) {
	m := loadedTUIModel(t, catalog.Request{Path: "Electronics/Mobiles"})

	m = press(t, m, 's')
	assert.Equal(t, filter.SortPriceAsc, m.request.Sort)
	assert.Equal(t, []string{"2", "3", "1"}, visibleIDs(m))

	m = press(t, m, 'a')
	assert.Equal(t, filter.Set{"Acme"}, m.request.Filter.Brands)
	assert.Equal(t, []string{"3", "1"}, visibleIDs(m))

	m = press(t, m, 'o')
	require.NotNil(t, m.request.Filter.MinDiscount)
	assert.Equal(t, 20, *m.request.Filter.MinDiscount)
	assert.Equal(t, []string{"3", "1"}, visibleIDs(m))

	m = press(t, m, 'o')
	assert.Equal(t, []string{"3"}, visibleIDs(m))

	m = press(t, m, 'r')
	assert.Equal(t, filter.SortPopularity, m.request.Sort)
	assert.True(t, m.request.Filter.IsEmpty())
	assert.Len(t, visibleIDs(m), 3)
}

func TestTUIModel_TagChoicesExcludeCategoryName(t *testing.T) {
	m := loadedTUIModel(t, catalog.Request{Path: "Electronics/Mobiles"})

	assert.Equal(t, []filter.Set{nil, {"5G"}}, m.tagChoices)

	m = press(t, m, 't')
	assert.Equal(t, []string{"3"}, visibleIDs(m))
}

func TestTUIModel_KeepsInitialRequest(t *testing.T) {
	m := loadedTUIModel(t, catalog.Request{
		Path:   "Electronics",
		Filter: filter.Options{RAM: filter.NewSet("6GB")},
		Sort:   filter.SortPriceDesc,
	})

	assert.Equal(t, []string{"3", "2"}, visibleIDs(m))

	m = press(t, m, 'm')
	m = press(t, m, 'r')
	assert.Equal(t, filter.Set{"6GB"}, m.request.Filter.RAM)
	assert.Equal(t, filter.SortPriceDesc, m.request.Sort)
}

func TestTUIModel_UnknownCategoryIsFatal(t *testing.T) {
	m := newLoadingProductsTUIModel(tuiLoadConfig{
		ctx:     context.Background(),
		load:    func(context.Context) (*api.Snapshot, error) { return tuiSnapshot(), nil },
		request: catalog.Request{Path: "Groceries"},
	})
	updated, cmd := m.Update(tuiDataLoadedMsg{snapshot: tuiSnapshot()})

	model := updated.(productsTUIModel)
	require.Error(t, model.fatalErr)
	assert.Equal(t, ExitNotFound, classifyCLIError(model.fatalErr).ExitCode)
	assert.NotNil(t, cmd)
}

func TestTUIModel_LoadError(t *testing.T) {
	m := newLoadingProductsTUIModel(tuiLoadConfig{
		ctx:  context.Background(),
		load: func(context.Context) (*api.Snapshot, error) { return nil, errors.New("offline") },
	})

	msg := m.loadCmd()
	updated, _ := m.Update(msg)
	assert.EqualError(t, updated.(productsTUIModel).fatalErr, "offline")
}

func TestTUIModel_IgnoresKeysWhileLoading(t *testing.T) {
	m := newLoadingProductsTUIModel(tuiLoadConfig{ctx: context.Background()})
	m = press(t, m, 's')
	assert.True(t, m.loading)
	assert.Contains(t, m.View(), "Fetching categories and products")
}
