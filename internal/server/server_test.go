package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/shopcli/internal/api"
	"github.com/tayloree/shopcli/internal/config"
	"github.com/tayloree/shopcli/internal/display"
	"github.com/tayloree/shopcli/internal/server"
)

func snapshot() *api.Snapshot {
	return &api.Snapshot{
		Categories: []api.Category{
			{Name: "Electronics", SubCategories: []api.Category{
				{Name: "Mobiles", SubCategories: []api.Category{}},
				{Name: "Laptops", SubCategories: []api.Category{}},
			}},
			{Name: "Fashion", SubCategories: []api.Category{}},
		},
		Products: []api.Product{
			{ID: "1", Name: "Phone A", Brand: "Acme", RAM: "8GB", Category: "Electronics", Tags: []string{"Mobiles", "5G"}, Price: 20000, Discount: "20% OFF"},
			{ID: "2", Name: "Laptop B", Brand: "Bolt", RAM: "16GB", Category: "Electronics", Tags: []string{"Laptops"}, Price: 60000},
			{ID: "3", Name: "Phone C", Brand: "Bolt", RAM: "6GB", Category: "Electronics", Tags: []string{"Mobiles"}, Price: 9000, Discount: "10% OFF"},
		},
	}
}

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		Addr:           "127.0.0.1:0",
		RateLimit:      1000,
		RateBurst:      1000,
		RequestTimeout: 5 * time.Second,
	}
}

func staticLoader(snap *api.Snapshot) server.Loader {
	return func(context.Context) (*api.Snapshot, error) { return snap, nil }
}

func newLoadedServer(t *testing.T) *server.Server {
	t.Helper()
	srv := server.New(testConfig(), staticLoader(snapshot()), nil)
	require.NoError(t, srv.Reload(context.Background()))
	return srv
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func listingIDs(listing display.ListingJSON) []string {
	out := make([]string, 0, len(listing.Products))
	for _, p := range listing.Products {
		out = append(out, p.ID)
	}
	return out
}

func TestHealth(t *testing.T) {
	srv := server.New(testConfig(), staticLoader(snapshot()), nil)

	rec := get(t, srv.Handler(), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"loading"`)

	require.NoError(t, srv.Reload(context.Background()))
	rec = get(t, srv.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"products":3`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestBrowse_NotLoaded(t *testing.T) {
	srv := server.New(testConfig(), staticLoader(snapshot()), nil)
	rec := get(t, srv.Handler(), "/api/v1/browse/Electronics")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBrowse_CategoryPage(t *testing.T) {
	srv := newLoadedServer(t)

	rec := get(t, srv.Handler(), "/api/v1/browse/Electronics/Mobiles")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var listing display.ListingJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, []string{"Electronics", "Mobiles"}, listing.Breadcrumbs)
	assert.True(t, listing.IsLeaf)
	assert.Equal(t, []string{"1", "3"}, listingIDs(listing))
	assert.Equal(t, []string{"Acme", "Bolt"}, listing.Facets.Brands)
	assert.Equal(t, []string{"5G"}, listing.Facets.Tags)
}

func TestBrowse_EncodedSegment(t *testing.T) {
	snap := snapshot()
	snap.Categories[0].SubCategories = append(snap.Categories[0].SubCategories,
		api.Category{Name: "Smart Watches", SubCategories: []api.Category{}})
	snap.Products = append(snap.Products, api.Product{ID: "4", Name: "Watch", Tags: []string{"Smart Watches"}, Price: 5000})

	srv := server.New(testConfig(), staticLoader(snap), nil)
	require.NoError(t, srv.Reload(context.Background()))

	rec := get(t, srv.Handler(), "/api/v1/browse/Electronics/Smart%20Watches")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var listing display.ListingJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, "Smart Watches", listing.Category)
	assert.Equal(t, []string{"4"}, listingIDs(listing))
}

func TestBrowse_FiltersAndSort(t *testing.T) {
	srv := newLoadedServer(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"price bounds", "?minPrice=10000&maxPrice=30000", []string{"1"}},
		{"brand", "?brand=Bolt", []string{"3"}},
		{"repeated brand", "?brand=Bolt&brand=Acme", []string{"1", "3"}},
		{"ram", "?ram=8GB", []string{"1"}},
		{"tag", "?tag=5G", []string{"1"}},
		{"discount floor", "?minDiscount=20", []string{"1"}},
		{"band", "?band=5k-15k", []string{"3"}},
		{"price ascending", "?sort=price-asc", []string{"3", "1"}},
		{"limit", "?sort=price-low&limit=1", []string{"3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv.Handler(), "/api/v1/browse/Electronics/Mobiles"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var listing display.ListingJSON
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
			assert.Equal(t, tt.want, listingIDs(listing))
		})
	}
}

func TestBrowse_UnknownCategory(t *testing.T) {
	srv := newLoadedServer(t)

	rec := get(t, srv.Handler(), "/api/v1/browse/Groceries")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, http.StatusNotFound, body.Code)
	assert.Contains(t, body.Message, "category not found")
}

func TestBrowse_BadRequests(t *testing.T) {
	srv := newLoadedServer(t)

	queries := []string{
		"?minPrice=abc",
		"?minPrice=500&maxPrice=100",
		"?minPrice=-5",
		"?minDiscount=150",
		"?sort=newest",
		"?band=cheap",
		"?band=under-5k&maxPrice=100",
		"?limit=-1",
	}
	for _, q := range queries {
		rec := get(t, srv.Handler(), "/api/v1/browse/Electronics"+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "query %s: %s", q, rec.Body.String())
		assert.Equal(t, http.StatusBadRequest, decodeError(t, rec).Code, "query %s", q)
	}
}

func TestFacets(t *testing.T) {
	srv := newLoadedServer(t)

	rec := get(t, srv.Handler(), "/api/v1/facets/Electronics")
	require.Equal(t, http.StatusOK, rec.Code)

	var out display.FacetsJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Electronics", out.Category)
	assert.Equal(t, []string{"Acme", "Bolt"}, out.Facets.Brands)
	assert.Equal(t, []string{"8GB", "16GB", "6GB"}, out.Facets.RAM)
	assert.Equal(t, []string{"Mobiles", "5G", "Laptops"}, out.Facets.Tags)
	assert.Len(t, out.PriceBands, 4)

	rec = get(t, srv.Handler(), "/api/v1/facets/Nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategories(t *testing.T) {
	srv := newLoadedServer(t)

	rec := get(t, srv.Handler(), "/api/v1/categories")
	require.Equal(t, http.StatusOK, rec.Code)

	var out []display.CategoryJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "Electronics/Laptops", out[0].SubCategories[1].Path)
	assert.True(t, out[1].IsLeaf)
}

func TestUnknownRoute(t *testing.T) {
	srv := newLoadedServer(t)
	rec := get(t, srv.Handler(), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, decodeError(t, rec).Code)
}

func TestRateLimiting(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 1
	cfg.RateBurst = 1
	srv := server.New(cfg, staticLoader(snapshot()), nil)
	require.NoError(t, srv.Reload(context.Background()))

	first := get(t, srv.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, first.Code)

	second := get(t, srv.Handler(), "/healthz")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
}

func TestReload_KeepsPreviousSnapshotOnFailure(t *testing.T) {
	var fail atomic.Bool
	loader := func(context.Context) (*api.Snapshot, error) {
		if fail.Load() {
			return nil, errors.New("upstream down")
		}
		return snapshot(), nil
	}
	srv := server.New(testConfig(), loader, nil)
	require.NoError(t, srv.Reload(context.Background()))

	fail.Store(true)
	err := srv.Reload(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")

	require.NotNil(t, srv.Snapshot())
	assert.Len(t, srv.Snapshot().Products, 3)
	assert.Equal(t, http.StatusOK, get(t, srv.Handler(), "/api/v1/browse/Electronics").Code)
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.RefreshSchedule = "@every 1h"
	srv := server.New(cfg, staticLoader(snapshot()), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	addr := srv.Addr()
	require.NotEmpty(t, addr)

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + addr + "/api/v1/browse/Electronics/Mobiles")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_InitialLoadFailure(t *testing.T) {
	loader := func(context.Context) (*api.Snapshot, error) { return nil, errors.New("no catalog") }
	srv := server.New(testConfig(), loader, nil)

	err := srv.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no catalog")
	assert.Empty(t, srv.Addr())
}

func TestRun_InvalidSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.RefreshSchedule = "whenever"
	srv := server.New(cfg, staticLoader(snapshot()), nil)

	err := srv.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid refresh schedule")
}
