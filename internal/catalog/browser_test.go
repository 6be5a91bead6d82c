package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuramustaphaali/nurastore/internal/api"
	"github.com/nuramustaphaali/nurastore/internal/ui"
)

type toastRecorder struct {
	messages []string
}

func (r *toastRecorder) ShowToast(message string, _ ui.Severity) {
	r.messages = append(r.messages, message)
}

func newTestBrowser(t *testing.T, handler http.Handler) (*Browser, *ui.Page, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	page := ui.NewPage()
	page.AddAnchor(ui.AnchorProductList)
	page.AddInput(ui.InputSearch)
	page.AddSelect(ui.SelectCategory)
	page.AddSelect(ui.SelectSort)

	browser := NewBrowser(api.New(server.URL+"/api", time.Second), page, &toastRecorder{})
	return browser, page, server
}

func TestDiscountPercent(t *testing.T) {
	t.Run("Computed for genuine discounts", func(t *testing.T) {
		cases := []struct {
			price, oldPrice float64
			want            int
		}{
			{price: 75, oldPrice: 100, want: 25},
			{price: 18500, oldPrice: 25000, want: 26},
			{price: 1, oldPrice: 3, want: 67},
			{price: 99, oldPrice: 100, want: 1},
		}
		for _, tc := range cases {
			got, ok := DiscountPercent(api.Naira(tc.price), api.Naira(tc.oldPrice))
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		}
	})

	t.Run("No badge without a real discount", func(t *testing.T) {
		_, ok := DiscountPercent(100, 100)
		assert.False(t, ok)
		_, ok = DiscountPercent(100, 90)
		assert.False(t, ok)
		_, ok = DiscountPercent(100, 0)
		assert.False(t, ok, "absent old price means no badge")
	})
}

func TestFetchProducts(t *testing.T) {
	t.Run("Success - cards rendered with badge and fallbacks", func(t *testing.T) {
		// Arrange
		mux := http.NewServeMux()
		mux.HandleFunc("/api/products/", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]api.Product{
				{ID: 1, Name: "Earbuds", Slug: "earbuds", Price: 18500, OldPrice: 25000, CategoryName: "Electronics"},
				{ID: 2, Name: "Mystery Box", Slug: "mystery-box", Price: 5000},
			})
		})
		browser, page, _ := newTestBrowser(t, mux)

		// Act
		err := browser.FetchProducts(context.Background())

		// Assert
		require.NoError(t, err)
		anchor, _ := page.Anchor(ui.AnchorProductList)
		html := anchor.HTML()
		assert.Contains(t, html, "-26%")
		assert.Contains(t, html, "₦18,500")
		assert.Contains(t, html, "₦25,000")
		assert.Contains(t, html, "Electronics")
		// Product without image or category falls back.
		assert.Contains(t, html, PlaceholderImage)
		assert.Contains(t, html, "General")
		assert.Contains(t, html, `/product/earbuds/`)
		assert.Contains(t, html, `data-product-id="1"`)
		assert.NotContains(t, html, "skeleton-img", "skeletons must be replaced")
	})

	t.Run("Empty - distinct state with clear-filters affordance", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/products/", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]api.Product{})
		})
		browser, page, _ := newTestBrowser(t, mux)

		err := browser.FetchProducts(context.Background())

		require.NoError(t, err)
		anchor, _ := page.Anchor(ui.AnchorProductList)
		assert.Contains(t, anchor.HTML(), "No products found")
		assert.Contains(t, anchor.HTML(), "reset-filters")
	})

	t.Run("Failure - server rejection renders inline error state", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/products/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		browser, page, _ := newTestBrowser(t, mux)

		err := browser.FetchProducts(context.Background())

		assert.Error(t, err)
		anchor, _ := page.Anchor(ui.AnchorProductList)
		assert.Contains(t, anchor.HTML(), "Failed to load products")
		assert.NotContains(t, anchor.HTML(), "No products found")
	})

	t.Run("No-op - page without product list", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
		}))
		t.Cleanup(server.Close)
		browser := NewBrowser(api.New(server.URL+"/api", time.Second), ui.NewPage(), &toastRecorder{})

		err := browser.FetchProducts(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 0, calls)
	})
}

func TestFilters(t *testing.T) {
	t.Run("ApplyFilters - control values land in the query", func(t *testing.T) {
		var gotQuery string
		mux := http.NewServeMux()
		mux.HandleFunc("/api/products/", func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			json.NewEncoder(w).Encode([]api.Product{})
		})
		browser, page, _ := newTestBrowser(t, mux)

		in, _ := page.Input(ui.InputSearch)
		in.Value = "  blender "
		cat, _ := page.Select(ui.SelectCategory)
		cat.Options = []ui.Option{{Value: "3", Label: "Home & Kitchen"}}
		cat.Selected = "3"
		sort, _ := page.Select(ui.SelectSort)
		sort.Options = []ui.Option{{Value: "-price", Label: "Price (high to low)"}}
		sort.Selected = "-price"

		err := browser.ApplyFilters(context.Background())

		require.NoError(t, err)
		assert.Contains(t, gotQuery, "search=blender")
		assert.Contains(t, gotQuery, "category=3")
		assert.Contains(t, gotQuery, "ordering=-price")
	})

	t.Run("ApplyFilters - tolerates absent controls", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/products/", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]api.Product{})
		})
		server := httptest.NewServer(mux)
		t.Cleanup(server.Close)

		page := ui.NewPage()
		page.AddAnchor(ui.AnchorProductList)
		browser := NewBrowser(api.New(server.URL+"/api", time.Second), page, &toastRecorder{})

		assert.NotPanics(t, func() {
			assert.NoError(t, browser.ApplyFilters(context.Background()))
		})
	})

	t.Run("ResetFilters - next fetch has an empty query string", func(t *testing.T) {
		var gotQuery string
		mux := http.NewServeMux()
		mux.HandleFunc("/api/products/", func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			json.NewEncoder(w).Encode([]api.Product{})
		})
		browser, page, _ := newTestBrowser(t, mux)

		in, _ := page.Input(ui.InputSearch)
		in.Value = "blender"
		require.NoError(t, browser.ApplyFilters(context.Background()))
		require.NotEmpty(t, gotQuery)

		err := browser.ResetFilters(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "", gotQuery)
		assert.Equal(t, FilterState{}, browser.Filters())
		assert.Equal(t, "", in.Value, "controls cleared too")
	})
}

func TestLoadCategories(t *testing.T) {
	t.Run("Success - sentinel first, then one option per category", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/categories/", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]api.Category{
				{ID: 1, Name: "Electronics"},
				{ID: 2, Name: "Fashion"},
			})
		})
		browser, page, _ := newTestBrowser(t, mux)

		browser.LoadCategories(context.Background())

		sel, _ := page.Select(ui.SelectCategory)
		require.Len(t, sel.Options, 3)
		assert.Equal(t, ui.Option{Value: "", Label: "All Categories"}, sel.Options[0])
		assert.Equal(t, "1", sel.Options[1].Value)
		assert.Equal(t, "Fashion", sel.Options[2].Label)
	})

	t.Run("Failure - errors are logged only, selector untouched", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/categories/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		browser, page, _ := newTestBrowser(t, mux)

		assert.NotPanics(t, func() {
			browser.LoadCategories(context.Background())
		})
		sel, _ := page.Select(ui.SelectCategory)
		assert.Empty(t, sel.Options)
	})
}
