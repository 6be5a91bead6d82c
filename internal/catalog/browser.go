// Package catalog implements product listing: filter state, the product
// fetch, and the card grid rendering.
package catalog

import (
	"context"
	"fmt"
	"html/template"
	"math"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/nuramustaphaali/nurastore/internal/api"
	"github.com/nuramustaphaali/nurastore/internal/logger"
	"github.com/nuramustaphaali/nurastore/internal/ui"
)

// PlaceholderImage fills in for products without a picture.
const PlaceholderImage = "https://via.placeholder.com/300x300?text=No+Image"

const skeletonCount = 8

// FilterState is the transient set of catalog constraints. Zero values
// mean "unset" and are left out of the query string.
type FilterState struct {
	Search   string
	Category string
	Ordering string
	PriceMin string
	PriceMax string
}

// Query reduces the state to a query string with only non-empty fields.
func (f FilterState) Query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Ordering != "" {
		q.Set("ordering", f.Ordering)
	}
	if f.PriceMin != "" {
		q.Set("price_min", f.PriceMin)
	}
	if f.PriceMax != "" {
		q.Set("price_max", f.PriceMax)
	}
	return q
}

// DiscountPercent computes the badge percentage for a discounted
// product. ok is false when no badge should render.
func DiscountPercent(price, oldPrice api.Naira) (int, bool) {
	if oldPrice <= price || oldPrice <= 0 {
		return 0, false
	}
	return int(math.Round(float64(oldPrice-price) / float64(oldPrice) * 100)), true
}

// Browser fetches and renders the product grid for the current filters.
type Browser struct {
	api    *api.Client
	doc    ui.Document
	toasts ui.Toaster

	filters FilterState
}

func NewBrowser(client *api.Client, doc ui.Document, toasts ui.Toaster) *Browser {
	return &Browser{api: client, doc: doc, toasts: toasts}
}

// Filters returns a copy of the current filter state.
func (b *Browser) Filters() FilterState {
	return b.filters
}

// FetchProducts shows skeleton placeholders, queries the catalog with
// the current filters and renders the result. Server rejections render
// the inline error state; an empty result renders the empty state with
// a clear-filters affordance.
func (b *Browser) FetchProducts(ctx context.Context) error {
	anchor, ok := b.doc.Anchor(ui.AnchorProductList)
	if !ok {
		return nil
	}

	ui.RenderSkeleton(b.doc, ui.AnchorProductList, skeletonCount)

	products, err := b.api.ListProducts(ctx, b.filters.Query())
	if err != nil {
		logger.Error("product fetch failed", err)
		anchor.SetHTML(
			`<div class="col-12 text-center text-danger py-4">` +
				`<p>Failed to load products. Please try again.</p></div>`)
		return err
	}

	if len(products) == 0 {
		anchor.SetHTML(
			`<div class="col-12 text-center py-5">` +
				`<p class="text-muted">No products found.</p>` +
				`<button class="btn btn-outline-secondary" data-action="reset-filters">Clear Filters</button>` +
				`</div>`)
		return nil
	}

	var sb strings.Builder
	for _, p := range products {
		if err := renderCard(&sb, p); err != nil {
			logger.Error("product card render failed", err, zap.Int("product_id", p.ID))
		}
	}
	anchor.SetHTML(sb.String())
	return nil
}

// ApplyFilters reads the filter controls present on the page into the
// filter state and re-fetches. Absent controls leave their field as is.
func (b *Browser) ApplyFilters(ctx context.Context) error {
	if in, ok := b.doc.Input(ui.InputSearch); ok {
		b.filters.Search = strings.TrimSpace(in.Value)
	}
	if sel, ok := b.doc.Select(ui.SelectCategory); ok {
		b.filters.Category = sel.Selected
	}
	if sel, ok := b.doc.Select(ui.SelectSort); ok {
		b.filters.Ordering = sel.Selected
	}
	if in, ok := b.doc.Input(ui.InputPriceMin); ok {
		b.filters.PriceMin = strings.TrimSpace(in.Value)
	}
	if in, ok := b.doc.Input(ui.InputPriceMax); ok {
		b.filters.PriceMax = strings.TrimSpace(in.Value)
	}
	return b.FetchProducts(ctx)
}

// ResetFilters restores the defaults, clears the controls and
// re-fetches.
func (b *Browser) ResetFilters(ctx context.Context) error {
	b.filters = FilterState{}

	if in, ok := b.doc.Input(ui.InputSearch); ok {
		in.Value = ""
	}
	if sel, ok := b.doc.Select(ui.SelectCategory); ok {
		sel.Selected = ""
	}
	if sel, ok := b.doc.Select(ui.SelectSort); ok {
		sel.Selected = ""
	}
	if in, ok := b.doc.Input(ui.InputPriceMin); ok {
		in.Value = ""
	}
	if in, ok := b.doc.Input(ui.InputPriceMax); ok {
		in.Value = ""
	}
	return b.FetchProducts(ctx)
}

// LoadCategories fills the category selector, keeping the "All
// Categories" sentinel first. Errors are logged only.
func (b *Browser) LoadCategories(ctx context.Context) {
	sel, ok := b.doc.Select(ui.SelectCategory)
	if !ok {
		return
	}

	categories, err := b.api.ListCategories(ctx)
	if err != nil {
		logger.Error("category load failed", err)
		return
	}

	opts := make([]ui.Option, 0, len(categories)+1)
	opts = append(opts, ui.Option{Value: "", Label: "All Categories"})
	for _, c := range categories {
		opts = append(opts, ui.Option{Value: fmt.Sprintf("%d", c.ID), Label: c.Name})
	}
	sel.SetOptions(opts)
}

// cardData is the template model for one product card.
type cardData struct {
	api.Product
	ImageURL      string
	CategoryLabel string
	Price         string
	OldPrice      string
	BadgePercent  int
	HasBadge      bool
	DetailRoute   string
}

var cardTemplate = template.Must(template.New("product-card").Parse(
	`<div class="col"><div class="card h-100 shadow-sm border-0">` +
		`<div class="position-relative">` +
		`{{if .HasBadge}}<span class="position-absolute top-0 start-0 badge bg-danger m-2">-{{.BadgePercent}}%</span>{{end}}` +
		`<img src="{{.ImageURL}}" class="card-img-top" alt="{{.Name}}">` +
		`</div><div class="card-body d-flex flex-column">` +
		`<small class="text-muted mb-1 text-uppercase">{{.CategoryLabel}}</small>` +
		`<h5 class="card-title text-truncate" title="{{.Name}}">{{.Name}}</h5>` +
		`<div class="mt-auto pt-3">` +
		`<div class="d-flex align-items-center justify-content-between mb-3">` +
		`<span class="fs-5 fw-bold text-dark">{{.Price}}</span>` +
		`{{if .OldPrice}}<small class="text-muted text-decoration-line-through">{{.OldPrice}}</small>{{end}}` +
		`</div>` +
		`<a class="btn btn-link p-0 mb-2" href="{{.DetailRoute}}">View</a>` +
		`<button class="btn btn-outline-primary w-100" data-action="add-to-cart" data-product-id="{{.ID}}">Add to Cart</button>` +
		`</div></div></div></div>`))

func renderCard(sb *strings.Builder, p api.Product) error {
	data := cardData{
		Product:       p,
		ImageURL:      p.Image,
		CategoryLabel: p.CategoryName,
		Price:         ui.FormatNaira(p.Price),
		DetailRoute:   fmt.Sprintf("/product/%s/", p.Slug),
	}
	if data.ImageURL == "" {
		data.ImageURL = PlaceholderImage
	}
	if data.CategoryLabel == "" {
		data.CategoryLabel = "General"
	}
	if p.OldPrice > 0 {
		data.OldPrice = ui.FormatNaira(p.OldPrice)
	}
	if pct, ok := DiscountPercent(p.Price, p.OldPrice); ok {
		data.BadgePercent = pct
		data.HasBadge = true
	}
	return cardTemplate.Execute(sb, data)
}
