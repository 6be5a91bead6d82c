// Package ui is the thin view-binding layer between the storefront
// logic and whatever actually draws the screen. Logic writes into named
// anchors and reads named controls; renderers decide how that becomes
// pixels. Everything here is usable without a rendering environment.
package ui

import "sync"

// Fixed element identifiers shared between logic and renderers.
const (
	AnchorToastContainer = "toast-container"
	AnchorAuthLinks      = "auth-links"
	AnchorProductList    = "product-list"
	AnchorCartItems      = "cart-items"
	AnchorCartCount      = "cart-count"
	AnchorCartTotal      = "cart-total"
	AnchorCheckoutItems  = "checkout-items"
	AnchorCheckoutCount  = "checkout-count"
	AnchorSubtotal       = "checkout-subtotal"
	AnchorDeliveryFee    = "delivery-fee"
	AnchorDeliveryTime   = "delivery-time"
	AnchorGrandTotal     = "grand-total"

	InputSearch   = "search-input"
	InputPriceMin = "price-min"
	InputPriceMax = "price-max"

	SelectCategory      = "category-filter"
	SelectSort          = "sort-filter"
	SelectDeliveryState = "delivery-state"

	ButtonCheckout   = "checkout-btn"
	ButtonPlaceOrder = "place-order-btn"
)

// Document exposes the named elements of the current page. Lookups
// return false when the element is not part of the page; callers are
// expected to tolerate that (not every page has every control).
type Document interface {
	Anchor(id string) (*Anchor, bool)
	Input(id string) (*Input, bool)
	Select(id string) (*Select, bool)
	Button(id string) (*Button, bool)
}

// Anchor is a content region replaced wholesale on each render. It is
// safe for concurrent use because toast dismissal fires from a timer.
type Anchor struct {
	mu   sync.Mutex
	html string
}

func (a *Anchor) SetHTML(html string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.html = html
}

func (a *Anchor) AppendHTML(html string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.html += html
}

func (a *Anchor) HTML() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.html
}

func (a *Anchor) Clear() {
	a.SetHTML("")
}

// Input is a single-value text control.
type Input struct {
	Value string
}

// Option is one entry of a Select. Data carries per-option payload the
// way the original markup used data-* attributes (e.g. a delivery
// zone's fee and time estimate).
type Option struct {
	Value string
	Label string
	Data  map[string]string
}

// Select is a single-choice control.
type Select struct {
	Options  []Option
	Selected string
}

// SetOptions replaces the option list and clears the selection if the
// selected value no longer exists.
func (s *Select) SetOptions(opts []Option) {
	s.Options = opts
	for _, o := range opts {
		if o.Value == s.Selected {
			return
		}
	}
	s.Selected = ""
}

// SelectedOption returns the currently selected option, if any.
func (s *Select) SelectedOption() (Option, bool) {
	for _, o := range s.Options {
		if o.Value == s.Selected && o.Value != "" {
			return o, true
		}
	}
	return Option{}, false
}

// Button is a clickable control whose label and enabled state the logic
// layer may change during an in-flight submission.
type Button struct {
	Label    string
	Disabled bool
}

// Page is the standard Document implementation: a registry of elements
// declared by the front end for the current screen.
type Page struct {
	anchors map[string]*Anchor
	inputs  map[string]*Input
	selects map[string]*Select
	buttons map[string]*Button
}

func NewPage() *Page {
	return &Page{
		anchors: make(map[string]*Anchor),
		inputs:  make(map[string]*Input),
		selects: make(map[string]*Select),
		buttons: make(map[string]*Button),
	}
}

func (p *Page) AddAnchor(id string) *Anchor {
	a := &Anchor{}
	p.anchors[id] = a
	return a
}

func (p *Page) AddInput(id string) *Input {
	in := &Input{}
	p.inputs[id] = in
	return in
}

func (p *Page) AddSelect(id string) *Select {
	s := &Select{}
	p.selects[id] = s
	return s
}

func (p *Page) AddButton(id, label string) *Button {
	b := &Button{Label: label}
	p.buttons[id] = b
	return b
}

func (p *Page) Anchor(id string) (*Anchor, bool) {
	a, ok := p.anchors[id]
	return a, ok
}

func (p *Page) Input(id string) (*Input, bool) {
	in, ok := p.inputs[id]
	return in, ok
}

func (p *Page) Select(id string) (*Select, bool) {
	s, ok := p.selects[id]
	return s, ok
}

func (p *Page) Button(id string) (*Button, bool) {
	b, ok := p.buttons[id]
	return b, ok
}
