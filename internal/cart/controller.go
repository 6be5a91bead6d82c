// Package cart implements the cart view and the checkout flow. The
// server's snapshot is authoritative: every mutation replaces the
// rendered cart wholesale with the response, and the only client-side
// arithmetic is the checkout grand total.
package cart

import (
	"context"
	"fmt"
	"html"
	"html/template"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nuramustaphaali/nurastore/internal/api"
	"github.com/nuramustaphaali/nurastore/internal/logger"
	"github.com/nuramustaphaali/nurastore/internal/session"
	"github.com/nuramustaphaali/nurastore/internal/ui"
)

// SelectPaymentMethod is the payment method radio group on the
// checkout page.
const SelectPaymentMethod = "payment-method"

// Controller drives the cart and checkout screens.
type Controller struct {
	api     *api.Client
	session *session.Store
	doc     ui.Document
	toasts  ui.Toaster
	nav     ui.Navigator

	redirectDelay time.Duration

	// subtotal and zones are the only cached API state: the checkout
	// page's last-known cart subtotal and the delivery fee table,
	// both refreshed on each checkout-page load.
	subtotal api.Naira
	zones    []api.DeliveryZone
}

func NewController(client *api.Client, sess *session.Store, doc ui.Document, toasts ui.Toaster, nav ui.Navigator, redirectDelay time.Duration) *Controller {
	return &Controller{
		api:           client,
		session:       sess,
		doc:           doc,
		toasts:        toasts,
		nav:           nav,
		redirectDelay: redirectDelay,
	}
}

// CachedSubtotal returns the subtotal captured by the last
// LoadCheckoutSummary call.
func (c *Controller) CachedSubtotal() api.Naira {
	return c.subtotal
}

// AddToCart adds a product. Unauthenticated users are told to log in
// and bounced to the login page; no request is made.
func (c *Controller) AddToCart(ctx context.Context, productID, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}
	if !c.session.IsAuthenticated() {
		c.toasts.ShowToast("Please login to add items to your cart", ui.SeverityInfo)
		c.nav.NavigateAfter(ui.RouteLogin, c.redirectDelay)
		return api.ErrAuthRequired
	}

	cart, err := c.api.AddCartItem(ctx, c.session.AccessToken(), productID, quantity)
	if err != nil {
		logger.Error("add to cart failed", err, zap.Int("product_id", productID))
		c.toasts.ShowToast("Could not add item to cart", ui.SeverityError)
		return err
	}

	c.toasts.ShowToast("Added to cart", ui.SeveritySuccess)
	c.RenderCart(cart)
	return nil
}

// FetchCart loads and renders the current snapshot. No-op when logged
// out.
func (c *Controller) FetchCart(ctx context.Context) error {
	if !c.session.IsAuthenticated() {
		return nil
	}

	cart, err := c.api.GetCart(ctx, c.session.AccessToken())
	if err != nil {
		logger.Error("cart fetch failed", err)
		return err
	}

	c.RenderCart(cart)
	return nil
}

// UpdateCartItem PATCHes the quantity and re-renders from the server's
// post-mutation snapshot. The server owns clamping at zero and below.
func (c *Controller) UpdateCartItem(ctx context.Context, itemID, quantity int) error {
	cart, err := c.api.UpdateCartItem(ctx, c.session.AccessToken(), itemID, quantity)
	if err != nil {
		logger.Error("cart update failed", err, zap.Int("item_id", itemID))
		c.toasts.ShowToast("Could not update cart", ui.SeverityError)
		return err
	}

	c.RenderCart(cart)
	return nil
}

// RemoveCartItem deletes an item and re-renders from the snapshot.
func (c *Controller) RemoveCartItem(ctx context.Context, itemID int) error {
	cart, err := c.api.RemoveCartItem(ctx, c.session.AccessToken(), itemID)
	if err != nil {
		logger.Error("cart item removal failed", err, zap.Int("item_id", itemID))
		c.toasts.ShowToast("Could not remove item", ui.SeverityError)
		return err
	}

	c.RenderCart(cart)
	return nil
}

var cartRowTemplate = template.Must(template.New("cart-row").Parse(
	`<div class="cart-item d-flex align-items-center" data-item-id="{{.ID}}">` +
		`<img src="{{.Image}}" class="cart-thumb" alt="{{.Name}}">` +
		`<div class="flex-grow-1"><h6 class="mb-0">{{.Name}}</h6>` +
		`<small class="text-muted">{{.UnitPrice}}</small></div>` +
		`<div class="quantity-stepper">` +
		`<button data-action="qty-dec" data-item-id="{{.ID}}" data-quantity="{{.DecQuantity}}">-</button>` +
		`<span>{{.Quantity}}</span>` +
		`<button data-action="qty-inc" data-item-id="{{.ID}}" data-quantity="{{.IncQuantity}}">+</button>` +
		`</div>` +
		`<span class="fw-bold">{{.Subtotal}}</span>` +
		`<button class="btn btn-sm text-danger" data-action="remove-item" data-item-id="{{.ID}}">Remove</button>` +
		`</div>`))

type cartRowData struct {
	ID          int
	Name        string
	Image       string
	UnitPrice   string
	Quantity    int
	DecQuantity int
	IncQuantity int
	Subtotal    string
}

// RenderCart redraws the cart region from a server snapshot: the count
// badge, the rows with quantity steppers, and the server-confirmed
// total. An empty cart zeroes the totals and disables checkout.
func (c *Controller) RenderCart(cart api.Cart) {
	if badge, ok := c.doc.Anchor(ui.AnchorCartCount); ok {
		badge.SetHTML(strconv.Itoa(len(cart.Items)))
	}

	checkoutBtn, hasCheckout := c.doc.Button(ui.ButtonCheckout)
	items, hasItems := c.doc.Anchor(ui.AnchorCartItems)
	total, hasTotal := c.doc.Anchor(ui.AnchorCartTotal)

	if len(cart.Items) == 0 {
		if hasItems {
			items.SetHTML(`<div class="text-center py-5"><p class="text-muted">Your cart is empty.</p>` +
				`<a href="/" class="btn btn-primary">Continue Shopping</a></div>`)
		}
		if hasTotal {
			total.SetHTML(ui.FormatNaira(0))
		}
		if hasCheckout {
			checkoutBtn.Disabled = true
		}
		return
	}

	if hasItems {
		var sb strings.Builder
		for _, item := range cart.Items {
			row := cartRowData{
				ID:          item.ID,
				Name:        item.ProductName,
				Image:       item.ProductImage,
				UnitPrice:   ui.FormatNaira(item.ProductPrice),
				Quantity:    item.Quantity,
				DecQuantity: item.Quantity - 1,
				IncQuantity: item.Quantity + 1,
				Subtotal:    ui.FormatNaira(item.Subtotal),
			}
			if row.Image == "" {
				row.Image = "https://via.placeholder.com/80x80?text=No+Image"
			}
			if err := cartRowTemplate.Execute(&sb, row); err != nil {
				logger.Error("cart row render failed", err, zap.Int("item_id", item.ID))
			}
		}
		items.SetHTML(sb.String())
	}
	if hasTotal {
		total.SetHTML(ui.FormatNaira(cart.TotalPrice))
	}
	if hasCheckout {
		checkoutBtn.Disabled = false
	}
}

// LoadCheckoutSummary fetches the cart, caches the subtotal and renders
// the read-only summary. The grand total is provisional until a
// delivery zone is chosen.
func (c *Controller) LoadCheckoutSummary(ctx context.Context) error {
	if !c.session.IsAuthenticated() {
		return api.ErrAuthRequired
	}

	cart, err := c.api.GetCart(ctx, c.session.AccessToken())
	if err != nil {
		logger.Error("checkout summary fetch failed", err)
		return err
	}

	c.subtotal = cart.TotalPrice

	if anchor, ok := c.doc.Anchor(ui.AnchorCheckoutItems); ok {
		var sb strings.Builder
		for _, item := range cart.Items {
			sb.WriteString(fmt.Sprintf(
				`<div class="d-flex justify-content-between"><span>%s x%d</span><span>%s</span></div>`,
				html.EscapeString(item.ProductName), item.Quantity, ui.FormatNaira(item.Subtotal)))
		}
		anchor.SetHTML(sb.String())
	}
	if anchor, ok := c.doc.Anchor(ui.AnchorCheckoutCount); ok {
		anchor.SetHTML(strconv.Itoa(len(cart.Items)))
	}
	if anchor, ok := c.doc.Anchor(ui.AnchorSubtotal); ok {
		anchor.SetHTML(ui.FormatNaira(c.subtotal))
	}
	if anchor, ok := c.doc.Anchor(ui.AnchorGrandTotal); ok {
		anchor.SetHTML(ui.FormatNaira(c.subtotal))
	}
	return nil
}

// LoadDeliveryZones fetches the fee table once per checkout-page load
// and fills the state selector, each option carrying its fee and time
// estimate. Errors are logged only.
func (c *Controller) LoadDeliveryZones(ctx context.Context) {
	sel, ok := c.doc.Select(ui.SelectDeliveryState)
	if !ok {
		return
	}

	zones, err := c.api.ListDeliveryZones(ctx)
	if err != nil {
		logger.Error("delivery zone load failed", err)
		return
	}

	c.zones = zones
	opts := make([]ui.Option, 0, len(zones)+1)
	opts = append(opts, ui.Option{Value: "", Label: "Select State"})
	for _, z := range zones {
		opts = append(opts, ui.Option{
			Value: z.State,
			Label: fmt.Sprintf("%s (%s)", z.State, ui.FormatNaira(z.Fee)),
			Data: map[string]string{
				"fee":            fmt.Sprintf("%g", float64(z.Fee)),
				"estimated_time": z.EstimatedTime,
			},
		})
	}
	sel.SetOptions(opts)
}

// CalculateTotal recomputes the grand total from the cached subtotal
// and the selected zone's fee. With no zone selected the fee is zero
// and no time estimate shows. Returns the fee and grand total.
func (c *Controller) CalculateTotal() (api.Naira, api.Naira) {
	var fee api.Naira
	timeText := ""

	if sel, ok := c.doc.Select(ui.SelectDeliveryState); ok {
		if opt, chosen := sel.SelectedOption(); chosen {
			if f, err := strconv.ParseFloat(opt.Data["fee"], 64); err == nil {
				fee = api.Naira(f)
			}
			timeText = opt.Data["estimated_time"]
		}
	}

	grandTotal := c.subtotal + fee

	if anchor, ok := c.doc.Anchor(ui.AnchorDeliveryFee); ok {
		anchor.SetHTML(ui.FormatNaira(fee))
	}
	if anchor, ok := c.doc.Anchor(ui.AnchorDeliveryTime); ok {
		anchor.SetHTML(html.EscapeString(timeText))
	}
	if anchor, ok := c.doc.Anchor(ui.AnchorGrandTotal); ok {
		anchor.SetHTML(ui.FormatNaira(grandTotal))
	}
	return fee, grandTotal
}

// PlaceOrder submits the order form, augmented with the selected
// payment method. The submit control is disabled for the duration of
// the request and always restored to its original state; no failure
// leaves it stuck.
func (c *Controller) PlaceOrder(ctx context.Context, form api.CheckoutRequest, submit *ui.Button) error {
	if sel, ok := c.doc.Select(SelectPaymentMethod); ok && sel.Selected != "" {
		form.PaymentMethod = sel.Selected
	}

	var prevLabel string
	if submit != nil {
		prevLabel = submit.Label
		submit.Disabled = true
		submit.Label = "Placing Order..."
		defer func() {
			submit.Disabled = false
			submit.Label = prevLabel
		}()
	}

	result, err := c.api.Checkout(ctx, c.session.AccessToken(), form)
	if err != nil {
		if api.IsNetworkError(err) {
			c.toasts.ShowToast("Server connection failed", ui.SeverityError)
		} else {
			c.toasts.ShowToast(api.ServerMessage(err, "Order could not be placed"), ui.SeverityError)
		}
		return err
	}

	if result.Type == api.CheckoutResultTypeRedirect {
		c.toasts.ShowToast("Redirecting to payment...", ui.SeverityInfo)
		c.nav.Navigate(result.PaymentURL)
		return nil
	}

	c.toasts.ShowToast("Order placed successfully!", ui.SeveritySuccess)
	c.nav.NavigateAfter(ui.RouteOrderSuccess, c.redirectDelay)
	return nil
}
