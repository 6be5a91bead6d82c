// Command storefront is an interactive terminal front end for the
// storefront API: product browsing with filters, cart management and
// checkout, with the session persisted between runs.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nuramustaphaali/nurastore/internal/api"
	"github.com/nuramustaphaali/nurastore/internal/cart"
	"github.com/nuramustaphaali/nurastore/internal/catalog"
	"github.com/nuramustaphaali/nurastore/internal/config"
	"github.com/nuramustaphaali/nurastore/internal/localstore"
	"github.com/nuramustaphaali/nurastore/internal/logger"
	"github.com/nuramustaphaali/nurastore/internal/session"
	"github.com/nuramustaphaali/nurastore/internal/ui"
)

type app struct {
	doc     *ui.Page
	session *session.Store
	browser *catalog.Browser
	cart    *cart.Controller

	toastAnchor *ui.Anchor
	route       string
}

// terminalNavigator prints route changes; delayed navigations sleep so
// the user can read the toast first, same as the page-based UI did.
type terminalNavigator struct {
	app *app
}

func (n *terminalNavigator) Navigate(route string) {
	n.app.route = route
	fmt.Printf("-> %s\n", route)
}

func (n *terminalNavigator) NavigateAfter(route string, delay time.Duration) {
	n.app.drainToasts()
	time.Sleep(delay)
	n.Navigate(route)
}

func main() {
	cfg := config.Load()
	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	storage, err := localstore.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Log.Fatal("session storage unavailable", zap.Error(err))
	}

	a := &app{doc: buildPage(), route: ui.RouteHome}
	nav := &terminalNavigator{app: a}
	toasts := ui.NewToastHost(a.doc, cfg.ToastDuration)
	client := api.New(cfg.APIBaseURL, cfg.HTTPTimeout)

	a.session = session.NewStore(client, storage, a.doc, toasts, nav, cfg.RedirectDelay)
	a.browser = catalog.NewBrowser(client, a.doc, toasts)
	a.cart = cart.NewController(client, a.session, a.doc, toasts, nav, cfg.RedirectDelay)
	a.toastAnchor, _ = a.doc.Anchor(ui.AnchorToastContainer)

	ctx := context.Background()
	a.session.UpdateUI()
	if _, err := a.session.FetchUser(ctx); err != nil {
		logger.Debug("startup profile refresh failed", zap.Error(err))
	}

	fmt.Println("nurastore — type 'help' for commands")
	a.repl(ctx)
}

func buildPage() *ui.Page {
	p := ui.NewPage()
	for _, id := range []string{
		ui.AnchorToastContainer, ui.AnchorAuthLinks, ui.AnchorProductList,
		ui.AnchorCartItems, ui.AnchorCartCount, ui.AnchorCartTotal,
		ui.AnchorCheckoutItems, ui.AnchorCheckoutCount, ui.AnchorSubtotal,
		ui.AnchorDeliveryFee, ui.AnchorDeliveryTime, ui.AnchorGrandTotal,
	} {
		p.AddAnchor(id)
	}
	p.AddInput(ui.InputSearch)
	p.AddInput(ui.InputPriceMin)
	p.AddInput(ui.InputPriceMax)
	p.AddSelect(ui.SelectCategory)
	p.AddSelect(ui.SelectSort)
	p.AddSelect(ui.SelectDeliveryState)
	p.AddSelect(cart.SelectPaymentMethod)
	p.AddButton(ui.ButtonCheckout, "Checkout")
	p.AddButton(ui.ButtonPlaceOrder, "Place Order")
	return p
}

func (a *app) repl(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "quit", "exit":
			return
		case "help":
			printHelp()
		case "login":
			if len(args) != 2 {
				fmt.Println("usage: login <username> <password>")
				continue
			}
			_ = a.session.Login(ctx, args[0], args[1])
		case "register":
			if len(args) != 4 {
				fmt.Println("usage: register <username> <email> <password> <confirm>")
				continue
			}
			_ = a.session.Register(ctx, api.RegisterRequest{
				Username: args[0], Email: args[1], Password: args[2], ConfirmPassword: args[3],
			})
		case "logout":
			a.session.Logout()
		case "whoami":
			a.session.UpdateUI()
			a.printAnchor(ui.AnchorAuthLinks)
		case "products":
			_ = a.browser.FetchProducts(ctx)
			a.browser.LoadCategories(ctx)
			a.printAnchor(ui.AnchorProductList)
		case "search":
			if in, ok := a.doc.Input(ui.InputSearch); ok {
				in.Value = strings.Join(args, " ")
			}
			_ = a.browser.ApplyFilters(ctx)
			a.printAnchor(ui.AnchorProductList)
		case "category":
			if sel, ok := a.doc.Select(ui.SelectCategory); ok && len(args) == 1 {
				sel.Selected = args[0]
			}
			_ = a.browser.ApplyFilters(ctx)
			a.printAnchor(ui.AnchorProductList)
		case "sort":
			if sel, ok := a.doc.Select(ui.SelectSort); ok && len(args) == 1 {
				sel.Selected = args[0]
			}
			_ = a.browser.ApplyFilters(ctx)
			a.printAnchor(ui.AnchorProductList)
		case "clear":
			_ = a.browser.ResetFilters(ctx)
			a.printAnchor(ui.AnchorProductList)
		case "cart":
			_ = a.cart.FetchCart(ctx)
			a.printAnchor(ui.AnchorCartItems)
			fmt.Println("total:", stripTags(a.anchorHTML(ui.AnchorCartTotal)))
		case "add":
			productID, qty, ok := parseAddArgs(args)
			if !ok {
				fmt.Println("usage: add <product-id> [quantity]")
				continue
			}
			_ = a.cart.AddToCart(ctx, productID, qty)
		case "qty":
			if len(args) != 2 {
				fmt.Println("usage: qty <item-id> <quantity>")
				continue
			}
			itemID, _ := strconv.Atoi(args[0])
			quantity, _ := strconv.Atoi(args[1])
			_ = a.cart.UpdateCartItem(ctx, itemID, quantity)
			a.printAnchor(ui.AnchorCartItems)
		case "rm":
			if len(args) != 1 {
				fmt.Println("usage: rm <item-id>")
				continue
			}
			itemID, _ := strconv.Atoi(args[0])
			_ = a.cart.RemoveCartItem(ctx, itemID)
			a.printAnchor(ui.AnchorCartItems)
		case "checkout":
			if err := a.cart.LoadCheckoutSummary(ctx); err != nil {
				a.drainToasts()
				continue
			}
			a.cart.LoadDeliveryZones(ctx)
			a.printAnchor(ui.AnchorCheckoutItems)
			fmt.Println("subtotal:", stripTags(a.anchorHTML(ui.AnchorSubtotal)))
		case "state":
			if sel, ok := a.doc.Select(ui.SelectDeliveryState); ok && len(args) >= 1 {
				sel.Selected = strings.Join(args, " ")
			}
			fee, total := a.cart.CalculateTotal()
			fmt.Printf("delivery: %s (%s), grand total: %s\n",
				ui.FormatNaira(fee),
				stripTags(a.anchorHTML(ui.AnchorDeliveryTime)),
				ui.FormatNaira(total))
		case "order":
			// order <full-name>;<phone>;<address>;<city> [method]
			rest := strings.Join(args, " ")
			fields := strings.SplitN(rest, ";", 4)
			if len(fields) != 4 {
				fmt.Println("usage: order <name>;<phone>;<address>;<city> (set payment with 'pay')")
				continue
			}
			form := api.CheckoutRequest{
				FullName: strings.TrimSpace(fields[0]),
				Phone:    strings.TrimSpace(fields[1]),
				Address:  strings.TrimSpace(fields[2]),
				City:     strings.TrimSpace(fields[3]),
			}
			if sel, ok := a.doc.Select(ui.SelectDeliveryState); ok {
				form.State = sel.Selected
			}
			submit, _ := a.doc.Button(ui.ButtonPlaceOrder)
			_ = a.cart.PlaceOrder(ctx, form, submit)
		case "pay":
			if sel, ok := a.doc.Select(cart.SelectPaymentMethod); ok && len(args) == 1 {
				sel.Options = []ui.Option{{Value: args[0], Label: args[0]}}
				sel.Selected = args[0]
			}
		default:
			fmt.Println("unknown command; type 'help'")
		}

		a.drainToasts()
	}
}

func parseAddArgs(args []string) (int, int, bool) {
	if len(args) == 0 || len(args) > 2 {
		return 0, 0, false
	}
	productID, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, false
	}
	qty := 1
	if len(args) == 2 {
		if qty, err = strconv.Atoi(args[1]); err != nil {
			return 0, 0, false
		}
	}
	return productID, qty, true
}

func printHelp() {
	fmt.Println(`commands:
  products                   list products (current filters)
  search <text>              filter by search text
  category <id>              filter by category id
  sort <ordering>            price | -price | name | -name
  clear                      reset all filters
  login <user> <pass>        sign in
  register <u> <e> <p> <c>   create an account
  logout                     sign out
  whoami                     show auth state
  cart                       show the cart
  add <product-id> [qty]     add to cart
  qty <item-id> <n>          change quantity
  rm <item-id>               remove item
  checkout                   load checkout summary + delivery zones
  state <name>               choose delivery state
  pay <method>               choose payment method (e.g. paystack, cod)
  order <name>;<phone>;<address>;<city>
  quit`)
}

func (a *app) anchorHTML(id string) string {
	if anchor, ok := a.doc.Anchor(id); ok {
		return anchor.HTML()
	}
	return ""
}

func (a *app) printAnchor(id string) {
	text := stripTags(a.anchorHTML(id))
	if text != "" {
		fmt.Println(text)
	}
}

// drainToasts prints and clears pending toast fragments so transient
// feedback lands in the terminal right after each action.
func (a *app) drainToasts() {
	if a.toastAnchor == nil {
		return
	}
	if text := stripTags(a.toastAnchor.HTML()); text != "" {
		fmt.Println("!", text)
	}
	a.toastAnchor.Clear()
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripTags flattens rendered fragments into terminal-friendly text.
func stripTags(html string) string {
	text := tagPattern.ReplaceAllString(html, " ")
	lines := strings.Fields(text)
	return strings.Join(lines, " ")
}
