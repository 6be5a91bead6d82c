// Package api is the typed client for the storefront REST API. It owns
// request plumbing (bearer auth, request IDs, JSON codec) and the error
// taxonomy; it never touches the view layer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nuramustaphaali/nurastore/internal/logger"
)

// Client talks to the storefront API at a fixed base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client. baseURL includes the /api prefix, e.g.
// "http://localhost:8000/api".
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// do issues one request and decodes the response into out (when out is
// non-nil). A transport failure comes back as *NetworkError; a non-2xx
// status as *RequestError or, for field-keyed bodies, *ValidationError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("api request failed", err,
			zap.String("method", method),
			zap.String("path", path),
		)
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError extracts the server's message from a failed response.
// Bodies come in three flavours: {"detail": "..."} (auth endpoints),
// {"error"/"message": "..."} (the rest), and field-keyed validation maps
// whose values are arrays of strings.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var generic struct {
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &generic); err == nil {
		for _, msg := range []string{generic.Detail, generic.Error, generic.Message} {
			if msg != "" {
				return &RequestError{Status: resp.StatusCode, Message: msg}
			}
		}
	}

	var fields map[string][]string
	if err := json.Unmarshal(raw, &fields); err == nil && len(fields) > 0 {
		return &ValidationError{Status: resp.StatusCode, Fields: fields}
	}

	return &RequestError{Status: resp.StatusCode}
}

// ---- Auth endpoints ----

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, username, password string) (TokenPair, error) {
	payload := map[string]string{"username": username, "password": password}
	var tokens TokenPair
	if err := c.do(ctx, http.MethodPost, "/login/", nil, "", payload, &tokens); err != nil {
		return TokenPair{}, err
	}
	return tokens, nil
}

// Register creates an account. Rejections surface as *ValidationError
// keyed by the offending field.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/register/", nil, "", req, nil)
}

// Me fetches the profile behind the bearer token.
func (c *Client) Me(ctx context.Context, token string) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/me/", nil, token, nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// ---- Catalog endpoints ----

// ListProducts fetches the catalog filtered by query (already reduced to
// non-empty fields by the caller).
func (c *Client) ListProducts(ctx context.Context, query url.Values) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/products/", query, "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListCategories fetches the category list for the filter control.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.do(ctx, http.MethodGet, "/categories/", nil, "", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// ---- Cart & checkout endpoints ----

// GetCart fetches the current cart snapshot.
func (c *Client) GetCart(ctx context.Context, token string) (Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodGet, "/cart/", nil, token, nil, &cart); err != nil {
		return Cart{}, err
	}
	return cart, nil
}

// AddCartItem adds a product and returns the post-mutation snapshot.
func (c *Client) AddCartItem(ctx context.Context, token string, productID, quantity int) (Cart, error) {
	payload := map[string]int{"product_id": productID, "quantity": quantity}
	var cart Cart
	if err := c.do(ctx, http.MethodPost, "/cart/", nil, token, payload, &cart); err != nil {
		return Cart{}, err
	}
	return cart, nil
}

// UpdateCartItem sets an item's quantity. The server clamps at zero and
// below by removing the item; the client does not pre-validate.
func (c *Client) UpdateCartItem(ctx context.Context, token string, itemID, quantity int) (Cart, error) {
	payload := map[string]int{"quantity": quantity}
	var cart Cart
	path := fmt.Sprintf("/cart/items/%d/", itemID)
	if err := c.do(ctx, http.MethodPatch, path, nil, token, payload, &cart); err != nil {
		return Cart{}, err
	}
	return cart, nil
}

// RemoveCartItem deletes an item and returns the snapshot.
func (c *Client) RemoveCartItem(ctx context.Context, token string, itemID int) (Cart, error) {
	var cart Cart
	path := fmt.Sprintf("/cart/items/%d/", itemID)
	if err := c.do(ctx, http.MethodDelete, path, nil, token, nil, &cart); err != nil {
		return Cart{}, err
	}
	return cart, nil
}

// ListDeliveryZones fetches the delivery fee table.
func (c *Client) ListDeliveryZones(ctx context.Context) ([]DeliveryZone, error) {
	var zones []DeliveryZone
	if err := c.do(ctx, http.MethodGet, "/delivery-zones/", nil, "", nil, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// Checkout submits the order.
func (c *Client) Checkout(ctx context.Context, token string, req CheckoutRequest) (CheckoutResult, error) {
	var result CheckoutResult
	if err := c.do(ctx, http.MethodPost, "/checkout/", nil, token, req, &result); err != nil {
		return CheckoutResult{}, err
	}
	return result, nil
}
