package api

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Naira is a monetary amount. The API serializes decimal fields as JSON
// strings ("1500.00"), but numbers show up too, so unmarshalling accepts
// both. Null and empty string decode to zero.
type Naira float64

func (n *Naira) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*n = Naira(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Naira(f)
	return nil
}

func (n Naira) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(n))
}

// TokenPair is the login response shape.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// User is the authenticated profile returned by /me/.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Product is the read-only catalog projection.
type Product struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description,omitempty"`
	Price        Naira  `json:"price"`
	OldPrice     Naira  `json:"old_price"`
	Image        string `json:"image"`
	Stock        int    `json:"stock"`
	Category     int    `json:"category"`
	CategoryName string `json:"category_name"`
}

// Category is one entry of the category filter list.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// CartItem is one line of the server's cart snapshot.
type CartItem struct {
	ID           int    `json:"id"`
	ProductID    int    `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductPrice Naira  `json:"product_price"`
	ProductImage string `json:"product_image,omitempty"`
	Quantity     int    `json:"quantity"`
	Subtotal     Naira  `json:"subtotal"`
}

// Cart is the authoritative server snapshot. The client never derives
// cart state locally; every mutation replaces this wholesale.
type Cart struct {
	Items      []CartItem `json:"items"`
	TotalPrice Naira      `json:"total_price"`
}

// DeliveryZone maps a state to its delivery fee and time estimate.
type DeliveryZone struct {
	State         string `json:"state"`
	Fee           Naira  `json:"fee"`
	EstimatedTime string `json:"estimated_time"`
}

// CheckoutRequest carries the delivery form plus the chosen payment method.
type CheckoutRequest struct {
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	PaymentMethod string `json:"payment_method"`
}

// CheckoutResultTypeRedirect marks a checkout response that hands the
// user off to an external payment page.
const CheckoutResultTypeRedirect = "redirect-payment"

// CheckoutResult is the checkout response. Type distinguishes the
// payment-redirect shape from the plain confirmation shape.
type CheckoutResult struct {
	Type       string `json:"type,omitempty"`
	PaymentURL string `json:"payment_url,omitempty"`
	Message    string `json:"message,omitempty"`
	OrderID    string `json:"order_id,omitempty"`
}
