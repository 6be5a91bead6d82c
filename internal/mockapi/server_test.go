package mockapi

import (
	"context"
	"errors"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuramustaphaali/nurastore/internal/api"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestClient stands up a Server and returns the typed client pointed
// at it, exactly as the storefront itself would connect.
func newTestClient(t *testing.T) (*api.Client, *Server) {
	t.Helper()
	server := New("test-secret", nil)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return api.New(ts.URL+"/api", 2*time.Second), server
}

func loginAs(t *testing.T, client *api.Client, server *Server, username string) string {
	t.Helper()
	require.NoError(t, server.SeedUser(username, username+"@example.com", "secret123"))
	tokens, err := client.Login(context.Background(), username, "secret123")
	require.NoError(t, err)
	return tokens.Access
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("Success - 200 OK with token pair", func(t *testing.T) {
		// Arrange
		client, server := newTestClient(t)
		require.NoError(t, server.SeedUser("ada", "ada@example.com", "secret123"))

		// Act
		tokens, err := client.Login(context.Background(), "ada", "secret123")

		// Assert
		require.NoError(t, err)
		assert.NotEmpty(t, tokens.Access)
		assert.NotEmpty(t, tokens.Refresh)
		assert.NotEqual(t, tokens.Access, tokens.Refresh)
	})

	t.Run("Failure - 401 Unauthorized with DRF-style detail", func(t *testing.T) {
		client, server := newTestClient(t)
		require.NoError(t, server.SeedUser("ada", "ada@example.com", "secret123"))

		_, err := client.Login(context.Background(), "ada", "wrong")

		require.Error(t, err)
		assert.True(t, api.IsAuthRejection(err))
		assert.Equal(t, "No active account found with the given credentials", api.ServerMessage(err, ""))
	})
}

func TestRegisterEndpoint(t *testing.T) {
	t.Run("Success - 201 Created then account can log in", func(t *testing.T) {
		client, _ := newTestClient(t)

		err := client.Register(context.Background(), api.RegisterRequest{
			Username:        "ngozi",
			Email:           "ngozi@example.com",
			Password:        "pass1234",
			ConfirmPassword: "pass1234",
		})

		require.NoError(t, err)
		_, err = client.Login(context.Background(), "ngozi", "pass1234")
		assert.NoError(t, err)
	})

	t.Run("Failure - 400 with field-keyed errors for taken username", func(t *testing.T) {
		client, server := newTestClient(t)
		require.NoError(t, server.SeedUser("ada", "ada@example.com", "secret123"))

		err := client.Register(context.Background(), api.RegisterRequest{
			Username:        "ada",
			Email:           "other@example.com",
			Password:        "pass1234",
			ConfirmPassword: "pass1234",
		})

		var verr *api.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"This username is already taken."}, verr.Fields["username"])
		assert.NotContains(t, verr.Fields, "email")
	})

	t.Run("Failure - missing fields and password mismatch reported together", func(t *testing.T) {
		client, _ := newTestClient(t)

		err := client.Register(context.Background(), api.RegisterRequest{
			Email:           "x@example.com",
			Password:        "one",
			ConfirmPassword: "two",
		})

		var verr *api.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"This field is required."}, verr.Fields["username"])
		assert.Equal(t, []string{"Password fields didn't match."}, verr.Fields["password"])
	})
}

func TestAuthGuard(t *testing.T) {
	t.Run("Failure - missing credentials", func(t *testing.T) {
		client, _ := newTestClient(t)

		_, err := client.GetCart(context.Background(), "")

		assert.True(t, api.IsAuthRejection(err))
		assert.Equal(t, "Authentication credentials were not provided.", api.ServerMessage(err, ""))
	})

	t.Run("Failure - forged token", func(t *testing.T) {
		client, _ := newTestClient(t)

		_, err := client.GetCart(context.Background(), "not-a-jwt")

		assert.True(t, api.IsAuthRejection(err))
		assert.Equal(t, "Given token not valid for any token type", api.ServerMessage(err, ""))
	})

	t.Run("Success - bearer token reaches the profile", func(t *testing.T) {
		client, server := newTestClient(t)
		token := loginAs(t, client, server, "ada")

		user, err := client.Me(context.Background(), token)

		require.NoError(t, err)
		assert.Equal(t, "ada", user.Username)
		assert.Equal(t, "ada@example.com", user.Email)
	})
}

func TestCatalogEndpoints(t *testing.T) {
	t.Run("Success - unfiltered listing returns the seeded catalog", func(t *testing.T) {
		client, _ := newTestClient(t)

		products, err := client.ListProducts(context.Background(), nil)

		require.NoError(t, err)
		assert.Len(t, products, 6)
	})

	t.Run("Success - search is case-insensitive substring match", func(t *testing.T) {
		client, _ := newTestClient(t)

		products, err := client.ListProducts(context.Background(), url.Values{"search": {"BLEND"}})

		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Blender", products[0].Name)
	})

	t.Run("Success - category, ordering and price bounds combine", func(t *testing.T) {
		client, _ := newTestClient(t)

		products, err := client.ListProducts(context.Background(), url.Values{
			"category":  {"2"},
			"ordering":  {"-price"},
			"price_min": {"5000"},
		})

		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "Leather Sandals", products[0].Name)
		assert.Equal(t, "Ankara Shirt", products[1].Name)
	})

	t.Run("Success - categories and delivery zones", func(t *testing.T) {
		client, _ := newTestClient(t)

		categories, err := client.ListCategories(context.Background())
		require.NoError(t, err)
		assert.Len(t, categories, 3)

		zones, err := client.ListDeliveryZones(context.Background())
		require.NoError(t, err)
		require.Len(t, zones, 4)
		assert.Equal(t, "Lagos", zones[0].State)
		assert.Equal(t, api.Naira(1500), zones[0].Fee)
		assert.Equal(t, "1-2 days", zones[0].EstimatedTime)
	})
}

func TestCartLifecycle(t *testing.T) {
	t.Run("Success - add, merge, update, remove", func(t *testing.T) {
		// Arrange
		client, server := newTestClient(t)
		token := loginAs(t, client, server, "ada")
		ctx := context.Background()

		// A fresh cart is empty, not an error.
		cart, err := client.GetCart(ctx, token)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
		assert.Equal(t, api.Naira(0), cart.TotalPrice)

		// Adding the same product twice merges into one line.
		_, err = client.AddCartItem(ctx, token, 1, 1)
		require.NoError(t, err)
		cart, err = client.AddCartItem(ctx, token, 1, 2)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 3, cart.Items[0].Quantity)
		assert.Equal(t, api.Naira(3*18500), cart.Items[0].Subtotal)

		// A second product gets its own line and the total sums both.
		cart, err = client.AddCartItem(ctx, token, 5, 1)
		require.NoError(t, err)
		require.Len(t, cart.Items, 2)
		assert.Equal(t, api.Naira(3*18500+22500), cart.TotalPrice)

		// PATCH replaces the quantity outright.
		cart, err = client.UpdateCartItem(ctx, token, cart.Items[0].ID, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, cart.Items[0].Quantity)

		// Quantity zero removes the line server-side.
		cart, err = client.UpdateCartItem(ctx, token, cart.Items[0].ID, 0)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 5, cart.Items[0].ProductID)

		// DELETE empties the cart.
		cart, err = client.RemoveCartItem(ctx, token, cart.Items[0].ID)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
	})

	t.Run("Failure - unknown product and unknown item", func(t *testing.T) {
		client, server := newTestClient(t)
		token := loginAs(t, client, server, "ada")
		ctx := context.Background()

		_, err := client.AddCartItem(ctx, token, 999, 1)
		assert.Equal(t, "product not found", api.ServerMessage(err, ""))

		_, err = client.AddCartItem(ctx, token, 1, 1)
		require.NoError(t, err)
		_, err = client.UpdateCartItem(ctx, token, 999, 2)
		assert.Equal(t, "item not found", api.ServerMessage(err, ""))
	})

	t.Run("Isolation - carts are per account", func(t *testing.T) {
		client, server := newTestClient(t)
		adaToken := loginAs(t, client, server, "ada")
		binTaken := loginAs(t, client, server, "bintu")
		ctx := context.Background()

		_, err := client.AddCartItem(ctx, adaToken, 1, 1)
		require.NoError(t, err)

		cart, err := client.GetCart(ctx, binTaken)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
	})
}

func TestCheckoutEndpoint(t *testing.T) {
	form := api.CheckoutRequest{
		FullName: "Ada O.",
		Phone:    "0800000000",
		Address:  "12 Marina Rd",
		City:     "Ikeja",
		State:    "Lagos",
	}

	t.Run("Failure - empty cart rejected", func(t *testing.T) {
		client, server := newTestClient(t)
		token := loginAs(t, client, server, "ada")

		_, err := client.Checkout(context.Background(), token, form)

		assert.Equal(t, "Your cart is empty", api.ServerMessage(err, ""))
	})

	t.Run("Failure - address and state required", func(t *testing.T) {
		client, server := newTestClient(t)
		token := loginAs(t, client, server, "ada")
		_, err := client.AddCartItem(context.Background(), token, 1, 1)
		require.NoError(t, err)

		incomplete := form
		incomplete.Address = "   "
		_, err = client.Checkout(context.Background(), token, incomplete)

		assert.Equal(t, "Delivery address and state are required", api.ServerMessage(err, ""))
		var rerr *api.RequestError
		if errors.As(err, &rerr) {
			assert.Equal(t, 400, rerr.Status)
		}
	})

	t.Run("Success - standard order clears the cart", func(t *testing.T) {
		client, server := newTestClient(t)
		token := loginAs(t, client, server, "ada")
		ctx := context.Background()
		_, err := client.AddCartItem(ctx, token, 1, 2)
		require.NoError(t, err)

		result, err := client.Checkout(ctx, token, form)

		require.NoError(t, err)
		assert.Empty(t, result.Type)
		assert.NotEmpty(t, result.OrderID)
		assert.Equal(t, "Order placed", result.Message)

		cart, err := client.GetCart(ctx, token)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
	})

	t.Run("Success - paystack returns redirect shape", func(t *testing.T) {
		client, server := newTestClient(t)
		token := loginAs(t, client, server, "ada")
		ctx := context.Background()
		_, err := client.AddCartItem(ctx, token, 1, 1)
		require.NoError(t, err)

		paid := form
		paid.PaymentMethod = "paystack"
		result, err := client.Checkout(ctx, token, paid)

		require.NoError(t, err)
		assert.Equal(t, api.CheckoutResultTypeRedirect, result.Type)
		assert.True(t, strings.HasPrefix(result.PaymentURL, "https://checkout.paystack.com/"))
		assert.NotEmpty(t, result.OrderID)
	})
}

func TestRedisCartStore(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	store, err := NewRedisCartStore(redisURL, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()
	username := "redis-test-" + time.Now().Format("150405.000000000")

	require.NoError(t, store.Save(ctx, username, &cartRecord{
		NextItemID: 2,
		Items:      []cartItemRecord{{ID: 2, ProductID: 3, Quantity: 1}},
	}))

	got, err := store.Get(ctx, username)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.NextItemID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].ProductID)

	require.NoError(t, store.Delete(ctx, username))
	got, err = store.Get(ctx, username)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCartStore(t *testing.T) {
	t.Run("Success - snapshots are isolated copies", func(t *testing.T) {
		store := NewMemoryCartStore()
		ctx := context.Background()

		require.NoError(t, store.Save(ctx, "ada", &cartRecord{
			NextItemID: 1,
			Items:      []cartItemRecord{{ID: 1, ProductID: 1, Quantity: 2}},
		}))

		got, err := store.Get(ctx, "ada")
		require.NoError(t, err)
		got.Items[0].Quantity = 99

		again, err := store.Get(ctx, "ada")
		require.NoError(t, err)
		assert.Equal(t, 2, again.Items[0].Quantity, "mutating a snapshot must not leak into the store")
	})

	t.Run("Success - delete then get yields nil", func(t *testing.T) {
		store := NewMemoryCartStore()
		ctx := context.Background()

		require.NoError(t, store.Save(ctx, "ada", &cartRecord{}))
		require.NoError(t, store.Delete(ctx, "ada"))

		got, err := store.Get(ctx, "ada")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
