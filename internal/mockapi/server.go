// Package mockapi is a development stand-in for the storefront REST
// API. It implements every endpoint the client consumes with the exact
// wire shapes of the real server, backed by seeded in-memory data.
package mockapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nuramustaphaali/nurastore/internal/api"
	"github.com/nuramustaphaali/nurastore/internal/logger"
)

// Server hosts the mock storefront API.
type Server struct {
	secret  []byte
	users   *userStore
	catalog *catalog
	carts   CartStore
}

// New creates a Server with seeded catalog data. carts may be nil, in
// which case an in-memory store is used.
func New(secret string, carts CartStore) *Server {
	if carts == nil {
		carts = NewMemoryCartStore()
	}
	return &Server{
		secret:  []byte(secret),
		users:   newUserStore(),
		catalog: seedCatalog(),
		carts:   carts,
	}
}

// Router builds the gin engine with all API routes mounted under /api.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/login/", s.login)
		apiGroup.POST("/register/", s.register)
		apiGroup.GET("/products/", s.listProducts)
		apiGroup.GET("/products/:slug/", s.productDetail)
		apiGroup.GET("/categories/", s.listCategories)
		apiGroup.GET("/delivery-zones/", s.listDeliveryZones)

		authed := apiGroup.Group("")
		authed.Use(s.requireAuth())
		{
			authed.GET("/me/", s.me)
			authed.GET("/cart/", s.getCart)
			authed.POST("/cart/", s.addCartItem)
			authed.PATCH("/cart/items/:id/", s.updateCartItem)
			authed.DELETE("/cart/items/:id/", s.removeCartItem)
			authed.POST("/checkout/", s.checkout)
		}
	}
	return r
}

// SeedUser registers an account directly, for tests and dev bootstrap.
func (s *Server) SeedUser(username, email, password string) error {
	_, err := s.users.create(username, email, password)
	return err
}

// ---- Auth ----

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}

		username, err := parseToken(s.secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Given token not valid for any token type"})
			return
		}
		c.Set("username", username)
		c.Next()
	}
}

func (s *Server) currentUser(c *gin.Context) (*storedUser, bool) {
	username := c.GetString("username")
	return s.users.get(username)
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "username and password are required"})
		return
	}

	user, ok := s.users.get(req.Username)
	if !ok || bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "No active account found with the given credentials"})
		return
	}

	access, err := generateToken(s.secret, user.ID, user.Username, "access", accessTokenLifetime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "token generation failed"})
		return
	}
	refresh, err := generateToken(s.secret, user.ID, user.Username, "refresh", refreshTokenLifetime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access, "refresh": refresh})
}

func (s *Server) register(c *gin.Context) {
	var req struct {
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid payload"})
		return
	}

	// Field-keyed validation errors, one array per field, mirroring the
	// real serializer's messages.
	fields := map[string][]string{}
	if strings.TrimSpace(req.Username) == "" {
		fields["username"] = append(fields["username"], "This field is required.")
	} else if _, taken := s.users.get(req.Username); taken {
		fields["username"] = append(fields["username"], "This username is already taken.")
	}
	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = append(fields["email"], "This field is required.")
	} else if s.users.emailTaken(req.Email) {
		fields["email"] = append(fields["email"], "Email is already in use.")
	}
	if req.Password == "" {
		fields["password"] = append(fields["password"], "This field is required.")
	} else if req.Password != req.ConfirmPassword {
		fields["password"] = append(fields["password"], "Password fields didn't match.")
	}
	if len(fields) > 0 {
		c.JSON(http.StatusBadRequest, fields)
		return
	}

	user, err := s.users.create(req.Username, req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "registration failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username, "email": user.Email})
}

func (s *Server) me(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "User not found"})
		return
	}
	c.JSON(http.StatusOK, api.User{ID: user.ID, Username: user.Username, Email: user.Email})
}

// ---- Catalog ----

func (s *Server) listProducts(c *gin.Context) {
	priceMin, _ := strconv.ParseFloat(c.Query("price_min"), 64)
	priceMax, _ := strconv.ParseFloat(c.Query("price_max"), 64)
	products := s.catalog.filter(
		c.Query("search"),
		c.Query("category"),
		c.Query("ordering"),
		priceMin,
		priceMax,
	)
	c.JSON(http.StatusOK, products)
}

func (s *Server) productDetail(c *gin.Context) {
	slug := c.Param("slug")
	for _, p := range s.catalog.products {
		if p.Slug == slug {
			c.JSON(http.StatusOK, p)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
}

func (s *Server) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.categories)
}

func (s *Server) listDeliveryZones(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.zones)
}

// ---- Cart ----

// snapshot joins the stored cart with catalog data into the wire shape
// the client renders.
func (s *Server) snapshot(cart *cartRecord) api.Cart {
	out := api.Cart{Items: []api.CartItem{}}
	if cart == nil {
		return out
	}
	for _, item := range cart.Items {
		product, ok := s.catalog.product(item.ProductID)
		if !ok {
			continue
		}
		subtotal := product.Price * api.Naira(item.Quantity)
		out.Items = append(out.Items, api.CartItem{
			ID:           item.ID,
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductPrice: product.Price,
			ProductImage: product.Image,
			Quantity:     item.Quantity,
			Subtotal:     subtotal,
		})
		out.TotalPrice += subtotal
	}
	return out
}

func (s *Server) getCart(c *gin.Context) {
	username := c.GetString("username")
	cart, err := s.carts.Get(c.Request.Context(), username)
	if err != nil {
		logger.Error("cart load failed", err, zap.String("user", username))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
		return
	}
	c.JSON(http.StatusOK, s.snapshot(cart))
}

func (s *Server) addCartItem(c *gin.Context) {
	username := c.GetString("username")
	var req struct {
		ProductID int `json:"product_id" binding:"required"`
		Quantity  int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	if _, ok := s.catalog.product(req.ProductID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	ctx := c.Request.Context()
	cart, err := s.carts.Get(ctx, username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
		return
	}
	if cart == nil {
		cart = &cartRecord{}
	}

	found := false
	for i, existing := range cart.Items {
		if existing.ProductID == req.ProductID {
			cart.Items[i].Quantity += req.Quantity
			found = true
			break
		}
	}
	if !found {
		cart.NextItemID++
		cart.Items = append(cart.Items, cartItemRecord{
			ID:        cart.NextItemID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		})
	}

	if err := s.carts.Save(ctx, username, cart); err != nil {
		logger.Error("cart save failed", err, zap.String("user", username))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
		return
	}
	c.JSON(http.StatusOK, s.snapshot(cart))
}

func (s *Server) updateCartItem(c *gin.Context) {
	username := c.GetString("username")
	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ctx := c.Request.Context()
	cart, err := s.carts.Get(ctx, username)
	if err != nil || cart == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
		return
	}

	found := false
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ID != itemID {
			kept = append(kept, item)
			continue
		}
		found = true
		// The server clamps: zero or negative removes the line.
		if req.Quantity > 0 {
			item.Quantity = req.Quantity
			kept = append(kept, item)
		}
	}
	cart.Items = kept

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	if err := s.carts.Save(ctx, username, cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
		return
	}
	c.JSON(http.StatusOK, s.snapshot(cart))
}

func (s *Server) removeCartItem(c *gin.Context) {
	username := c.GetString("username")
	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	ctx := c.Request.Context()
	cart, err := s.carts.Get(ctx, username)
	if err != nil || cart == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
		return
	}

	found := false
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ID == itemID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	cart.Items = kept

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	if err := s.carts.Save(ctx, username, cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
		return
	}
	c.JSON(http.StatusOK, s.snapshot(cart))
}

// ---- Checkout ----

func (s *Server) checkout(c *gin.Context) {
	username := c.GetString("username")
	var req api.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if strings.TrimSpace(req.Address) == "" || strings.TrimSpace(req.State) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Delivery address and state are required"})
		return
	}

	ctx := c.Request.Context()
	cart, err := s.carts.Get(ctx, username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
		return
	}
	if cart == nil || len(cart.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
		return
	}

	orderID := uuid.NewString()
	if err := s.carts.Delete(ctx, username); err != nil {
		logger.Warn("cart clear after checkout failed", zap.String("user", username), zap.Error(err))
	}

	if req.PaymentMethod == "paystack" {
		c.JSON(http.StatusOK, gin.H{
			"type":        api.CheckoutResultTypeRedirect,
			"payment_url": "https://checkout.paystack.com/" + orderID,
			"order_id":    orderID,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order placed", "order_id": orderID})
}
