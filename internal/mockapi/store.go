package mockapi

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/nuramustaphaali/nurastore/internal/api"
)

// storedUser is a registered account.
type storedUser struct {
	ID           int
	Username     string
	Email        string
	PasswordHash []byte
}

// userStore keeps registered accounts in memory.
type userStore struct {
	mu     sync.RWMutex
	nextID int
	byName map[string]*storedUser
}

func newUserStore() *userStore {
	return &userStore{byName: make(map[string]*storedUser)}
}

func (s *userStore) get(username string) (*storedUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byName[username]
	return u, ok
}

func (s *userStore) emailTaken(email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byName {
		if strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (s *userStore) create(username, email, password string) (*storedUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u := &storedUser{
		ID:           s.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	s.byName[username] = u
	return u, nil
}

// catalog holds the seeded product and category data.
type catalog struct {
	products   []api.Product
	categories []api.Category
	zones      []api.DeliveryZone
}

func seedCatalog() *catalog {
	categories := []api.Category{
		{ID: 1, Name: "Electronics", Slug: "electronics"},
		{ID: 2, Name: "Fashion", Slug: "fashion"},
		{ID: 3, Name: "Home & Kitchen", Slug: "home-kitchen"},
	}
	products := []api.Product{
		{ID: 1, Name: "Wireless Earbuds", Slug: "wireless-earbuds", Price: 18500, OldPrice: 25000, Stock: 30, Category: 1, CategoryName: "Electronics"},
		{ID: 2, Name: "Smart Watch", Slug: "smart-watch", Price: 42000, Stock: 12, Category: 1, CategoryName: "Electronics"},
		{ID: 3, Name: "Ankara Shirt", Slug: "ankara-shirt", Price: 7500, OldPrice: 9000, Stock: 50, Category: 2, CategoryName: "Fashion"},
		{ID: 4, Name: "Leather Sandals", Slug: "leather-sandals", Price: 12000, Stock: 18, Category: 2, CategoryName: "Fashion"},
		{ID: 5, Name: "Blender", Slug: "blender", Price: 22500, OldPrice: 28000, Stock: 8, Category: 3, CategoryName: "Home & Kitchen"},
		{ID: 6, Name: "Non-Stick Pan Set", Slug: "non-stick-pan-set", Price: 15800, Stock: 22, Category: 3, CategoryName: "Home & Kitchen"},
	}
	zones := []api.DeliveryZone{
		{State: "Lagos", Fee: 1500, EstimatedTime: "1-2 days"},
		{State: "Abuja", Fee: 2500, EstimatedTime: "2-3 days"},
		{State: "Kano", Fee: 3000, EstimatedTime: "3-5 days"},
		{State: "Rivers", Fee: 2800, EstimatedTime: "2-4 days"},
	}
	return &catalog{products: products, categories: categories, zones: zones}
}

func (c *catalog) product(id int) (api.Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return api.Product{}, false
}

// filter applies the catalog query parameters in the same way the real
// API does.
func (c *catalog) filter(search, category, ordering string, priceMin, priceMax float64) []api.Product {
	out := make([]api.Product, 0, len(c.products))
	for _, p := range c.products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			continue
		}
		if category != "" && strconv.Itoa(p.Category) != category {
			continue
		}
		if priceMin > 0 && float64(p.Price) < priceMin {
			continue
		}
		if priceMax > 0 && float64(p.Price) > priceMax {
			continue
		}
		out = append(out, p)
	}

	switch ordering {
	case "price":
		sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case "-price":
		sort.Slice(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case "name":
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	case "-name":
		sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	}
	return out
}
