package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// cartItemRecord is what the store persists per line; display fields
// are joined in from the catalog when a snapshot is built.
type cartItemRecord struct {
	ID        int `json:"id"`
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// cartRecord is the stored cart for one user.
type cartRecord struct {
	NextItemID int              `json:"next_item_id"`
	Items      []cartItemRecord `json:"items"`
}

// CartStore abstracts cart persistence so development can run against
// memory or Redis.
type CartStore interface {
	Get(ctx context.Context, username string) (*cartRecord, error)
	Save(ctx context.Context, username string, cart *cartRecord) error
	Delete(ctx context.Context, username string) error
}

// MemoryCartStore keeps carts in a map; the default for tests and
// standalone development.
type MemoryCartStore struct {
	mu    sync.RWMutex
	carts map[string]*cartRecord
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string]*cartRecord)}
}

func (s *MemoryCartStore) Get(_ context.Context, username string) (*cartRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart, ok := s.carts[username]
	if !ok {
		return nil, nil
	}
	// Copy so handlers can mutate freely before saving.
	clone := &cartRecord{NextItemID: cart.NextItemID, Items: append([]cartItemRecord(nil), cart.Items...)}
	return clone, nil
}

func (s *MemoryCartStore) Save(_ context.Context, username string, cart *cartRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[username] = &cartRecord{NextItemID: cart.NextItemID, Items: append([]cartItemRecord(nil), cart.Items...)}
	return nil
}

func (s *MemoryCartStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, username)
	return nil
}

// RedisCartStore persists carts as JSON blobs with a TTL, for dev
// setups that want state to survive server restarts.
type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCartStore connects using a redis URL (redis://host:port).
func NewRedisCartStore(redisURL string, ttl time.Duration) (*RedisCartStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCartStore{client: client, ttl: ttl}, nil
}

func cartKey(username string) string {
	return "cart:" + username
}

func (s *RedisCartStore) Get(ctx context.Context, username string) (*cartRecord, error) {
	data, err := s.client.Get(ctx, cartKey(username)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cart cartRecord
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *RedisCartStore) Save(ctx context.Context, username string, cart *cartRecord) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, cartKey(username), data, s.ttl).Err()
}

func (s *RedisCartStore) Delete(ctx context.Context, username string) error {
	return s.client.Del(ctx, cartKey(username)).Err()
}
