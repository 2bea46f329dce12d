package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/ofblood/website/internal/common"
)

// IDStore persists the single active cart identifier between requests.
type IDStore interface {
	Get(c context.Context) (string, error)
	Set(c context.Context, cartID string) error
	Clear(c context.Context) error
}

type RedisIDStore struct {
	cache *redis.Client
}

func NewRedisIDStore(cache *redis.Client) RedisIDStore {
	return RedisIDStore{cache: cache}
}

func (s RedisIDStore) Get(c context.Context) (string, error) {
	cartID, err := s.cache.Get(c, common.CartIDKey).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("failed getting cartId from cache with error=%w", err)
	}
	return cartID, nil
}

func (s RedisIDStore) Set(c context.Context, cartID string) error {
	err := s.cache.Set(c, common.CartIDKey, cartID, 0).Err()
	if err != nil {
		return fmt.Errorf("failed setting cartId in cache with error=%w", err)
	}
	return nil
}

func (s RedisIDStore) Clear(c context.Context) error {
	err := s.cache.Del(c, common.CartIDKey).Err()
	if err != nil {
		return fmt.Errorf("failed clearing cartId from cache with error=%w", err)
	}
	return nil
}

// MemoryIDStore keeps the identifier in process memory. Used in tests and
// when no cache is configured.
type MemoryIDStore struct {
	mu     sync.Mutex
	cartID string
}

func NewMemoryIDStore() *MemoryIDStore {
	return &MemoryIDStore{}
}

func (s *MemoryIDStore) Get(c context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartID, nil
}

func (s *MemoryIDStore) Set(c context.Context, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartID = cartID
	return nil
}

func (s *MemoryIDStore) Clear(c context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartID = ""
	return nil
}
