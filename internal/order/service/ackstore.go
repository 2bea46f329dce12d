package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AckStore remembers which order ids already produced a confirmation email,
// so vendor webhook redeliveries do not email the customer again.
type AckStore interface {
	// MarkConfirmed records the order id and reports whether it was the
	// first time the id was seen.
	MarkConfirmed(c context.Context, orderID string) (bool, error)
}

const confirmedKeyPrefix = "order:confirmed:"

// confirmedTTL only needs to outlive the vendor's redelivery window.
const confirmedTTL = 7 * 24 * time.Hour

type RedisAckStore struct {
	cache *redis.Client
}

func NewRedisAckStore(cache *redis.Client) RedisAckStore {
	return RedisAckStore{cache: cache}
}

func (s RedisAckStore) MarkConfirmed(c context.Context, orderID string) (bool, error) {
	first, err := s.cache.SetNX(c, confirmedKeyPrefix+orderID, "1", confirmedTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed recording confirmed orderId in cache with error=%w", err)
	}
	return first, nil
}

// MemoryAckStore keeps the seen ids in process memory. Used in tests and
// when no cache is configured.
type MemoryAckStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryAckStore() *MemoryAckStore {
	return &MemoryAckStore{seen: map[string]struct{}{}}
}

func (s *MemoryAckStore) MarkConfirmed(c context.Context, orderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[orderID]; ok {
		return false, nil
	}
	s.seen[orderID] = struct{}{}
	return true, nil
}
