package redis

import (
	"context"
	"strconv"
	"sync"
	"time"

	"screener-service/internal/app/contracts"
	"screener-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// memoryRepository keeps keys in process for single instance deployments
// and tests. Values are JSON encoded like the redis implementation.
type memoryRepository struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryRepository() contracts.RedisRepository {
	return newMemoryRepository(time.Now)
}

func newMemoryRepository(now func() time.Time) *memoryRepository {
	return &memoryRepository{entries: make(map[string]memoryEntry), now: now}
}

func (r *memoryRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
	return nil
}

func (r *memoryRepository) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = r.entry(string(jsonValue), exp)
	return nil
}

func (r *memoryRepository) Get(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.live(key)
	if !ok {
		return "", nil
	}
	return e.value, nil
}

func (r *memoryRepository) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return false, exceptions.ErrCannotMarshalJSON(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live(key); ok {
		return false, nil
	}
	r.entries[key] = r.entry(string(jsonValue), exp)
	return true, nil
}

func (r *memoryRepository) Expire(ctx context.Context, key string, exp time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.live(key)
	if !ok {
		return nil
	}
	r.entries[key] = r.entry(e.value, exp)
	return nil
}

func (r *memoryRepository) IncrementWithTTL(ctx context.Context, key string, exp time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.live(key)
	if !ok {
		r.entries[key] = r.entry("1", exp)
		return 1, nil
	}
	count, err := strconv.Atoi(e.value)
	if err != nil {
		return 0, exceptions.ErrRedisSet(err)
	}
	count++
	e.value = strconv.Itoa(count)
	r.entries[key] = e
	return count, nil
}

func (r *memoryRepository) entry(value string, exp time.Duration) memoryEntry {
	e := memoryEntry{value: value}
	if exp > 0 {
		e.expiresAt = r.now().Add(exp)
	}
	return e
}

// live returns the entry of key, dropping it when expired. Callers hold mu.
func (r *memoryRepository) live(key string) (memoryEntry, bool) {
	e, ok := r.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if e.expired(r.now()) {
		delete(r.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}
