package cache

import (
	"context"
	"sync"
	"time"

	"github.com/damon-houk/payment-query-service/internal/domain/entity"
	"github.com/damon-houk/payment-query-service/internal/domain/repository"
)

// SnapshotCache holds one snapshot of the full record collection with expiration
type SnapshotCache struct {
	records    []entity.PaymentRecord
	storedAt   time.Time
	present    bool
	expiration time.Duration
	now        func() time.Time
	mutex      sync.RWMutex
}

// NewSnapshotCache creates a new snapshot cache with the given expiration
func NewSnapshotCache(expiration time.Duration) *SnapshotCache {
	return &SnapshotCache{
		expiration: expiration,
		now:        time.Now,
	}
}

// Get returns the cached snapshot if present and not expired
func (c *SnapshotCache) Get() ([]entity.PaymentRecord, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if !c.present || c.now().Sub(c.storedAt) > c.expiration {
		return nil, false
	}

	return c.records, true
}

// Put replaces the cached snapshot
func (c *SnapshotCache) Put(records []entity.PaymentRecord) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.records = records
	c.storedAt = c.now()
	c.present = true
}

// Clear drops the cached snapshot
func (c *SnapshotCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.records = nil
	c.present = false
}

// CachingPaymentRepository serves FetchAll from a snapshot cache and falls
// through to the wrapped repository when the snapshot is missing or stale.
// Failed fetches are not cached.
type CachingPaymentRepository struct {
	next  repository.PaymentRepository
	cache *SnapshotCache
	fill  sync.Mutex
}

// NewCachingPaymentRepository wraps next with a snapshot cache of the given TTL
func NewCachingPaymentRepository(next repository.PaymentRepository, ttl time.Duration) *CachingPaymentRepository {
	return &CachingPaymentRepository{
		next:  next,
		cache: NewSnapshotCache(ttl),
	}
}

// FetchAll returns the cached snapshot or refreshes it from the wrapped repository
func (r *CachingPaymentRepository) FetchAll(ctx context.Context) ([]entity.PaymentRecord, error) {
	if records, ok := r.cache.Get(); ok {
		return records, nil
	}

	// One refresh at a time; waiters reuse its result
	r.fill.Lock()
	defer r.fill.Unlock()

	if records, ok := r.cache.Get(); ok {
		return records, nil
	}

	records, err := r.next.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	r.cache.Put(records)
	return records, nil
}

// Invalidate forces the next FetchAll to reach the wrapped repository
func (r *CachingPaymentRepository) Invalidate() {
	r.cache.Clear()
}
