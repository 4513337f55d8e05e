package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/damon-houk/payment-query-service/internal/domain/entity"
	"github.com/damon-houk/payment-query-service/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCache(t *testing.T) {
	cache := NewSnapshotCache(time.Hour)
	clock := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	// Test initial state
	_, ok := cache.Get()
	assert.False(t, ok)

	// Test storing and retrieving
	records := []entity.PaymentRecord{{ID: 1}, {ID: 2}}
	cache.Put(records)

	got, ok := cache.Get()
	assert.True(t, ok)
	assert.Equal(t, records, got)

	// Test expiration
	clock = clock.Add(2 * time.Hour)
	_, ok = cache.Get()
	assert.False(t, ok)

	// Test clearing
	cache.Put(records)
	cache.Clear()
	_, ok = cache.Get()
	assert.False(t, ok)

	// An empty snapshot is still a hit
	cache.Put([]entity.PaymentRecord{})
	got, ok = cache.Get()
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestCachingPaymentRepository(t *testing.T) {
	ctx := context.Background()
	records := []entity.PaymentRecord{{ID: 1}}

	t.Run("Serves repeated fetches from cache", func(t *testing.T) {
		next := new(mocks.MockPaymentRepository)
		next.On("FetchAll", mock.Anything).Return(records, nil).Once()

		repo := NewCachingPaymentRepository(next, time.Minute)
		for i := 0; i < 3; i++ {
			got, err := repo.FetchAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, records, got)
		}

		next.AssertNumberOfCalls(t, "FetchAll", 1)
	})

	t.Run("Invalidate forces a refresh", func(t *testing.T) {
		next := new(mocks.MockPaymentRepository)
		next.On("FetchAll", mock.Anything).Return(records, nil).Twice()

		repo := NewCachingPaymentRepository(next, time.Minute)
		_, err := repo.FetchAll(ctx)
		require.NoError(t, err)

		repo.Invalidate()
		_, err = repo.FetchAll(ctx)
		require.NoError(t, err)

		next.AssertExpectations(t)
	})

	t.Run("Errors are not cached", func(t *testing.T) {
		next := new(mocks.MockPaymentRepository)
		next.On("FetchAll", mock.Anything).Return(nil, errors.New("store down")).Once()
		next.On("FetchAll", mock.Anything).Return(records, nil).Once()

		repo := NewCachingPaymentRepository(next, time.Minute)

		_, err := repo.FetchAll(ctx)
		assert.EqualError(t, err, "store down")

		got, err := repo.FetchAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, records, got)

		next.AssertExpectations(t)
	})
}
