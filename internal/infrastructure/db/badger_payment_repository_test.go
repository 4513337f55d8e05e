package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/damon-houk/payment-query-service/internal/domain/entity"
	"github.com/damon-houk/payment-query-service/internal/domain/repository"
	"github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestBadger(t *testing.T) *badger.DB {
	t.Helper()

	opts := badger.DefaultOptions(t.TempDir())
	opts.Logger = nil
	opts.SyncWrites = false

	badgerDB, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { badgerDB.Close() })

	return badgerDB
}

func TestBadgerPaymentRepository(t *testing.T) {
	repo := NewBadgerPaymentRepository(openTestBadger(t))
	ctx := context.Background()

	t.Run("Empty store", func(t *testing.T) {
		records, err := repo.FetchAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("Round trip preserves order and fields", func(t *testing.T) {
		sample, err := SamplePayments()
		require.NoError(t, err)

		require.NoError(t, repo.Append(ctx, sample...))

		records, err := repo.FetchAll(ctx)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, sample[0].ID, records[0].ID)
		assert.Equal(t, sample[1].ID, records[1].ID)
		assert.True(t, sample[0].CreatedAt.Equal(records[0].CreatedAt))
		assert.Equal(t, sample[1].Fees, records[1].Fees)
	})

	t.Run("Append continues the sequence across chunks", func(t *testing.T) {
		batch := make([]entity.PaymentRecord, badgerChunkSize+3)
		for i := range batch {
			batch[i] = entity.PaymentRecord{ID: int64(1000 + i), NsuProvider: fmt.Sprint(i)}
		}
		require.NoError(t, repo.Append(ctx, batch...))

		records, err := repo.FetchAll(ctx)
		require.NoError(t, err)
		require.Len(t, records, 2+len(batch))
		for i, rec := range records[2:] {
			assert.Equal(t, int64(1000+i), rec.ID)
		}
	})

	t.Run("Cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := repo.FetchAll(cancelled)
		require.Error(t, err)
		assert.True(t, errors.Is(err, repository.ErrDataSource))
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestBadgerPaymentRepositoryCorruptRecord(t *testing.T) {
	badgerDB := openTestBadger(t)
	repo := NewBadgerPaymentRepository(badgerDB)

	require.NoError(t, badgerDB.Update(func(txn *badger.Txn) error {
		return txn.Set(paymentKey(0), []byte("{not json"))
	}))

	_, err := repo.FetchAll(context.Background())
	require.Error(t, err)

	var dsErr *repository.DataSourceError
	require.True(t, errors.As(err, &dsErr))
	assert.Equal(t, "badger", dsErr.Source)
}

func TestPaymentKeyOrdering(t *testing.T) {
	assert.Less(t, string(paymentKey(9)), string(paymentKey(10)))
	assert.Less(t, string(paymentKey(99)), string(paymentKey(100000)))
}
