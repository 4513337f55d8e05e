package db

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/damon-houk/payment-query-service/internal/domain/entity"
	"github.com/damon-houk/payment-query-service/internal/domain/repository"
)

const paymentBucket = "payments"

var errMissingBucket = errors.New("payments bucket missing")

// BoltPaymentRepository stores payment records in a BoltDB bucket keyed by
// the bucket's own sequence, big-endian, so cursor order is insertion order.
type BoltPaymentRepository struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) a BoltDB file, waiting at most a second for
// the file lock
func OpenBolt(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	return db, nil
}

// NewBoltPaymentRepository ensures the payments bucket exists
func NewBoltPaymentRepository(db *bolt.DB) (*BoltPaymentRepository, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(paymentBucket))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payments bucket: %w", err)
	}

	return &BoltPaymentRepository{db: db}, nil
}

// FetchAll returns every stored record in insertion order
func (r *BoltPaymentRepository) FetchAll(ctx context.Context) ([]entity.PaymentRecord, error) {
	records := []entity.PaymentRecord{}

	err := r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(paymentBucket))
		if b == nil {
			return errMissingBucket
		}

		return b.ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			var rec entity.PaymentRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("failed to decode payment %x: %w", k, err)
			}
			records = append(records, rec)
			return nil
		})
	})

	if err != nil {
		return nil, repository.NewDataSourceError("bolt", err)
	}

	return records, nil
}

// Append stores records after the existing ones in a single transaction
func (r *BoltPaymentRepository) Append(ctx context.Context, records ...entity.PaymentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(paymentBucket))
		if b == nil {
			return errMissingBucket
		}

		for _, rec := range records {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}

			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("failed to marshal payment %d: %w", rec.ID, err)
			}

			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, seq)
			if err := b.Put(key, data); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to store payments: %w", err)
	}

	return nil
}
