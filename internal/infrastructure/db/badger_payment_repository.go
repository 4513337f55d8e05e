package db

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/damon-houk/payment-query-service/internal/domain/entity"
	"github.com/damon-houk/payment-query-service/internal/domain/repository"
	"github.com/dgraph-io/badger/v3"
)

// Records per write transaction, well under badger's transaction size limit
const badgerChunkSize = 500

var (
	paymentPrefix = []byte("payment:")
	sequenceKey   = []byte("meta:payment_seq")
)

// BadgerPaymentRepository stores payment records in BadgerDB. Keys embed a
// zero-padded sequence number so key order is insertion order.
type BadgerPaymentRepository struct {
	db *badger.DB
}

// NewBadgerPaymentRepository creates a new BadgerDB payment repository
func NewBadgerPaymentRepository(db *badger.DB) *BadgerPaymentRepository {
	return &BadgerPaymentRepository{db: db}
}

// FetchAll returns every stored record in insertion order
func (r *BadgerPaymentRepository) FetchAll(ctx context.Context) ([]entity.PaymentRecord, error) {
	records := []entity.PaymentRecord{}

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = paymentPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(paymentPrefix); it.ValidForPrefix(paymentPrefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			var rec entity.PaymentRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("failed to decode payment %s: %w", item.Key(), err)
			}
			records = append(records, rec)
		}
		return nil
	})

	if err != nil {
		return nil, repository.NewDataSourceError("badger", err)
	}

	return records, nil
}

// Append stores records after the existing ones
func (r *BadgerPaymentRepository) Append(ctx context.Context, records ...entity.PaymentRecord) error {
	for start := 0; start < len(records); start += badgerChunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk := records[start:min(start+badgerChunkSize, len(records))]
		if err := r.db.Update(func(txn *badger.Txn) error {
			return appendChunk(txn, chunk)
		}); err != nil {
			return fmt.Errorf("failed to store payments: %w", err)
		}
	}

	return nil
}

func appendChunk(txn *badger.Txn, records []entity.PaymentRecord) error {
	next, err := readSequence(txn)
	if err != nil {
		return err
	}

	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal payment %d: %w", rec.ID, err)
		}
		if err := txn.Set(paymentKey(next), data); err != nil {
			return err
		}
		next++
	}

	seq := make([]byte, 8)
	binary.BigEndian.PutUint64(seq, next)
	return txn.Set(sequenceKey, seq)
}

func readSequence(txn *badger.Txn) (uint64, error) {
	item, err := txn.Get(sequenceKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read payment sequence: %w", err)
	}

	var seq uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupt payment sequence: %d bytes", len(val))
		}
		seq = binary.BigEndian.Uint64(val)
		return nil
	})
	return seq, err
}

func paymentKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", paymentPrefix, seq))
}
