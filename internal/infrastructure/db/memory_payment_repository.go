package db

import (
	"context"
	"sync"

	"github.com/damon-houk/payment-query-service/internal/domain/entity"
)

// MemoryPaymentRepository keeps payment records in process memory
type MemoryPaymentRepository struct {
	mu      sync.RWMutex
	records []entity.PaymentRecord
}

// NewMemoryPaymentRepository creates an in-memory repository holding records
func NewMemoryPaymentRepository(records ...entity.PaymentRecord) *MemoryPaymentRepository {
	return &MemoryPaymentRepository{records: append([]entity.PaymentRecord(nil), records...)}
}

// FetchAll returns a copy of the stored records in insertion order
func (r *MemoryPaymentRepository) FetchAll(ctx context.Context) ([]entity.PaymentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.PaymentRecord, len(r.records))
	copy(out, r.records)
	return out, nil
}

// Append adds records after the existing ones
func (r *MemoryPaymentRepository) Append(ctx context.Context, records ...entity.PaymentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, records...)
	return nil
}
