package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/damon-houk/payment-query-service/internal/domain/entity"
)

// ErrDataSource is matched by every record provider failure
var ErrDataSource = errors.New("payment records unavailable")

// PaymentRepository supplies the candidate payment records for a query
type PaymentRepository interface {
	// FetchAll returns every record in a stable order
	FetchAll(ctx context.Context) ([]entity.PaymentRecord, error)
}

// PaymentWriter loads records into a store. It is only used to seed
// backends; the query API never writes.
type PaymentWriter interface {
	// Append stores records after the existing ones, preserving their order
	Append(ctx context.Context, records ...entity.PaymentRecord) error
}

// DataSourceError wraps a failure raised by a record provider
type DataSourceError struct {
	Source string
	Err    error
}

// NewDataSourceError wraps err as a failure of the named source
func NewDataSourceError(source string, err error) *DataSourceError {
	return &DataSourceError{Source: source, Err: err}
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDataSource.Error(), e.Source, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// Is reports DataSourceError values as ErrDataSource
func (e *DataSourceError) Is(target error) bool {
	return target == ErrDataSource
}
