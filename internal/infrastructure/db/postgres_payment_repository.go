package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/damon-houk/payment-query-service/internal/domain/entity"
	"github.com/damon-houk/payment-query-service/internal/domain/repository"
)

const createPaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
	position BIGSERIAL PRIMARY KEY,
	payload  JSONB NOT NULL
)`

// PostgresPaymentRepository stores each payment record as a JSONB document.
// The position column fixes the listing order.
type PostgresPaymentRepository struct {
	db *sql.DB
}

// OpenPostgres opens a pooled connection and verifies it with a ping
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// NewPostgresPaymentRepository creates a repository over an open connection
func NewPostgresPaymentRepository(db *sql.DB) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db}
}

// EnsureSchema creates the payments table when missing
func (r *PostgresPaymentRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPaymentsTable); err != nil {
		return fmt.Errorf("failed to create payments table: %w", err)
	}
	return nil
}

// FetchAll returns every stored record ordered by position
func (r *PostgresPaymentRepository) FetchAll(ctx context.Context) ([]entity.PaymentRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT payload FROM payments ORDER BY position`)
	if err != nil {
		return nil, repository.NewDataSourceError("postgres", err)
	}
	defer rows.Close()

	records := []entity.PaymentRecord{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, repository.NewDataSourceError("postgres", err)
		}

		var rec entity.PaymentRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, repository.NewDataSourceError("postgres", fmt.Errorf("failed to decode payment: %w", err))
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, repository.NewDataSourceError("postgres", err)
	}

	return records, nil
}

// Append inserts records in one transaction, preserving their order
func (r *PostgresPaymentRepository) Append(ctx context.Context, records ...entity.PaymentRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO payments (payload) VALUES ($1)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal payment %d: %w", rec.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("failed to insert payment %d: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payments: %w", err)
	}

	return nil
}
