package db

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/damon-houk/payment-query-service/internal/domain/entity"
)

//go:embed fixtures/sample_payments.json
var samplePayments []byte

// SamplePayments returns the bundled two-record sample dataset
func SamplePayments() ([]entity.PaymentRecord, error) {
	var records []entity.PaymentRecord
	if err := json.Unmarshal(samplePayments, &records); err != nil {
		return nil, fmt.Errorf("failed to decode sample payments: %w", err)
	}
	return records, nil
}

// DecodePayments reads a JSON array of payment records
func DecodePayments(r io.Reader) ([]entity.PaymentRecord, error) {
	var records []entity.PaymentRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode payment records: %w", err)
	}
	return records, nil
}

// LoadPaymentsFile reads a JSON fixture file of payment records
func LoadPaymentsFile(path string) ([]entity.PaymentRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture file: %w", err)
	}
	defer f.Close()

	return DecodePayments(f)
}
