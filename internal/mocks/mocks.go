// Package mocks holds testify mocks for the service's collaborators.
package mocks

import (
	"context"

	"github.com/damon-houk/payment-query-service/internal/domain/entity"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/logger"
	"github.com/stretchr/testify/mock"
)

// MockPaymentRepository mocks the PaymentRepository interface
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FetchAll(ctx context.Context) ([]entity.PaymentRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PaymentRecord), args.Error(1)
}

// MockPaymentWriter mocks the PaymentWriter interface
type MockPaymentWriter struct {
	mock.Mock
}

func (m *MockPaymentWriter) Append(ctx context.Context, records ...entity.PaymentRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// MockAuthenticator mocks the Authenticator interface
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, authorization string) error {
	args := m.Called(ctx, authorization)
	return args.Error(0)
}

// MockLogger mocks the logger interface
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, fields logger.Fields) {
	m.Called(msg, fields)
}

func (m *MockLogger) Info(msg string, fields logger.Fields) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields logger.Fields) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, fields logger.Fields) {
	m.Called(msg, fields)
}

func (m *MockLogger) Fatal(msg string, fields logger.Fields) {
	m.Called(msg, fields)
}

func (m *MockLogger) WithField(key string, value interface{}) logger.Logger {
	args := m.Called(key, value)
	return args.Get(0).(logger.Logger)
}

func (m *MockLogger) WithFields(fields logger.Fields) logger.Logger {
	args := m.Called(fields)
	return args.Get(0).(logger.Logger)
}
