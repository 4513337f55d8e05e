package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/damon-houk/payment-query-service/internal/domain/repository"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upstreamBody = `{
	"payments": [
		{"id": 123456789, "nsuAcquirer": "001984160493", "status": "Confirmed", "createdAt": "2024-10-01T10:00:00-03:00"},
		{"id": 64492146, "nsuAcquirer": "001984160494", "status": "Pending", "createdAt": "2024-10-01T14:00:00-03:00"}
	]
}`

func newTestClient(t *testing.T, url string, opts ...Option) *UpstreamPaymentClient {
	t.Helper()

	opts = append([]Option{
		WithBackoff(func(int) time.Duration { return time.Millisecond }),
		WithLogger(logger.NewJSONLogger(nil, logger.ErrorLevel)),
	}, opts...)

	client, err := NewUpstreamPaymentClient(url, opts...)
	require.NoError(t, err)
	return client
}

func TestFetchAll(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer upstream-secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(upstreamBody))
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL+"/payments", WithToken("upstream-secret"))

	records, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(123456789), records[0].ID)
	assert.Equal(t, "001984160494", records[1].NsuAcquirer)
}

func TestFetchAllBareArray(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(` [{"id": 1}, {"id": 2}, {"id": 3}]`))
	}))
	defer mockServer.Close()

	records, err := newTestClient(t, mockServer.URL).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestFetchAllKeepsOpaqueFields(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"payments": [
			{"id": 1, "status": "Confirmed", "fees": {"merchantRate": 3.0}},
			{"id": 2, "status": "Pending", "fees": {"merchantRate": "3.00"},
			 "card": {"cardBrand": "Visa", "cardIssuer": "X"}, "extraTop": "keep-me"}
		]}`))
	}))
	defer mockServer.Close()

	records, err := newTestClient(t, mockServer.URL).FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	encoded, err := json.Marshal(records[1])
	require.NoError(t, err)

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(encoded, &out))
	assert.JSONEq(t, `{"merchantRate":"3.00"}`, string(out["fees"]))
	assert.JSONEq(t, `{"cardBrand":"Visa","cardIssuer":"X"}`, string(out["card"]))
	assert.JSONEq(t, `"keep-me"`, string(out["extraTop"]))
	assert.NotContains(t, out, "terminalIdentifiers")
}

func TestFetchAllRetriesServerErrors(t *testing.T) {
	var calls int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(upstreamBody))
	}))
	defer mockServer.Close()

	records, err := newTestClient(t, mockServer.URL).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchAllErrors(t *testing.T) {
	t.Run("Retries exhausted", func(t *testing.T) {
		var calls int32
		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer mockServer.Close()

		_, err := newTestClient(t, mockServer.URL, WithMaxRetries(2)).FetchAll(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, repository.ErrDataSource))
		assert.Contains(t, err.Error(), "status 503")
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("Client errors are not retried", func(t *testing.T) {
		var calls int32
		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"forbidden"}`))
		}))
		defer mockServer.Close()

		_, err := newTestClient(t, mockServer.URL).FetchAll(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, repository.ErrDataSource))
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("Malformed body", func(t *testing.T) {
		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"payments": "nope"}`))
		}))
		defer mockServer.Close()

		_, err := newTestClient(t, mockServer.URL).FetchAll(context.Background())
		require.Error(t, err)

		var dsErr *repository.DataSourceError
		require.True(t, errors.As(err, &dsErr))
		assert.Equal(t, "upstream", dsErr.Source)
	})

	t.Run("Oversized body", func(t *testing.T) {
		var calls int32
		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.Write([]byte(`[` + strings.Repeat(`{"id": 1},`, 100) + `{"id": 2}]`))
		}))
		defer mockServer.Close()

		client := newTestClient(t, mockServer.URL)
		client.maxBytes = 64

		_, err := client.FetchAll(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, repository.ErrDataSource))
		assert.Contains(t, err.Error(), "exceeds 64 bytes")
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("Invalid endpoint", func(t *testing.T) {
		_, err := NewUpstreamPaymentClient("ftp://example.com/payments")
		assert.Error(t, err)
	})
}
