package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/damon-houk/payment-query-service/internal/domain/entity"
	"github.com/damon-houk/payment-query-service/internal/domain/repository"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/logger"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/middleware"
)

const defaultMaxRetries = 3

// maxResponseBytes caps the upstream body read per attempt (32 MiB). A
// larger body fails the fetch without a retry.
const maxResponseBytes = 32 << 20

// UpstreamPaymentClient fetches the payment collection from a remote JSON
// endpoint. It satisfies repository.PaymentRepository.
type UpstreamPaymentClient struct {
	endpoint   string
	token      string
	httpClient *http.Client
	maxRetries int
	maxBytes   int64
	backoff    func(attempt int) time.Duration
	logger     logger.Logger
}

// Option customizes the upstream client
type Option func(*UpstreamPaymentClient)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(u *UpstreamPaymentClient) {
		if c != nil {
			u.httpClient = c
		}
	}
}

// WithToken sends token as a bearer credential on every request
func WithToken(token string) Option {
	return func(u *UpstreamPaymentClient) {
		u.token = token
	}
}

// WithMaxRetries sets the total number of attempts per fetch
func WithMaxRetries(n int) Option {
	return func(u *UpstreamPaymentClient) {
		if n > 0 {
			u.maxRetries = n
		}
	}
}

// WithBackoff overrides the wait before retry attempt n (1-based)
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(u *UpstreamPaymentClient) {
		if fn != nil {
			u.backoff = fn
		}
	}
}

// WithLogger lets callers supply a custom logger
func WithLogger(l logger.Logger) Option {
	return func(u *UpstreamPaymentClient) {
		if l != nil {
			u.logger = l
		}
	}
}

// NewUpstreamPaymentClient creates a client for the given http(s) endpoint
func NewUpstreamPaymentClient(endpoint string, opts ...Option) (*UpstreamPaymentClient, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid upstream url %q: scheme must be http or https", endpoint)
	}

	c := &UpstreamPaymentClient{
		endpoint:   parsed.String(),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxRetries: defaultMaxRetries,
		maxBytes:   maxResponseBytes,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt*attempt) * time.Second
		},
		logger: logger.GetDefaultLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// upstreamEnvelope is the object form of the upstream response
type upstreamEnvelope struct {
	Payments []entity.PaymentRecord `json:"payments"`
}

// errPermanent marks failures that a retry cannot fix
type errPermanent struct {
	err error
}

func (e errPermanent) Error() string { return e.err.Error() }
func (e errPermanent) Unwrap() error { return e.err }

// FetchAll retrieves every record from the upstream endpoint. Transport
// errors and 5xx responses are retried with quadratic backoff.
func (c *UpstreamPaymentClient) FetchAll(ctx context.Context) ([]entity.PaymentRecord, error) {
	requestID := middleware.GetRequestID(ctx)

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		records, err := c.fetchOnce(ctx)
		if err == nil {
			c.logger.Debug("Fetched upstream payments", logger.Fields{
				"request_id": requestID,
				"records":    len(records),
				"attempt":    attempt,
			})
			return records, nil
		}
		lastErr = err

		var permanent errPermanent
		if errors.As(err, &permanent) || ctx.Err() != nil {
			break
		}

		if attempt < c.maxRetries {
			wait := c.backoff(attempt)
			c.logger.Warn("Upstream fetch failed, retrying", logger.Fields{
				"request_id": requestID,
				"attempt":    attempt,
				"max":        c.maxRetries,
				"retry_in":   wait.String(),
				"error":      err.Error(),
			})

			select {
			case <-ctx.Done():
				return nil, repository.NewDataSourceError("upstream", ctx.Err())
			case <-time.After(wait):
			}
		}
	}

	c.logger.Error("Upstream fetch failed", logger.Fields{
		"request_id": requestID,
		"error":      lastErr.Error(),
	})
	return nil, repository.NewDataSourceError("upstream", lastErr)
}

func (c *UpstreamPaymentClient) fetchOnce(ctx context.Context) ([]entity.PaymentRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, errPermanent{fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, errPermanent{fmt.Errorf("upstream response exceeds %d bytes", c.maxBytes)}
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, errPermanent{fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, truncate(body, 256))}
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, errPermanent{err}
	}
	return records, nil
}

// decodeRecords accepts either {"payments": [...]} or a bare array
func decodeRecords(body []byte) ([]entity.PaymentRecord, error) {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		records := []entity.PaymentRecord{}
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return records, nil
	}

	var envelope upstreamEnvelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if envelope.Payments == nil {
		envelope.Payments = []entity.PaymentRecord{}
	}
	return envelope.Payments, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
