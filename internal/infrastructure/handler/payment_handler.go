package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/damon-houk/payment-query-service/internal/application/service"
	"github.com/damon-houk/payment-query-service/internal/domain/query"
	domain "github.com/damon-houk/payment-query-service/internal/domain/service"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/logger"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// QueryObserver is notified of the filtered size of every successful query
type QueryObserver interface {
	ObserveMatched(n int)
}

// Options tunes the payment handler
type Options struct {
	// StrictAccept rejects requests whose Accept header lacks application/json
	StrictAccept bool
	// Location interprets query timestamps that carry no offset; UTC when nil
	Location *time.Location
	// Observer receives per-query result sizes; optional
	Observer QueryObserver
}

// Result is a transport-neutral response: a status code and a JSON body
type Result struct {
	Status int
	Body   interface{}
}

// PaymentHandler handles payment listing requests
type PaymentHandler struct {
	service *service.PaymentQueryService
	auth    domain.Authenticator
	logger  logger.Logger
	opts    Options
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(svc *service.PaymentQueryService, auth domain.Authenticator, log logger.Logger, opts Options) *PaymentHandler {
	if auth == nil {
		auth = service.NewBearerGate()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	return &PaymentHandler{
		service: svc,
		auth:    auth,
		logger:  logger.OrDefault(log),
		opts:    opts,
	}
}

// Evaluate runs one listing request through the credential gate, the query
// parser and the query service. Each stage short-circuits on failure.
func (h *PaymentHandler) Evaluate(ctx context.Context, header http.Header, params url.Values) Result {
	requestID := middleware.GetRequestID(ctx)

	if h.opts.StrictAccept && !strings.Contains(strings.ToLower(header.Get("Accept")), "application/json") {
		h.logger.Warn("Unacceptable Accept header", logger.Fields{
			"request_id": requestID,
			"accept":     header.Get("Accept"),
		})
		return errorResult(ErrNotAcceptable)
	}

	if err := h.auth.Authenticate(ctx, header.Get("Authorization")); err != nil {
		h.logger.Warn("Credential rejected", logger.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		})
		if !errors.Is(err, domain.ErrUnauthorized) {
			err = fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
		}
		return errorResult(err)
	}

	q, err := query.Parse(params, h.opts.Location)
	if err != nil {
		fields := logger.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}
		var vErr *query.ValidationError
		if errors.As(err, &vErr) {
			fields["param"] = vErr.Param
		}
		h.logger.Warn("Invalid query parameters", fields)
		return errorResult(err)
	}

	page, err := h.service.ListPayments(ctx, q)
	if err != nil {
		h.logger.Error("Payment listing failed", logger.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		})
		return errorResult(err)
	}

	if h.opts.Observer != nil {
		h.opts.Observer.ObserveMatched(page.TotalRecords)
	}

	h.logger.Info("Payments listed", logger.Fields{
		"request_id":    requestID,
		"actual_page":   page.ActualPage,
		"per_page":      page.PerPage,
		"total_records": page.TotalRecords,
		"last_page":     page.LastPage,
		"returned":      len(page.Items),
	})

	return Result{
		Status: http.StatusOK,
		Body: PaymentPageResponse{
			ActualPage:   page.ActualPage,
			Payments:     page.Items,
			TotalRecords: page.TotalRecords,
			PerPage:      page.PerPage,
			LastPage:     page.LastPage,
		},
	}
}

// ListPayments handles GET /api/payment
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	res := h.Evaluate(r.Context(), r.Header, r.URL.Query())
	writeJSON(w, h.logger, res, middleware.GetRequestID(r.Context()))
}

// Health handles GET /healthz
func (h *PaymentHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, Result{Status: http.StatusOK, Body: HealthResponse{Status: "ok"}},
		middleware.GetRequestID(r.Context()))
}

// RegisterRoutes registers the payment handler routes
func (h *PaymentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/payment", h.ListPayments).Methods("GET")
	router.HandleFunc("/healthz", h.Health).Methods("GET")

	h.logger.Info("Payment routes registered", logger.Fields{
		"routes": []string{
			"GET /api/payment",
			"GET /healthz",
		},
	})
}

func errorResult(err error) Result {
	status, message := classify(err)
	return Result{Status: status, Body: ErrorResponse{Message: message}}
}

// writeJSON sends res as a JSON response
func writeJSON(w http.ResponseWriter, log logger.Logger, res Result, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Status)

	if err := json.NewEncoder(w).Encode(res.Body); err != nil {
		log.Error("Failed to encode response", logger.Fields{
			"request_id":  requestID,
			"status_code": res.Status,
			"error":       err.Error(),
		})
	}
}
