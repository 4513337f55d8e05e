package service

import (
	"context"
	"errors"

	"github.com/damon-houk/payment-query-service/internal/domain/entity"
	"github.com/damon-houk/payment-query-service/internal/domain/query"
	"github.com/damon-houk/payment-query-service/internal/domain/repository"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/logger"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/middleware"
)

// PaymentQueryService answers filtered, paginated payment listings
type PaymentQueryService struct {
	repo   repository.PaymentRepository
	logger logger.Logger
}

// NewPaymentQueryService creates a new payment query service
func NewPaymentQueryService(repo repository.PaymentRepository, log logger.Logger) *PaymentQueryService {
	return &PaymentQueryService{
		repo:   repo,
		logger: logger.OrDefault(log),
	}
}

// ListPayments filters the provider's records with q and returns the
// requested page. Provider failures are returned as *repository.DataSourceError.
func (s *PaymentQueryService) ListPayments(ctx context.Context, q query.Query) (*Page[entity.PaymentRecord], error) {
	requestID := middleware.GetRequestID(ctx)

	if q.Sort.Field != "" || q.Sort.Direction != "" {
		s.logger.Debug("Sort hints ignored", logger.Fields{
			"request_id": requestID,
			"order_by":   q.Sort.Field,
			"direction":  q.Sort.Direction,
		})
	}

	records, err := s.repo.FetchAll(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch payment records", logger.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		})

		var dsErr *repository.DataSourceError
		if errors.As(err, &dsErr) {
			return nil, err
		}
		return nil, repository.NewDataSourceError("fetch", err)
	}

	preds := BuildPredicates(q)
	filtered := FilterRecords(records, preds)
	page := Paginate(filtered, q.Page, q.PerPage)

	s.logger.Debug("Payments filtered", logger.Fields{
		"request_id":     requestID,
		"candidates":     len(records),
		"active_filters": len(preds),
		"matched":        page.TotalRecords,
		"page":           page.ActualPage,
		"per_page":       page.PerPage,
		"last_page":      page.LastPage,
	})

	return &page, nil
}
