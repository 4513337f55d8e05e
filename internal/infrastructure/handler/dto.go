package handler

import (
	"github.com/damon-houk/payment-query-service/internal/domain/entity"
)

// PaymentPageResponse represents the response for the payment listing endpoint
type PaymentPageResponse struct {
	ActualPage   int                    `json:"actualPage"`
	Payments     []entity.PaymentRecord `json:"payments"`
	TotalRecords int                    `json:"totalRecords"`
	PerPage      int                    `json:"perPage"`
	LastPage     int                    `json:"lastPage"`
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Message string `json:"message"`
}

// HealthResponse represents the response for the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}
