package handler

import (
	"errors"
	"net/http"

	"github.com/damon-houk/payment-query-service/internal/domain/query"
	"github.com/damon-houk/payment-query-service/internal/domain/repository"
	domain "github.com/damon-houk/payment-query-service/internal/domain/service"
)

// ErrNotAcceptable is returned in strict accept mode when the client does
// not accept JSON
var ErrNotAcceptable = errors.New("not acceptable")

// classify maps a pipeline error to its status code and client message
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNotAcceptable):
		return http.StatusNotAcceptable, "Not Acceptable. Use accept: application/json"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized: missing Bearer token"
	case errors.Is(err, query.ErrInvalidRequest):
		return http.StatusBadRequest, "Bad Request: " + err.Error()
	case errors.Is(err, repository.ErrDataSource):
		return http.StatusInternalServerError, "Internal Server Error: " + repository.ErrDataSource.Error()
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}
