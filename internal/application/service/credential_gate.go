package service

import (
	"context"
	"strings"

	domain "github.com/damon-houk/payment-query-service/internal/domain/service"
)

// BearerPrefix is the literal scheme prefix a credential must start with
const BearerPrefix = "Bearer "

// BearerGate accepts any Authorization value shaped like a bearer token.
// The token itself is not decoded or verified.
type BearerGate struct{}

// NewBearerGate creates a credential shape check
func NewBearerGate() *BearerGate {
	return &BearerGate{}
}

// Authenticate fails with ErrUnauthorized unless authorization starts with "Bearer "
func (g *BearerGate) Authenticate(_ context.Context, authorization string) error {
	if !strings.HasPrefix(authorization, BearerPrefix) {
		return domain.ErrUnauthorized
	}
	return nil
}
