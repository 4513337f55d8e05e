package service

import (
	"context"
	"errors"
)

// ErrUnauthorized is returned when a request carries no acceptable credential
var ErrUnauthorized = errors.New("unauthorized")

// Authenticator defines the interface for verifying a request credential
type Authenticator interface {
	// Authenticate checks the raw Authorization header value
	Authenticate(ctx context.Context, authorization string) error
}
