// Package gateway serves payment listings to API Gateway proxy events.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/handler"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/logger"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/middleware"
)

// Evaluator runs one listing request independent of transport
type Evaluator interface {
	Evaluate(ctx context.Context, header http.Header, params url.Values) handler.Result
}

// Processor adapts API Gateway proxy events to an Evaluator
type Processor struct {
	evaluator Evaluator
	logger    logger.Logger
}

// Option customizes the processor
type Option func(*Processor)

// WithLogger lets callers supply a custom logger
func WithLogger(l logger.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProcessor creates a processor around evaluator
func NewProcessor(evaluator Evaluator, opts ...Option) *Processor {
	p := &Processor{
		evaluator: evaluator,
		logger:    logger.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle is the Lambda entry point. Every outcome, including client errors,
// is returned as a proxy response; the error return is reserved for
// responses that cannot be encoded.
func (p *Processor) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()
	header := requestHeader(req)

	requestID := header.Get(middleware.RequestIDHeader)
	if requestID == "" {
		requestID = req.RequestContext.RequestID
	}
	requestID = middleware.NewRequestID(requestID)
	ctx = middleware.WithRequestID(ctx, requestID)

	var res handler.Result
	if req.HTTPMethod != "" && req.HTTPMethod != http.MethodGet {
		res = handler.Result{
			Status: http.StatusMethodNotAllowed,
			Body:   handler.ErrorResponse{Message: "Method Not Allowed"},
		}
	} else {
		res = p.evaluator.Evaluate(ctx, header, queryValues(req))
	}

	body, err := json.Marshal(res.Body)
	if err != nil {
		p.logger.Error("Failed to encode response", logger.Fields{
			"request_id":  requestID,
			"status_code": res.Status,
			"error":       err.Error(),
		})
		return events.APIGatewayProxyResponse{}, err
	}

	p.logger.Info("Event processed", logger.Fields{
		"request_id":  requestID,
		"method":      req.HTTPMethod,
		"path":        req.Path,
		"status_code": res.Status,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return events.APIGatewayProxyResponse{
		StatusCode: res.Status,
		Headers: map[string]string{
			"Content-Type":             "application/json",
			middleware.RequestIDHeader: requestID,
		},
		Body: string(body),
	}, nil
}

// queryValues prefers the multi-value map so repeated parameters survive
func queryValues(req events.APIGatewayProxyRequest) url.Values {
	params := url.Values{}
	if len(req.MultiValueQueryStringParameters) > 0 {
		for k, vs := range req.MultiValueQueryStringParameters {
			params[k] = append([]string(nil), vs...)
		}
		return params
	}

	for k, v := range req.QueryStringParameters {
		params.Set(k, v)
	}
	return params
}

// requestHeader canonicalizes header names, which API Gateway passes through
// in whatever case the client sent
func requestHeader(req events.APIGatewayProxyRequest) http.Header {
	header := http.Header{}
	if len(req.MultiValueHeaders) > 0 {
		for k, vs := range req.MultiValueHeaders {
			for _, v := range vs {
				header.Add(k, v)
			}
		}
		return header
	}

	for k, v := range req.Headers {
		header.Set(k, v)
	}
	return header
}
