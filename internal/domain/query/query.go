// Package query turns raw request parameters into a validated Query.
package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/damon-houk/payment-query-service/internal/domain/entity"
)

// Request parameter names
const (
	ParamPageID            = "pageId"
	ParamTotalPerPage      = "TotalPerPage"
	ParamResellerDocument  = "resellerDocument"
	ParamMerchantDocuments = "merchantDocuments"
	ParamTransactionType   = "transactionType"
	ParamTransactionTypeV2 = "TransactionType"
	ParamNsuAcquirer       = "NsuAcquirer"
	ParamNsuProvider       = "NsuProvider"
	ParamStatus            = "status"
	ParamCreatedSince      = "createdSince"
	ParamCreatedUntil      = "createdUntil"
	ParamUpdatedSince      = "updatedSince"
	ParamUpdatedUntil      = "updatedUntil"
	ParamOrderBy           = "OrderBy"
	ParamOrderDirection    = "OrderDirection"
)

// Page size bounds
const (
	DefaultPerPage = 25
	MinPerPage     = 1
	MaxPerPage     = 200
)

// SortHint carries the OrderBy/OrderDirection parameters. They are accepted
// but not applied; results keep the provider's order.
type SortHint struct {
	Field     string
	Direction string
}

// Query is the validated form of one payment listing request. A zero value
// for an optional field means the filter is inactive.
type Query struct {
	Page    int
	PerPage int

	ResellerDocument  string
	MerchantDocuments map[string]struct{}
	TransactionType   string
	NsuAcquirer       string
	NsuProvider       string
	Status            string

	Created *TimeRange
	Updated *TimeRange

	Sort SortHint
}

// HasMerchantDocument reports whether doc is in the requested merchant set
func (q Query) HasMerchantDocument(doc string) bool {
	_, ok := q.MerchantDocuments[doc]
	return ok
}

// Parse validates raw parameters and builds a Query. Timestamps without an
// offset are read in loc (UTC when nil).
func Parse(params url.Values, loc *time.Location) (Query, error) {
	page, err := parsePage(params.Get(ParamPageID))
	if err != nil {
		return Query{}, err
	}

	q := Query{
		Page:              page,
		PerPage:           parsePerPage(params.Get(ParamTotalPerPage)),
		ResellerDocument:  params.Get(ParamResellerDocument),
		MerchantDocuments: merchantSet(params[ParamMerchantDocuments]),
		TransactionType:   strings.ToLower(firstNonEmpty(params, ParamTransactionType, ParamTransactionTypeV2)),
		NsuAcquirer:       params.Get(ParamNsuAcquirer),
		NsuProvider:       params.Get(ParamNsuProvider),
		Sort: SortHint{
			Field:     params.Get(ParamOrderBy),
			Direction: params.Get(ParamOrderDirection),
		},
	}

	if raw := params.Get(ParamStatus); raw != "" {
		q.Status = entity.ResolveStatus(raw)
	}

	q.Created, err = ParseRange(ParamCreatedSince, ParamCreatedUntil,
		params.Get(ParamCreatedSince), params.Get(ParamCreatedUntil), loc)
	if err != nil {
		return Query{}, err
	}

	q.Updated, err = ParseRange(ParamUpdatedSince, ParamUpdatedUntil,
		params.Get(ParamUpdatedSince), params.Get(ParamUpdatedUntil), loc)
	if err != nil {
		return Query{}, err
	}

	return q, nil
}

func parsePage(raw string) (int, error) {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 0, invalid(ParamPageID, "pageId is required and must be >= 1")
	}
	return page, nil
}

func parsePerPage(raw string) int {
	perPage, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultPerPage
	}

	switch {
	case perPage < MinPerPage:
		return MinPerPage
	case perPage > MaxPerPage:
		return MaxPerPage
	default:
		return perPage
	}
}

// merchantSet normalizes one or many merchantDocuments values. Empty values
// are dropped; nil means the filter is inactive.
func merchantSet(values []string) map[string]struct{} {
	var set map[string]struct{}
	for _, v := range values {
		if v == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(values))
		}
		set[v] = struct{}{}
	}
	return set
}

func firstNonEmpty(params url.Values, keys ...string) string {
	for _, k := range keys {
		if v := params.Get(k); v != "" {
			return v
		}
	}
	return ""
}
