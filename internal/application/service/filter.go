package service

import (
	"github.com/damon-houk/payment-query-service/internal/domain/entity"
	"github.com/damon-houk/payment-query-service/internal/domain/query"
)

// Predicate reports whether a record satisfies one filter
type Predicate func(entity.PaymentRecord) bool

// BuildPredicates returns one predicate per active filter of q. The order is
// chosen for cheap rejection only; every ordering selects the same records.
func BuildPredicates(q query.Query) []Predicate {
	var preds []Predicate

	if q.ResellerDocument != "" {
		doc := q.ResellerDocument
		preds = append(preds, func(r entity.PaymentRecord) bool {
			return r.ResellerDocument == doc
		})
	}

	if len(q.MerchantDocuments) > 0 {
		preds = append(preds, func(r entity.PaymentRecord) bool {
			return q.HasMerchantDocument(r.MerchantDocument)
		})
	}

	if q.TransactionType != "" {
		txType := q.TransactionType
		preds = append(preds, func(r entity.PaymentRecord) bool {
			return r.TransactionType == txType
		})
	}

	if q.NsuAcquirer != "" {
		nsu := q.NsuAcquirer
		preds = append(preds, func(r entity.PaymentRecord) bool {
			return r.NsuAcquirer == nsu
		})
	}

	if q.NsuProvider != "" {
		nsu := q.NsuProvider
		preds = append(preds, func(r entity.PaymentRecord) bool {
			return r.NsuProvider == nsu
		})
	}

	if q.Status != "" {
		status := q.Status
		preds = append(preds, func(r entity.PaymentRecord) bool {
			return r.Status == status
		})
	}

	if q.Created != nil {
		created := *q.Created
		preds = append(preds, func(r entity.PaymentRecord) bool {
			return created.Contains(r.CreatedAt)
		})
	}

	if q.Updated != nil {
		updated := *q.Updated
		preds = append(preds, func(r entity.PaymentRecord) bool {
			return updated.Contains(r.UpdatedAt)
		})
	}

	return preds
}

// FilterRecords returns the records matching every predicate, in their
// original order. Evaluation stops at the first failing predicate.
func FilterRecords(records []entity.PaymentRecord, preds []Predicate) []entity.PaymentRecord {
	matched := make([]entity.PaymentRecord, 0, len(records))

next:
	for _, r := range records {
		for _, p := range preds {
			if !p(r) {
				continue next
			}
		}
		matched = append(matched, r)
	}

	return matched
}
