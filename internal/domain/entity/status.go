package entity

import (
	"strconv"
	"strings"
)

// Canonical payment status labels
const (
	StatusDenied    = "Denied"
	StatusPending   = "Pending"
	StatusUndone    = "Undone"
	StatusRefused   = "Refused"
	StatusConfirmed = "Confirmed"
	StatusCancelled = "Cancelled"
)

var statusByCode = map[int]string{
	1: StatusDenied,
	2: StatusPending,
	3: StatusUndone,
	4: StatusRefused,
	5: StatusConfirmed,
	6: StatusCancelled,
}

// StatusLabel returns the canonical label for a numeric status code
func StatusLabel(code int) (string, bool) {
	label, ok := statusByCode[code]
	return label, ok
}

// ResolveStatus maps a raw status filter value to the label records are
// compared against. Codes 1..6 resolve to their canonical label; anything
// else is returned unchanged and matched verbatim.
func ResolveStatus(raw string) string {
	code, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}

	if label, ok := StatusLabel(code); ok {
		return label
	}

	return raw
}
