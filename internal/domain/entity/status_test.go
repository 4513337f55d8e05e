package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"Denied code", "1", StatusDenied},
		{"Pending code", "2", StatusPending},
		{"Undone code", "3", StatusUndone},
		{"Refused code", "4", StatusRefused},
		{"Confirmed code", "5", StatusConfirmed},
		{"Cancelled code", "6", StatusCancelled},
		{"Code with spaces", " 5 ", StatusConfirmed},
		{"Literal label", "Confirmed", StatusConfirmed},
		{"Unknown label passes through", "Chargeback", "Chargeback"},
		{"Out of range code falls back to literal", "7", "7"},
		{"Zero falls back to literal", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveStatus(tt.raw))
		})
	}
}

func TestStatusLabel(t *testing.T) {
	label, ok := StatusLabel(2)
	assert.True(t, ok)
	assert.Equal(t, StatusPending, label)

	_, ok = StatusLabel(42)
	assert.False(t, ok)
}
