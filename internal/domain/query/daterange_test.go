package query

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)

	tests := []struct {
		name string
		raw  string
		loc  *time.Location
		want time.Time
	}{
		{"RFC3339 with offset", "2024-10-01T10:00:00-03:00", nil, time.Date(2024, 10, 1, 13, 0, 0, 0, time.UTC)},
		{"RFC3339 UTC", "2024-10-01T10:00:00Z", nil, time.Date(2024, 10, 1, 10, 0, 0, 0, time.UTC)},
		{"fractional seconds", "2024-10-01T10:00:00.250Z", nil, time.Date(2024, 10, 1, 10, 0, 0, 250e6, time.UTC)},
		{"space separator", "2024-10-01 10:00:00", nil, time.Date(2024, 10, 1, 10, 0, 0, 0, time.UTC)},
		{"space separator with offset", "2024-10-01 10:00:00-03:00", nil, time.Date(2024, 10, 1, 13, 0, 0, 0, time.UTC)},
		{"minutes only", "2024-10-01T10:30", nil, time.Date(2024, 10, 1, 10, 30, 0, 0, time.UTC)},
		{"date only", "2024-10-01", nil, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)},
		{"local form in configured zone", "2024-10-01 10:00:00", saoPaulo, time.Date(2024, 10, 1, 13, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.raw, tt.loc)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}

	for _, raw := range []string{"", "yesterday", "2024-13-01", "01/10/2024", "2024-10-01  10:00:00"} {
		t.Run("rejects "+raw, func(t *testing.T) {
			_, err := ParseTimestamp(raw, nil)
			assert.Error(t, err)
		})
	}
}

func TestParseRange(t *testing.T) {
	t.Run("both absent", func(t *testing.T) {
		r, err := ParseRange(ParamCreatedSince, ParamCreatedUntil, "", "", nil)
		assert.NoError(t, err)
		assert.Nil(t, r)
	})

	t.Run("only since", func(t *testing.T) {
		r, err := ParseRange(ParamCreatedSince, ParamCreatedUntil, "2024-10-01", "", nil)
		assert.Nil(t, r)
		assert.True(t, errors.Is(err, ErrInvalidRequest))
		assert.Contains(t, err.Error(), "requires")
	})

	t.Run("only until", func(t *testing.T) {
		r, err := ParseRange(ParamCreatedSince, ParamCreatedUntil, "", "2024-10-01", nil)
		assert.Nil(t, r)
		assert.True(t, errors.Is(err, ErrInvalidRequest))
		assert.Contains(t, err.Error(), "requires")
	})

	t.Run("invalid format", func(t *testing.T) {
		r, err := ParseRange(ParamCreatedSince, ParamCreatedUntil, "2024-10-01", "garbage", nil)
		assert.Nil(t, r)
		assert.True(t, errors.Is(err, ErrInvalidRequest))
		assert.Equal(t, "invalid createdSince/createdUntil date format", err.Error())
	})

	t.Run("format is checked before pairing", func(t *testing.T) {
		_, err := ParseRange(ParamCreatedSince, ParamCreatedUntil, "garbage", "", nil)
		require.Error(t, err)
		assert.Equal(t, "invalid createdSince/createdUntil date format", err.Error())
	})

	t.Run("inverted range is accepted", func(t *testing.T) {
		r, err := ParseRange(ParamCreatedSince, ParamCreatedUntil, "2024-10-02", "2024-10-01", nil)
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.False(t, r.Contains(time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)))
	})
}

func TestTimeRangeContains(t *testing.T) {
	since := time.Date(2024, 10, 1, 10, 0, 0, 0, time.UTC)
	until := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	r := TimeRange{Since: since, Until: until}

	assert.True(t, r.Contains(since))
	assert.True(t, r.Contains(until))
	assert.True(t, r.Contains(since.Add(time.Hour)))
	assert.False(t, r.Contains(since.Add(-time.Nanosecond)))
	assert.False(t, r.Contains(until.Add(time.Nanosecond)))

	// Same instant expressed with a different offset
	assert.True(t, r.Contains(time.Date(2024, 10, 1, 8, 0, 0, 0, time.FixedZone("", -3*60*60))))
}
