package query

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var errUnrecognizedTimestamp = errors.New("unrecognized timestamp format")

// Layouts tried for boundaries that carry no offset. They are interpreted in
// the location handed to the parser.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// TimeRange is a closed interval of instants
type TimeRange struct {
	Since time.Time
	Until time.Time
}

// Contains reports whether t falls within the range, bounds included.
// Inverted ranges contain nothing.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Since) && !t.After(r.Until)
}

// ParseTimestamp parses an ISO 8601 timestamp. A single space may stand in
// for the date/time separator ("2024-10-01 10:00:00").
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	normalized := strings.Replace(strings.TrimSpace(raw), " ", "T", 1)
	if normalized == "" {
		return time.Time{}, errUnrecognizedTimestamp
	}

	if t, err := time.Parse(time.RFC3339, normalized); err == nil {
		return t, nil
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, normalized, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", errUnrecognizedTimestamp, raw)
}

// ParseRange builds a TimeRange from a pair of optional boundaries. Both
// absent yields (nil, nil). Unparseable values are reported before an
// unpaired boundary. No ordering check is made between since and until.
func ParseRange(sinceParam, untilParam, since, until string, loc *time.Location) (*TimeRange, error) {
	var (
		sinceTime, untilTime time.Time
		err                  error
	)

	if since != "" {
		if sinceTime, err = ParseTimestamp(since, loc); err != nil {
			return nil, invalid(sinceParam, fmt.Sprintf("invalid %s/%s date format", sinceParam, untilParam))
		}
	}

	if until != "" {
		if untilTime, err = ParseTimestamp(until, loc); err != nil {
			return nil, invalid(untilParam, fmt.Sprintf("invalid %s/%s date format", sinceParam, untilParam))
		}
	}

	switch {
	case since == "" && until == "":
		return nil, nil
	case since == "":
		return nil, invalid(sinceParam, fmt.Sprintf("%s requires %s (and vice-versa)", sinceParam, untilParam))
	case until == "":
		return nil, invalid(untilParam, fmt.Sprintf("%s requires %s (and vice-versa)", sinceParam, untilParam))
	}

	return &TimeRange{Since: sinceTime, Until: untilTime}, nil
}
