package model

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the ISO-8601 form tasks are persisted and exported in.
const TimeLayout = "2006-01-02T15:04:05.000Z"

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FormatTime renders t in UTC with millisecond precision.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime accepts RFC 3339 timestamps, and date or date-time values without
// an offset which are read as UTC.
func ParseTime(raw string) (time.Time, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", ErrFormat)
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable timestamp %q", ErrFormat, raw)
}

// ParseDue parses a due value, where the empty string means no deadline.
func ParseDue(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := ParseTime(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
