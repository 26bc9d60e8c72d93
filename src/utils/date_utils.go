package utils

import (
	"strings"
	"time"
)

// DefaultDateFormat is the day-first layout used by the commission exports.
const DefaultDateFormat = "02/01/2006"

// dayFirstFormats lists the layouts seen across statement eras, most
// specific first. ISO layouts appear because spreadsheet readers and the
// database round-trip dates in that form.
var dayFirstFormats = []string{
	"02/01/2006 15:04:05",
	"02/01/2006",
	"02-01-2006 15:04:05",
	"02-01-2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/06",
}

// ParseDayFirst parses a date string trying the known day-first layouts in
// order. Returns nil when no layout matches; a bad date cell never fails a
// whole load.
func ParseDayFirst(dateStr string) *time.Time {
	s := strings.TrimSpace(dateStr)
	if s == "" {
		return nil
	}
	for _, layout := range dayFirstFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
