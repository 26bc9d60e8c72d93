package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDayFirst(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"slash day first", "15/03/2025", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"slash with time", "15/03/2025 10:30:00", time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"dash day first", "15-03-2025", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"iso date", "2025-03-15", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2025-03-15T00:00:00Z", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"two digit year", "15/03/25", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"surrounding spaces", "  15/03/2025  ", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseDayFirst(tc.input)
			require.NotNil(t, got)
			assert.True(t, tc.expected.Equal(*got), "got %v", got)
		})
	}
}

func TestParseDayFirstInvalid(t *testing.T) {
	for _, input := range []string{"", "   ", "not-a-date", "32/13/2025"} {
		assert.Nil(t, ParseDayFirst(input), "input %q", input)
	}
}

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 1234.57, RoundFloat(1234.5678, 2))
	assert.Equal(t, 1234.56, RoundFloat(1234.564, 2))
	assert.Equal(t, -10.5, RoundFloat(-10.499999, 1))
	assert.Equal(t, 100.0, RoundFloat(99.999, 0))
}
