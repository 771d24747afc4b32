package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input string
		want  Period
	}{
		{"", PeriodNone},
		{"none", PeriodNone},
		{"day", PeriodDay},
		{"week", PeriodWeek},
		{"month", PeriodMonth},
		{"year", PeriodYear},
	}

	for _, tt := range tests {
		got, err := ParsePeriod(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
		if tt.input != "" {
			assert.Equal(t, tt.input, got.String())
		}
	}

	_, err := ParsePeriod("fortnight")
	require.Error(t, err)
}

func TestValidIcon(t *testing.T) {
	for _, icon := range Icons {
		assert.True(t, ValidIcon(icon))
	}
	assert.False(t, ValidIcon(Icon("sparkles")))
	assert.False(t, ValidIcon(Icon("")))
}

func TestRangeActive(t *testing.T) {
	assert.False(t, FilterState{}.RangeActive())
	assert.True(t, FilterState{Period: PeriodWeek}.RangeActive())
	assert.True(t, FilterState{Range: &DateRange{}}.RangeActive())
	assert.True(t, FilterState{Range: &DateRange{}, Period: PeriodWeek}.RangeActive())
}
