package measure

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepline/prepline-engine/pkg/apperrors"
)

func TestParseMeasurement(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "plain integer", input: "75", want: 75},
		{name: "value with unit suffix", input: "75°C", want: 75},
		{name: "value with trailing text", input: "75°C core", want: 75},
		{name: "negative freezer temperature", input: "-18°C", want: -18},
		{name: "negative with space before unit", input: "-18 °C", want: -18},
		{name: "negative embedded in text", input: "freezer at -18°C", want: -18},
		{name: "decimal", input: "63.5°C", want: 63.5},
		{name: "negative decimal", input: "-4.5°C", want: -4.5},
		{name: "leading text", input: "core temp 82°C", want: 82},
		{name: "first number wins", input: "75°C for 30 seconds", want: 75},
		{name: "scientific notation", input: "1e3 cfu", want: 1000},
		{name: "negative exponent", input: "2.5e-1", want: 0.25},
		{name: "zero", input: "0°C", want: 0},
		{name: "trailing dot not consumed", input: "75. done", want: 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMeasurement(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMeasurementInvalid(t *testing.T) {
	for _, input := range []string{"", "abc", "no numbers here", "°C", "--"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseMeasurement(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidMeasurementFormat))
		})
	}
}

func TestParseMeasurementMinusNotAttached(t *testing.T) {
	// A dash separated from the digits is punctuation, not a sign.
	got, err := ParseMeasurement("range - 18°C")
	require.NoError(t, err)
	assert.Equal(t, float64(18), got)
}
