package measure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepline/prepline-engine/pkg/models"
)

func TestEvaluateAtLeast(t *testing.T) {
	tests := []struct {
		name     string
		recorded string
		limit    string
		passed   bool
	}{
		{name: "above limit passes", recorded: "80°C", limit: "75°C core", passed: true},
		{name: "exactly at limit passes", recorded: "75°C", limit: "75°C core", passed: true},
		{name: "just below limit fails", recorded: "74.9°C", limit: "75°C core", passed: false},
		{name: "well below limit fails", recorded: "50°C", limit: "75°C core", passed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := Evaluate(tt.recorded, tt.limit, models.OperatorAtLeast, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.passed, eval.Passed)
		})
	}
}

func TestEvaluateAtMost(t *testing.T) {
	// Freezer storage: the limit is a maximum and both sides are negative.
	eval, err := Evaluate("-20°C", "-18°C", models.OperatorAtMost, 0)
	require.NoError(t, err)
	assert.True(t, eval.Passed)
	assert.Equal(t, float64(-20), eval.Recorded)
	assert.Equal(t, float64(-18), eval.Limit)

	eval, err = Evaluate("-15°C", "-18°C", models.OperatorAtMost, 0)
	require.NoError(t, err)
	assert.False(t, eval.Passed)
}

func TestEvaluateEquals(t *testing.T) {
	eval, err := Evaluate("3", "3 units", models.OperatorEquals, 0)
	require.NoError(t, err)
	assert.True(t, eval.Passed)

	eval, err = Evaluate("3.1", "3 units", models.OperatorEquals, 0)
	require.NoError(t, err)
	assert.False(t, eval.Passed)
}

func TestEvaluateWithinTolerance(t *testing.T) {
	eval, err := Evaluate("4.4", "5", models.OperatorWithinTolerance, 0.5)
	require.NoError(t, err)
	assert.False(t, eval.Passed)

	eval, err = Evaluate("4.6", "5", models.OperatorWithinTolerance, 0.5)
	require.NoError(t, err)
	assert.True(t, eval.Passed)
}

func TestEvaluateEmptyOperatorDefaultsToAtLeast(t *testing.T) {
	eval, err := Evaluate("80°C", "75°C", "", 0)
	require.NoError(t, err)
	assert.True(t, eval.Passed)

	eval, err = Evaluate("70°C", "75°C", "", 0)
	require.NoError(t, err)
	assert.False(t, eval.Passed)
}

func TestEvaluateUnknownOperator(t *testing.T) {
	_, err := Evaluate("80", "75", "roughly", 0)
	require.Error(t, err)
}

func TestEvaluateInvalidInputs(t *testing.T) {
	_, err := Evaluate("visually clean", "75°C", models.OperatorAtLeast, 0)
	require.Error(t, err)

	_, err = Evaluate("75°C", "no numeric limit", models.OperatorAtLeast, 0)
	require.Error(t, err)
}

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		name     string
		recorded float64
		limit    float64
		want     models.Severity
	}{
		{name: "small deviation is minor", recorded: 70, limit: 75, want: models.SeverityMinor},
		{name: "exactly 10 percent is minor", recorded: 67.5, limit: 75, want: models.SeverityMinor},
		{name: "just over 10 percent is major", recorded: 67.4, limit: 75, want: models.SeverityMajor},
		{name: "exactly 20 percent is major", recorded: 60, limit: 75, want: models.SeverityMajor},
		{name: "over 20 percent is critical", recorded: 50, limit: 75, want: models.SeverityCritical},
		{name: "negative limit uses magnitude", recorded: -12, limit: -18, want: models.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			severity, needsReview := ClassifySeverity(tt.recorded, tt.limit)
			assert.Equal(t, tt.want, severity)
			assert.False(t, needsReview)
		})
	}
}

func TestClassifySeverityZeroLimit(t *testing.T) {
	// Variance is undefined against a zero limit; critical plus manual review.
	severity, needsReview := ClassifySeverity(5, 0)
	assert.Equal(t, models.SeverityCritical, severity)
	assert.True(t, needsReview)
}
