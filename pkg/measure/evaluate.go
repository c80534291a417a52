package measure

import (
	"fmt"
	"math"

	"github.com/prepline/prepline-engine/pkg/models"
)

// Evaluation is the outcome of comparing a recorded measurement against a
// critical limit. Both parsed values are retained for severity derivation and
// for the denormalized audit fields.
type Evaluation struct {
	Recorded float64
	Limit    float64
	Passed   bool
}

// Evaluate parses the recorded value and the critical-limit expression and
// decides compliance under the CCP's comparison operator. tolerance is the
// absolute delta for within_tolerance and is ignored by other operators.
// An unparseable value on either side fails with ErrInvalidMeasurementFormat
// before any record is written.
func Evaluate(recordedValue, criticalLimit string, op models.LimitOperator, tolerance float64) (Evaluation, error) {
	recorded, err := ParseMeasurement(recordedValue)
	if err != nil {
		return Evaluation{}, fmt.Errorf("recorded value: %w", err)
	}
	limit, err := ParseMeasurement(criticalLimit)
	if err != nil {
		return Evaluation{}, fmt.Errorf("critical limit: %w", err)
	}

	eval := Evaluation{Recorded: recorded, Limit: limit}
	switch op {
	case models.OperatorAtMost:
		eval.Passed = recorded <= limit
	case models.OperatorEquals:
		eval.Passed = recorded == limit
	case models.OperatorWithinTolerance:
		eval.Passed = math.Abs(recorded-limit) <= tolerance
	case models.OperatorAtLeast, "":
		// at_least is the default for CCP definitions that predate the
		// operator field.
		eval.Passed = recorded >= limit
	default:
		return Evaluation{}, fmt.Errorf("unknown limit operator %q", op)
	}
	return eval, nil
}

// ClassifySeverity derives incident severity from the relative deviation
// between a failing measurement and its limit:
//
//	variance > 20%        critical
//	10% < variance <= 20% major
//	otherwise             minor
//
// A zero limit makes the variance undefined; those incidents are classified
// critical unconditionally and flagged for manual review. The second return
// value reports that flag.
func ClassifySeverity(recorded, limit float64) (models.Severity, bool) {
	if limit == 0 {
		return models.SeverityCritical, true
	}
	variance := math.Abs(recorded-limit) / math.Abs(limit) * 100
	switch {
	case variance > 20:
		return models.SeverityCritical, false
	case variance > 10:
		return models.SeverityMajor, false
	default:
		return models.SeverityMinor, false
	}
}
