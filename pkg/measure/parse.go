// Package measure extracts numeric measurements from free-text check values
// and decides pass/fail against a CCP's critical limit. Everything in this
// package is a pure function of its inputs.
package measure

import (
	"fmt"
	"strconv"

	"github.com/prepline/prepline-engine/pkg/apperrors"
)

// ParseMeasurement extracts the first number embedded in a free-text value
// such as "75°C core" or "-18 °C". A leading minus sign, a decimal part and a
// scientific exponent are all supported; frozen-storage limits like "-18°C"
// must not lose their sign. Strings with no numeric content fail with
// ErrInvalidMeasurementFormat.
func ParseMeasurement(raw string) (float64, error) {
	start := -1
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c >= '0' && c <= '9' {
			start = i
			// Back up one byte to pick up a directly attached minus sign.
			if i > 0 && raw[i-1] == '-' {
				start = i - 1
			}
			break
		}
	}
	if start == -1 {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidMeasurementFormat, raw)
	}

	end := start
	if raw[end] == '-' {
		end++
	}
	seenDot := false
	for end < len(raw) {
		c := raw[end]
		switch {
		case c >= '0' && c <= '9':
			end++
		case c == '.' && !seenDot && end+1 < len(raw) && raw[end+1] >= '0' && raw[end+1] <= '9':
			seenDot = true
			end++
		case (c == 'e' || c == 'E') && hasExponent(raw, end):
			end = exponentEnd(raw, end)
		default:
			return finish(raw, start, end)
		}
	}
	return finish(raw, start, end)
}

// hasExponent reports whether raw[i] begins a well-formed exponent
// (e/E, optional sign, at least one digit).
func hasExponent(raw string, i int) bool {
	j := i + 1
	if j < len(raw) && (raw[j] == '+' || raw[j] == '-') {
		j++
	}
	return j < len(raw) && raw[j] >= '0' && raw[j] <= '9'
}

// exponentEnd returns the index one past the end of the exponent at raw[i].
func exponentEnd(raw string, i int) int {
	j := i + 1
	if raw[j] == '+' || raw[j] == '-' {
		j++
	}
	for j < len(raw) && raw[j] >= '0' && raw[j] <= '9' {
		j++
	}
	return j
}

func finish(raw string, start, end int) (float64, error) {
	v, err := strconv.ParseFloat(raw[start:end], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidMeasurementFormat, raw)
	}
	return v, nil
}
