package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// decimalPattern accepts decimal numbers with an optional exponent. Hex,
// infinities and trailing units are rejected.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// maxMinutes bounds the conversion to int; range limits proper are
// applied by the log validator.
const maxMinutes = math.MaxInt32

// parseDecimal trims s, treats the first comma as the decimal separator
// and parses the result. ok is false for empty or non-numeric input.
func parseDecimal(s string) (value float64, ok bool) {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	if s == "" || !decimalPattern.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseHoursToMinutes converts a free-text hour count such as "1.5" or
// "1,5" into whole minutes. Empty, non-numeric and non-positive input is
// rejected, as is anything that rounds to zero minutes.
func ParseHoursToMinutes(input string) (int, error) {
	hours, ok := parseDecimal(input)
	if !ok {
		ve := NewValidationError()
		if strings.TrimSpace(input) == "" {
			ve.AddError("hours", ErrorTypeRequired, "Enter a valid number of hours", input)
		} else {
			ve.AddError("hours", ErrorTypeInvalidFormat, "Enter a valid number of hours", input)
		}
		return 0, ve
	}
	if hours <= 0 {
		ve := NewValidationError()
		ve.AddError("hours", ErrorTypeInvalidRange, "Hours must be greater than 0", input)
		return 0, ve
	}

	rounded := math.Round(hours * 60)
	if rounded > maxMinutes {
		ve := NewValidationError()
		ve.AddError("hours", ErrorTypeInvalidRange, "Duration is too long", input)
		return 0, ve
	}
	minutes := int(rounded)
	if minutes < 1 {
		ve := NewValidationError()
		ve.AddError("hours", ErrorTypeInvalidRange, "Duration must be at least one minute", input)
		return 0, ve
	}
	return minutes, nil
}

// ParseWeeklyGoal converts a free-text weekly goal in hours. Empty input
// means no goal and yields 0.
func ParseWeeklyGoal(input string) (float64, error) {
	if strings.TrimSpace(input) == "" {
		return 0, nil
	}
	goal, ok := parseDecimal(input)
	if !ok || goal < 0 {
		ve := NewValidationError()
		ve.AddError("weekly_goal", ErrorTypeInvalidValue, "Enter a valid goal, 0 or greater", input)
		return 0, ve
	}
	return goal, nil
}
