package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"clockedin/internal/config"
)

// Validator provides common validation utilities
type Validator struct {
	config *config.Config
}

// NewValidator creates a validator using the default limits
func NewValidator() *Validator {
	return &Validator{}
}

// NewValidatorWithConfig creates a validator using the configured limits
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	return &Validator{config: cfg}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks the trimmed length in characters
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := utf8.RuneCountInString(strings.TrimSpace(s))
	return length >= min && length <= max
}

// IsValidSubjectName rejects control characters such as newlines and tabs
func (v *Validator) IsValidSubjectName(name string) bool {
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// IsValidID checks if an id is positive
func (v *Validator) IsValidID(id int64) bool {
	return id > 0
}

// IsValidMinutes checks a duration against the configured maximum
func (v *Validator) IsValidMinutes(minutes int) bool {
	return minutes > 0 && minutes <= v.MaxLogMinutes()
}

// IsValidWeeklyGoal checks a goal against the configured maximum
func (v *Validator) IsValidWeeklyGoal(goal float64) bool {
	return goal >= 0 && goal <= v.MaxWeeklyGoal()
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}

func (v *Validator) SubjectNameMinLength() int {
	if v.config != nil {
		return v.config.Validation.SubjectNameMinLength
	}
	return 1
}

func (v *Validator) SubjectNameMaxLength() int {
	if v.config != nil {
		return v.config.Validation.SubjectNameMaxLength
	}
	return 100
}

func (v *Validator) MaxLogMinutes() int {
	if v.config != nil {
		return v.config.Validation.MaxLogMinutes
	}
	return 24 * 60
}

func (v *Validator) MaxWeeklyGoal() float64 {
	if v.config != nil {
		return v.config.Validation.MaxWeeklyGoal
	}
	return 168
}
