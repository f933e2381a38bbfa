package validation

import (
	"fmt"
)

// SubjectValidator provides validation for Subject-related operations
type SubjectValidator struct {
	validator *Validator
}

// NewSubjectValidator creates a new subject validator
func NewSubjectValidator(v *Validator) *SubjectValidator {
	if v == nil {
		v = NewValidator()
	}
	return &SubjectValidator{validator: v}
}

// ValidateName validates a subject name and returns it trimmed
func (sv *SubjectValidator) ValidateName(name string) (string, error) {
	ve := NewValidationError()
	trimmed := sv.validator.TrimAndValidateString(name)

	if !sv.validator.IsNonEmptyString(trimmed) {
		ve.AddError("name", ErrorTypeRequired, "Name is required", name)
		return "", ve
	}

	minLen, maxLen := sv.validator.SubjectNameMinLength(), sv.validator.SubjectNameMaxLength()
	if !sv.validator.IsValidStringLength(trimmed, minLen, maxLen) {
		ve.AddInvalidLengthError("name", trimmed, minLen, maxLen)
	}
	if !sv.validator.IsValidSubjectName(trimmed) {
		ve.AddInvalidCharacterError("name", trimmed)
	}

	if err := ve.result(); err != nil {
		return "", err
	}
	return trimmed, nil
}

// ValidateWeeklyGoal checks a numeric goal
func (sv *SubjectValidator) ValidateWeeklyGoal(goal float64) error {
	ve := NewValidationError()
	if !sv.validator.IsValidWeeklyGoal(goal) {
		if goal < 0 {
			ve.AddError("weekly_goal", ErrorTypeInvalidValue, "Enter a valid goal, 0 or greater", goal)
		} else {
			ve.AddInvalidRangeError("weekly_goal", goal, fmt.Sprintf("must be at most %g hours", sv.validator.MaxWeeklyGoal()))
		}
	}
	return ve.result()
}

// ValidateGoalPreset accepts only the offered quick-pick weekly goals
func (sv *SubjectValidator) ValidateGoalPreset(hours float64, presets []float64) error {
	for _, p := range presets {
		if p == hours {
			return nil
		}
	}
	ve := NewValidationError()
	ve.AddInvalidValueError("goal_preset", hours, fmt.Sprintf("must be one of %v", presets))
	return ve.result()
}

// ValidateForCreation validates a new subject and returns the cleaned name
func (sv *SubjectValidator) ValidateForCreation(name string, goal float64) (string, error) {
	ve := NewValidationError()
	cleaned, err := sv.ValidateName(name)
	ve.merge(err)
	ve.merge(sv.ValidateWeeklyGoal(goal))
	if err := ve.result(); err != nil {
		return "", err
	}
	return cleaned, nil
}

// ValidateForUpdate validates an edit and returns the cleaned name
func (sv *SubjectValidator) ValidateForUpdate(id int64, name string, goal float64) (string, error) {
	ve := NewValidationError()
	ve.merge(sv.ValidateID(id))
	cleaned, err := sv.ValidateName(name)
	ve.merge(err)
	ve.merge(sv.ValidateWeeklyGoal(goal))
	if err := ve.result(); err != nil {
		return "", err
	}
	return cleaned, nil
}

// ValidateID validates a subject ID
func (sv *SubjectValidator) ValidateID(id int64) error {
	ve := NewValidationError()
	if !sv.validator.IsValidID(id) {
		ve.AddInvalidValueError("subject_id", id, "must be a positive integer")
	}
	return ve.result()
}
