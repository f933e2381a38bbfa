package validation

import "fmt"

// LogValidator provides validation for LogEntry-related operations
type LogValidator struct {
	validator *Validator
}

// NewLogValidator creates a new log validator
func NewLogValidator(v *Validator) *LogValidator {
	if v == nil {
		v = NewValidator()
	}
	return &LogValidator{validator: v}
}

// ValidateMinutes checks a duration in minutes
func (lv *LogValidator) ValidateMinutes(minutes int) error {
	ve := NewValidationError()
	if minutes <= 0 {
		ve.AddError("duration_minutes", ErrorTypeInvalidRange, "Hours must be greater than 0", minutes)
	} else if !lv.validator.IsValidMinutes(minutes) {
		ve.AddInvalidRangeError("duration_minutes", minutes, fmt.Sprintf("must be at most %d minutes", lv.validator.MaxLogMinutes()))
	}
	return ve.result()
}

// ValidateForCreation validates a new log entry
func (lv *LogValidator) ValidateForCreation(subjectID int64, minutes int) error {
	ve := NewValidationError()
	if !lv.validator.IsValidID(subjectID) {
		ve.AddError("subject_id", ErrorTypeRequired, "Choose a subject", subjectID)
	}
	ve.merge(lv.ValidateMinutes(minutes))
	return ve.result()
}

// ValidateForUpdate validates a duration edit
func (lv *LogValidator) ValidateForUpdate(id int64, minutes int) error {
	ve := NewValidationError()
	ve.merge(lv.ValidateID(id))
	ve.merge(lv.ValidateMinutes(minutes))
	return ve.result()
}

// ValidateID validates a log ID
func (lv *LogValidator) ValidateID(id int64) error {
	ve := NewValidationError()
	if !lv.validator.IsValidID(id) {
		ve.AddInvalidValueError("log_id", id, "must be a positive integer")
	}
	return ve.result()
}

// ValidatePreset accepts only the offered quick-pick durations
func (lv *LogValidator) ValidatePreset(minutes int, presets []int) error {
	for _, p := range presets {
		if p == minutes {
			return nil
		}
	}
	ve := NewValidationError()
	ve.AddInvalidValueError("preset", minutes, fmt.Sprintf("must be one of %v", presets))
	return ve.result()
}
