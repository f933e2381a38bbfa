package validation

import (
	"fmt"
	"strings"
	"testing"

	"clockedin/internal/config"
	"clockedin/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorLimits(t *testing.T) {
	defaults := NewValidator()
	assert.Equal(t, 1, defaults.SubjectNameMinLength())
	assert.Equal(t, 100, defaults.SubjectNameMaxLength())
	assert.Equal(t, 1440, defaults.MaxLogMinutes())
	assert.Equal(t, 168.0, defaults.MaxWeeklyGoal())

	cfg := config.NewConfig()
	cfg.Validation.SubjectNameMaxLength = 10
	cfg.Validation.MaxLogMinutes = 60
	cfg.Validation.MaxWeeklyGoal = 20
	custom := NewValidatorWithConfig(cfg)

	assert.True(t, custom.IsValidMinutes(60))
	assert.False(t, custom.IsValidMinutes(61))
	assert.False(t, custom.IsValidMinutes(0))
	assert.True(t, custom.IsValidWeeklyGoal(20))
	assert.False(t, custom.IsValidWeeklyGoal(20.5))
	assert.True(t, custom.IsValidStringLength("Ökonomie", 1, 10), "length counts characters, not bytes")
	assert.False(t, custom.IsValidSubjectName("tab\there"))
}

func TestSubjectValidator(t *testing.T) {
	sv := NewSubjectValidator(nil)

	tests := []struct {
		name     string
		id       int64
		input    string
		goal     float64
		expected string
		fields   []string
	}{
		{"valid", 1, "  Linear Algebra ", 4, "Linear Algebra", nil},
		{"empty name", 1, "   ", 4, "", []string{"name"}},
		{"too long", 1, strings.Repeat("x", 101), 0, "", []string{"name"}},
		{"control characters", 1, "a\nb", 0, "", []string{"name"}},
		{"negative goal", 1, "Math", -1, "", []string{"weekly_goal"}},
		{"goal above maximum", 1, "Math", 200, "", []string{"weekly_goal"}},
		{"bad id and name", 0, "", 1, "", []string{"subject_id", "name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned, err := sv.ValidateForUpdate(tt.id, tt.input, tt.goal)
			if tt.fields == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, cleaned)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			var fields []string
			for _, fe := range ve.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}

	name, err := sv.ValidateForCreation(" Chem ", 0)
	require.NoError(t, err)
	assert.Equal(t, "Chem", name)

	_, err = sv.ValidateName("")
	assert.Equal(t, "Name is required", err.(*ValidationError).GetUserFriendlyMessage())
}

func TestLogValidator(t *testing.T) {
	lv := NewLogValidator(nil)

	assert.NoError(t, lv.ValidateForCreation(3, 90))
	assert.Error(t, lv.ValidateForCreation(0, 90))
	assert.Error(t, lv.ValidateForCreation(3, 0))
	assert.Error(t, lv.ValidateForCreation(3, 1441))

	assert.NoError(t, lv.ValidateForUpdate(5, 45))
	err := lv.ValidateForUpdate(-1, -5)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 2)

	assert.NoError(t, lv.ValidatePreset(45, []int{30, 45}))
	assert.Error(t, lv.ValidatePreset(50, []int{30, 45}))
}

func TestValidationError(t *testing.T) {
	ve := NewValidationError()
	assert.False(t, ve.HasErrors())
	assert.NoError(t, ve.result())
	assert.Equal(t, "validation error", ve.Error())
	assert.Equal(t, "Input validation failed", ve.GetUserFriendlyMessage())

	ve.AddError("name", ErrorTypeRequired, "Name is required", "")
	assert.Equal(t, "validation error for field 'name': Name is required", ve.Error())

	ve.AddInvalidLengthError("name", "x", 2, 5)
	ve.AddInvalidValueError("goal", -1, "negative")
	assert.Len(t, ve.GetFieldErrors("name"), 2)
	assert.Contains(t, ve.Error(), "multiple validation errors")
	assert.Contains(t, ve.GetUserFriendlyMessage(), "- name must be between 2 and 5 characters long")

	wrapped := fmt.Errorf("create subject: %w", ve)
	assert.True(t, IsValidationError(wrapped))
	assert.False(t, IsValidationError(fmt.Errorf("plain")))

	appErr := ve.ToAppError()
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
	assert.Equal(t, ve.GetUserFriendlyMessage(), errors.GetUserMessage(appErr))
	kind, ok := appErr.GetContext("goal")
	assert.True(t, ok)
	assert.Equal(t, string(ErrorTypeInvalidValue), kind)
}
