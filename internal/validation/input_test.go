package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHoursToMinutes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
		errType  ValidationErrorType
	}{
		{"decimal point", "1.5", 90, ""},
		{"decimal comma", "1,5", 90, ""},
		{"surrounding spaces", "  2 ", 120, ""},
		{"leading dot", ".25", 15, ""},
		{"trailing dot", "3.", 180, ""},
		{"rounds to nearest minute", "0.0125", 1, ""},
		{"explicit plus", "+1", 60, ""},
		{"zero", "0", 0, ErrorTypeInvalidRange},
		{"negative", "-2", 0, ErrorTypeInvalidRange},
		{"empty", "", 0, ErrorTypeRequired},
		{"whitespace only", "   ", 0, ErrorTypeRequired},
		{"letters", "abc", 0, ErrorTypeInvalidFormat},
		{"trailing unit", "1.5h", 0, ErrorTypeInvalidFormat},
		{"exponent", "1e2", 6000, ""},
		{"negative exponent", "15e-1", 90, ""},
		{"comma with exponent", "1,5E1", 900, ""},
		{"exponent overflows", "1e400", 0, ErrorTypeInvalidFormat},
		{"huge duration", "1e12", 0, ErrorTypeInvalidRange},
		{"bare exponent", "e2", 0, ErrorTypeInvalidFormat},
		{"infinity", "Inf", 0, ErrorTypeInvalidFormat},
		{"two commas", "1,5,0", 0, ErrorTypeInvalidFormat},
		{"rounds to zero", "0.001", 0, ErrorTypeInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minutes, err := ParseHoursToMinutes(tt.input)
			if tt.errType == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, minutes)
				return
			}
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Len(t, ve.Errors, 1)
			assert.Equal(t, "hours", ve.Errors[0].Field)
			assert.Equal(t, tt.errType, ve.Errors[0].Type)
			assert.Equal(t, 0, minutes)
		})
	}
}

func TestParseWeeklyGoal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		wantErr  bool
	}{
		{"empty means no goal", "", 0, false},
		{"zero", "0", 0, false},
		{"integer", "5", 5, false},
		{"comma decimal", "2,5", 2.5, false},
		{"exponent", "1e1", 10, false},
		{"negative", "-1", 0, true},
		{"garbage", "lots", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal, err := ParseWeeklyGoal(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "Enter a valid goal, 0 or greater", err.(*ValidationError).GetUserFriendlyMessage())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, goal)
		})
	}
}
