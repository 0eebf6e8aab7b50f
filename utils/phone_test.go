package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"national format", "(415) 555-2671", "+14155552671"},
		{"dashed", "415-555-2671", "+14155552671"},
		{"already e164", "+14155552671", "+14155552671"},
		{"international", "+44 20 7183 8750", "+442071838750"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePhoneInvalid(t *testing.T) {
	_, err := NormalizePhone("not a number")
	assert.Error(t, err)

	_, err = NormalizePhone("123")
	assert.Error(t, err)
}

func TestIsSMSCapable(t *testing.T) {
	// US numbers are fixed-line-or-mobile, so they pass.
	assert.True(t, IsSMSCapable("+14155552671"))
	// London geographic numbers are fixed line.
	assert.False(t, IsSMSCapable("+442071838750"))
	assert.False(t, IsSMSCapable("garbage"))
}
