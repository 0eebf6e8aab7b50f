package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationRef(t *testing.T) {
	ref := CorrelationRef("6fa1c7e2-9b1d-4f6e-8a3b-2f0d9c7b5a41", "quote_ready")
	assert.Equal(t, "lead-6fa1c7e2-9b1d-4f6e-8a3b-2f0d9c7b5a41-quote_ready", ref)
}

func TestValidateStruct(t *testing.T) {
	type form struct {
		Email string `validate:"required,email"`
		Kind  string `validate:"required,oneof=email sms call"`
	}

	assert.NoError(t, ValidateStruct(form{Email: "a@b.co", Kind: "sms"}))

	err := ValidateStruct(form{Email: "nope", Kind: "fax"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "email must be a valid email")
	assert.Contains(t, err.Error(), "kind must be one of: email sms call")
}

func TestValidateEmailFormat(t *testing.T) {
	assert.NoError(t, ValidateEmailFormat("buyer@hospital.org"))
	assert.Error(t, ValidateEmailFormat("not-an-email"))
}
