package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signUp struct {
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"required,oneof=patient doctor"`
	Specialty string `json:"specialty" validate:"required_if=Role doctor"`
}

func TestFormatValidationErrors_UsesJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&signUp{Email: "not-an-email", Role: "nurse"})
	require.Error(t, err)

	errs := v.FormatValidationErrors(err)
	assert.Equal(t, "email must be a valid email address", errs["email"])
	assert.Equal(t, "role must be one of: patient, doctor", errs["role"])
}

func TestFormatValidationErrors_RequiredIf(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Validate(&signUp{Email: "ana@example.com", Role: "patient"}))

	err := v.Validate(&signUp{Email: "rui@example.com", Role: "doctor"})
	require.Error(t, err)
	assert.Contains(t, v.FormatValidationErrors(err), "specialty")
}
