package validation

import (
	"testing"

	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signUp struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func TestStructReportsFieldsByJSONName(t *testing.T) {
	err := Struct(signUp{Email: "nope", Password: "secret1", ConfirmPassword: "secret2"})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{
		"email":           "must be a valid email",
		"confirmPassword": "must match password",
	}, typed.Details())
}

func TestStructAcceptsValidInput(t *testing.T) {
	assert.NoError(t, Struct(signUp{Email: "an@shop.vn", Password: "secret1", ConfirmPassword: "secret1"}))
}

func TestVar(t *testing.T) {
	err := Var("email", "", "required,email")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, map[string]string{"email": "is required"}, typed.Details())
	assert.NoError(t, Var("email", "an@shop.vn", "required,email"))
}
