package validation

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
	Confirm  string `form:"confirm" validate:"eqfield=Password"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(signup{Email: "a@example.com", Password: "secret1", Confirm: "secret1"}))

	err := Struct(signup{Email: "nope", Password: "123", Confirm: "x"})
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Error
	}
	assert.Equal(t, "email must be a valid email address", fields["email"])
	assert.Equal(t, "password must be at least 6 characters in length", fields["password"])
	assert.Contains(t, fields, "confirm")
}
