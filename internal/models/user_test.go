package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Password(t *testing.T) {
	var u User
	assert.False(t, u.CheckPassword(""), "empty hash never matches")

	require.NoError(t, u.SetPassword("s3cret"))
	assert.NotEqual(t, "s3cret", u.Password)
	assert.True(t, u.CheckPassword("s3cret"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Ali Hassan", User{Username: "ali@example.com", FullName: "Ali Hassan"}.DisplayName())
	assert.Equal(t, "ali@example.com", User{Username: "ali@example.com"}.DisplayName())
}
