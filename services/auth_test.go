package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("clerk2024")
	require.NoError(t, err)
	assert.NotEqual(t, "clerk2024", hash)
	assert.True(t, VerifyPassword(hash, "clerk2024"))
	assert.False(t, VerifyPassword(hash, "clerk2025"))

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthenticate(t *testing.T) {
	testDB := setupTestDB(t)
	user := createUser(t, testDB, 4711)

	t.Run("Valid credentials", func(t *testing.T) {
		got, err := Authenticate(testDB, 4711, "password1")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("Wrong password", func(t *testing.T) {
		got, err := Authenticate(testDB, 4711, "password2")
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
		assert.Nil(t, got)
	})

	t.Run("Unknown registration number gives the same error", func(t *testing.T) {
		got, err := Authenticate(testDB, 9999, "password1")
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
		assert.Nil(t, got)
	})
}
