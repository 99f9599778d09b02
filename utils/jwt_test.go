package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/websense/RPL/config"
)

func TestJWTRoundTrip(t *testing.T) {
	config.LoadConfig()

	token, err := GenerateJWT("CITS1401", "CITS1401")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "CITS1401", claims.Username)
	assert.Equal(t, "CITS1401", claims.ViewUnitCode)
}

func TestJWTAdminHasEmptyScope(t *testing.T) {
	config.LoadConfig()

	token, err := GenerateJWT("studentservices", "")
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "studentservices", claims.Username)
	assert.Empty(t, claims.ViewUnitCode)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	config.LoadConfig()

	_, err := ValidateJWT("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckPasswordHash("hunter2", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
