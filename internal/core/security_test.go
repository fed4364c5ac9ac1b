// AngelaMos | 2026
// security_test.go

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := VerifyPassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("battery staple", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordTimingSafeWithoutHash(t *testing.T) {
	ok, err := VerifyPasswordTimingSafe("anything", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRefreshTokenHash(t *testing.T) {
	token, err := GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	assert.Equal(t, HashToken(token), HashToken(token))
	assert.NotEqual(t, token, HashToken(token))
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Backend Systems":        "backend-systems",
		"  Rate Limiting 101!  ": "rate-limiting-101",
		"Go / Redis -- Sessions": "go-redis-sessions",
		"***":                    "",
		"already-a-slug":         "already-a-slug",
	}

	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
