package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateHashRoundTrip(t *testing.T) {
	hash, err := GenerateHash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	creds := NewCredentials(hash)
	assert.True(t, creds.Verify("correct horse battery staple"))
	assert.False(t, creds.Verify("correct horse battery stapl"))
	assert.False(t, creds.Verify(""))
}

func TestGenerateHashUsesFreshSalt(t *testing.T) {
	first, err := GenerateHash("same password")
	require.NoError(t, err)
	second, err := GenerateHash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// Both hashes still verify
	assert.True(t, NewCredentials(first).Verify("same password"))
	assert.True(t, NewCredentials(second).Verify("same password"))
}

func TestGenerateHashEmptyPassword(t *testing.T) {
	_, err := GenerateHash("")
	assert.Error(t, err)
}

func TestVerifyFailsClosed(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"no credential configured", ""},
		{"garbage", "not-a-hash"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{"truncated", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA"},
		{"bad base64 salt", "$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := NewCredentials(tt.hash)
			assert.False(t, creds.Verify("any password"))
		})
	}
}

func TestConfigured(t *testing.T) {
	assert.False(t, NewCredentials("").Configured())
	assert.True(t, NewCredentials("$argon2id$...").Configured())
}
