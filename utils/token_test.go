package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_RoundTrip(t *testing.T) {
	tok, err := GenerateToken("s3cret", "ci-bot", time.Hour)
	require.NoError(t, err)

	sub, err := ValidateToken("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, "ci-bot", sub)
}

func TestToken_Rejects(t *testing.T) {
	tok, err := GenerateToken("s3cret", "ci-bot", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken("other", tok)
	assert.Error(t, err, "wrong secret")

	expired, err := GenerateToken("s3cret", "ci-bot", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken("s3cret", expired)
	assert.Error(t, err, "expired")

	_, err = ValidateToken("s3cret", "not.a.token")
	assert.Error(t, err)
}

func TestGenerateToken_RequiresSecret(t *testing.T) {
	_, err := GenerateToken("", "x", time.Hour)
	assert.Error(t, err)
}
