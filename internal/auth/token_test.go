package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitecrew/sitecrew/internal/auth"
	"github.com/sitecrew/sitecrew/internal/shared"
	_ "github.com/sitecrew/sitecrew/testing"
)

func TestTokenRoundTrip(t *testing.T) {
	codec := auth.NewTokenCodec("secret", time.Hour)

	signed, err := codec.Issue(42, "a@x.com", "Worker")
	require.NoError(t, err)

	claims, err := codec.Parse(signed)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "Worker", claims.Role)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestTokenExpired(t *testing.T) {
	codec := auth.NewTokenCodec("secret", -time.Minute)

	signed, err := codec.Issue(1, "a@x.com", "Worker")
	require.NoError(t, err)

	_, err = codec.Parse(signed)
	assert.True(t, errors.Is(err, shared.ErrInvalidCredentials))
}

func TestTokenWrongSecret(t *testing.T) {
	signed, err := auth.NewTokenCodec("secret-a", time.Hour).Issue(1, "a@x.com", "Worker")
	require.NoError(t, err)

	_, err = auth.NewTokenCodec("secret-b", time.Hour).Parse(signed)
	assert.True(t, errors.Is(err, shared.ErrInvalidCredentials))
}

func TestTokenGarbage(t *testing.T) {
	codec := auth.NewTokenCodec("secret", time.Hour)
	_, err := codec.Parse("not-a-token")
	assert.True(t, errors.Is(err, shared.ErrInvalidCredentials))
}
