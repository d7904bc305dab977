package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

func TestNewToken_RoundTrip(t *testing.T) {
	t.Parallel()
	signed, expiresAt, err := NewToken("reader@mail.ru", "USER", time.Hour)
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (interface{}, error) {
		return JWTKey, nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	require.Equal(t, "reader@mail.ru", claims.Profile.Email)
	require.Equal(t, "USER", claims.Profile.Role)
}

func TestNewToken_Expired(t *testing.T) {
	t.Parallel()
	signed, _, err := NewToken("reader@mail.ru", "USER", -time.Minute)
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(signed, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return JWTKey, nil
	})
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestIdentityContext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	require.True(t, FromContext(ctx).Anonymous())

	ctx = SetAuthContext(ctx, "reader@mail.ru", "USER")
	id := FromContext(ctx)
	require.False(t, id.Anonymous())
	require.Equal(t, "reader@mail.ru", id.Email)
	require.Equal(t, "USER", id.Role)
}
