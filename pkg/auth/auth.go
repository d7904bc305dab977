package auth

import (
	"context"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// JWTKey signs and verifies access tokens. Override via JWT_KEY.
var JWTKey = []byte("bibliodesk-dev-key")

func init() {
	if key := os.Getenv("JWT_KEY"); key != "" {
		JWTKey = []byte(key)
	}
}

type Claims struct {
	Profile struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"profile"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller as seen by handlers and the
// access policy. A zero Identity means an anonymous request.
type Identity struct {
	Email string
	Role  string
}

func (i Identity) Anonymous() bool { return i.Email == "" }

// NewToken issues a signed HS256 token carrying the user profile.
func NewToken(email, role string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	claims.Profile.Email = email
	claims.Profile.Role = role

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(JWTKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

type ctxKey int

const identityKey ctxKey = iota + 1

func SetAuthContext(ctx context.Context, email, role string) context.Context {
	return context.WithValue(ctx, identityKey, Identity{Email: email, Role: role})
}

// FromContext returns the caller identity, or a zero Identity for
// anonymous requests.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey).(Identity)
	return id
}
