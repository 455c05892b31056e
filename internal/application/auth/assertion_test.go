package authapp

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type JWTTokenAssertion struct {
	t      *testing.T
	token  *jwt.Token
	claims jwt.MapClaims
}

func NewJWTTokenAssertion(t *testing.T, token string, secretkey []byte) *JWTTokenAssertion {
	t.Helper()

	jwttoken, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return secretkey, nil
	})
	require.NoError(t, err)

	claims, ok := jwttoken.Claims.(jwt.MapClaims)
	require.True(t, ok, "jwt token claims must be type jwt.MapClaims")

	return &JWTTokenAssertion{t: t, token: jwttoken, claims: claims}
}

func (a *JWTTokenAssertion) AssertValid() *JWTTokenAssertion {
	a.t.Helper()
	assert.True(a.t, a.token.Valid, "jwt token should be valid")
	return a
}

func (a *JWTTokenAssertion) AssertClaim(name string, expected any) *JWTTokenAssertion {
	a.t.Helper()
	assert.Equal(a.t, expected, a.claims[name], "claim %s", name)
	return a
}

func (a *JWTTokenAssertion) AssertNotEmpty(name string) *JWTTokenAssertion {
	a.t.Helper()
	assert.NotEmpty(a.t, a.claims[name], "claim %s should not be empty", name)
	return a
}

func (a *JWTTokenAssertion) AssertExp(expected time.Time) *JWTTokenAssertion {
	a.t.Helper()
	exp, ok := a.claims["exp"].(float64)
	require.True(a.t, ok, "exp claim must be of type float64, got %T", a.claims["exp"])
	assert.WithinDuration(a.t, expected, time.Unix(int64(exp), 0), 2*time.Second)
	return a
}
