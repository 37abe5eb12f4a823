package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-fitness-coach/internal/apperr"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier("secret", "authenticated")

	token, err := v.Issue(User{ID: "user-1", Email: "sam@example.com"}, time.Hour)
	require.NoError(t, err)

	user, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, User{ID: "user-1", Email: "sam@example.com"}, user)
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier("secret", "authenticated")

	sign := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := map[string]string{
		"garbage":        "not-a-token",
		"wrong secret":   sign(jwt.SigningMethodHS256, []byte("other"), jwt.RegisteredClaims{Subject: "u", ExpiresAt: future, Audience: jwt.ClaimStrings{"authenticated"}}),
		"expired":        sign(jwt.SigningMethodHS256, []byte("secret"), jwt.RegisteredClaims{Subject: "u", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)), Audience: jwt.ClaimStrings{"authenticated"}}),
		"no expiry":      sign(jwt.SigningMethodHS256, []byte("secret"), jwt.RegisteredClaims{Subject: "u", Audience: jwt.ClaimStrings{"authenticated"}}),
		"wrong audience": sign(jwt.SigningMethodHS256, []byte("secret"), jwt.RegisteredClaims{Subject: "u", ExpiresAt: future, Audience: jwt.ClaimStrings{"anon"}}),
		"no subject":     sign(jwt.SigningMethodHS256, []byte("secret"), jwt.RegisteredClaims{ExpiresAt: future, Audience: jwt.ClaimStrings{"authenticated"}}),
		"wrong method":   sign(jwt.SigningMethodHS512, []byte("secret"), jwt.RegisteredClaims{Subject: "u", ExpiresAt: future, Audience: jwt.ClaimStrings{"authenticated"}}),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			assert.True(t, apperr.Is(err, apperr.KindAuthentication), "got %v", err)
		})
	}
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	_, err := TokenFromRequest(r)
	assert.Error(t, err)

	r.Header.Set("Authorization", "Basic abc")
	_, err = TokenFromRequest(r)
	assert.Error(t, err)

	r.Header.Set("Authorization", "bearer abc.def.ghi")
	token, err := TokenFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)
}

func TestUserContext(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithUser(context.Background(), User{ID: "u1"})
	user, ok := UserFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)
}
