package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claimsToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return signed
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{
			name:  "future expiry is live",
			token: claimsToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}),
			want:  false,
		},
		{
			name:  "past expiry is expired",
			token: claimsToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))}),
			want:  true,
		},
		{
			name:  "expiry inside the skew window counts as expired",
			token: claimsToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Second))}),
			want:  true,
		},
		{
			name:  "no exp claim is live",
			token: claimsToken(t, jwt.RegisteredClaims{Subject: "alice"}),
			want:  false,
		},
		{
			name:  "opaque token is live",
			token: "not-a-jwt-at-all",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenExpired(tt.token, now))
		})
	}
}
