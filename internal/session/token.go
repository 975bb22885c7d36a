package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expirySkew keeps a token that is about to expire from being sent on a
// request that will outlive it.
const expirySkew = 30 * time.Second

// tokenExpired inspects the access token's exp claim without verifying the
// signature: the backend owns the signing secret, this client only wants to
// know whether a refresh is worth attempting before bothering the profile
// endpoint. Tokens that are not parseable JWTs are treated as live and left
// for the backend to judge.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now.Add(expirySkew))
}
