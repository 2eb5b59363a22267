package techcv

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenUsable reports whether a stored credential is worth attaching to a
// request. JWTs with an exp claim in the past are skipped; opaque tokens
// and JWTs without exp pass through, the backend has the final say.
func tokenUsable(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.After(time.Now())
}
