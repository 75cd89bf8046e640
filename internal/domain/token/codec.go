// Package token decodes bearer tokens into display claims. The token is
// treated as an opaque credential: the payload is parsed without any
// signature verification and is never trusted for server-side decisions.
package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"comicstore-go/internal/platform/errors"
)

// ErrMalformedToken reports a token whose payload cannot be decoded into
// claims. Callers treat it as "no identity", never as a fatal condition.
var ErrMalformedToken = errors.New(errors.KindToken, "token.decode", "malformed token")

// Claims are the identity attributes embedded in a token payload.
type Claims struct {
	Subject   string
	Role      string
	IssuedAt  int64
	ExpiresAt int64
}

// Decode splits the token, base64-decodes its payload segment and extracts
// claims. Pure and synchronous; every failure mode maps to ErrMalformedToken.
func Decode(raw string) (Claims, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject claim", ErrMalformedToken)
	}

	out := Claims{
		Subject: subject,
		Role:    roleClaim(claims),
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Unix()
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Unix()
	}
	return out, nil
}

// roleClaim reads the role attribute, accepting the upstream auth service's
// legacy "rol" key alongside the conventional "role".
func roleClaim(claims jwt.MapClaims) string {
	if role, ok := claims["role"].(string); ok {
		return role
	}
	if role, ok := claims["rol"].(string); ok {
		return role
	}
	return ""
}
