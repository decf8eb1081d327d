// Package identity derives best-effort caller information from HTTP requests
// for activity logging. JWT claims are read WITHOUT signature verification:
// nothing here is an authorization decision. Verified-token checks live in the
// server middleware.
package identity

import (
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	UnknownEmail = "unknown-email"
	UnknownRole  = "unknown-role"
)

// RequestIdentity is a snapshot of who issued a request, as far as headers
// and an unverified token payload can tell.
type RequestIdentity struct {
	IPAddress string
	UserAgent string
	Email     string
	Role      string
}

// FromRequest extracts the caller identity. It never fails: missing or
// malformed inputs degrade to defaults.
func FromRequest(r *http.Request) RequestIdentity {
	id := RequestIdentity{
		IPAddress: clientIP(r),
		UserAgent: r.Header.Get("User-Agent"),
		Email:     UnknownEmail,
		Role:      UnknownRole,
	}

	token := bearerToken(r)
	if token == "" {
		return id
	}

	email, role := unverifiedClaims(token)
	if email != "" {
		id.Email = email
	}
	if role != "" {
		id.Role = role
	}
	return id
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	scheme, token, found := strings.Cut(auth, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// unverifiedClaims decodes the token payload without checking its signature
// and pulls the email and Cognito group claims. The group list collapses to
// the first recognized role.
func unverifiedClaims(tokenString string) (email, role string) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return "", ""
	}

	email, _ = claims["email"].(string)

	groups, ok := claims["cognito:groups"].([]interface{})
	if !ok {
		return email, ""
	}
	for _, g := range groups {
		name, ok := g.(string)
		if !ok {
			continue
		}
		if name == "admin" || name == "user" {
			return email, name
		}
	}
	return email, ""
}
