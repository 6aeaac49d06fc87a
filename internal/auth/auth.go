// Package auth verifies bearer credentials and yields the scopes they grant.
package auth

import (
	"context"
	"fmt"
	"strings"
)

// Scopes required by the mutating routes.
const (
	ScopeEditWarehouses        = "edit:warehouses"
	ScopeEditItems             = "edit:items"
	ScopePostBalanceOperations = "post:balance_operations"
)

// ErrorKind classifies an authorization failure.
type ErrorKind string

const (
	KindMissingHeader     ErrorKind = "missing_header"
	KindInvalidToken      ErrorKind = "invalid_token"
	KindExpired           ErrorKind = "expired"
	KindInsufficientScope ErrorKind = "insufficient_scope"
)

// Error is returned for every authorization failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Verifier checks a raw token and returns the scopes it carries.
type Verifier interface {
	Verify(ctx context.Context, token string) (Scopes, error)
}

// Scopes is a set of granted scope strings.
type Scopes map[string]struct{}

// ParseScopes splits a space-delimited scope claim.
func ParseScopes(claim string) Scopes {
	s := Scopes{}
	for _, scope := range strings.Fields(claim) {
		s[scope] = struct{}{}
	}
	return s
}

// Has reports whether scope was granted.
func (s Scopes) Has(scope string) bool {
	_, ok := s[scope]
	return ok
}

// Require returns an insufficient_scope error unless scope was granted.
func (s Scopes) Require(scope string) error {
	if !s.Has(scope) {
		return &Error{Kind: KindInsufficientScope, Message: "missing scope " + scope}
	}
	return nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", &Error{Kind: KindMissingHeader, Message: "authorization header is expected"}
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", &Error{Kind: KindInvalidToken, Message: "authorization header must be a bearer token"}
	}
	return parts[1], nil
}

type scopesKey struct{}

// WithScopes stores verified scopes in ctx.
func WithScopes(ctx context.Context, s Scopes) context.Context {
	return context.WithValue(ctx, scopesKey{}, s)
}

// ScopesFromContext returns the scopes stored by WithScopes, or nil.
func ScopesFromContext(ctx context.Context) Scopes {
	s, _ := ctx.Value(scopesKey{}).(Scopes)
	return s
}
