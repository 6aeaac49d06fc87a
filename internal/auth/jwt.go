package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Config selects the verification keys and the registered claims to enforce.
// Exactly one of Secret and JWKSURL must be set.
type Config struct {
	Secret   string // HMAC secret (HS256/384/512)
	JWKSURL  string // RS256 keys from a JSON Web Key Set
	Issuer   string // enforced when non-empty
	Audience string // enforced when non-empty
	Leeway   time.Duration

	HTTPClient *http.Client // used for JWKS fetches; defaults to http.DefaultClient
}

// jwtClaims is the token payload. Issuers that grant capabilities as a
// permissions array instead of a scope string are accepted too.
type jwtClaims struct {
	Scope       string   `json:"scope"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier is a Verifier for signed JWTs.
type JWTVerifier struct {
	parser *jwt.Parser
	secret []byte
	jwks   keyfunc.Keyfunc
}

var _ Verifier = (*JWTVerifier)(nil)

// NewJWTVerifier builds a verifier from cfg. With a JWKS URL the key set is
// fetched immediately and refreshed in the background until ctx ends.
func NewJWTVerifier(ctx context.Context, cfg Config) (*JWTVerifier, error) {
	if (cfg.Secret == "") == (cfg.JWKSURL == "") {
		return nil, errors.New("auth: exactly one of secret or JWKS URL must be configured")
	}

	opts := []jwt.ParserOption{jwt.WithExpirationRequired(), jwt.WithLeeway(cfg.Leeway)}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	v := &JWTVerifier{}
	if cfg.Secret != "" {
		v.secret = []byte(cfg.Secret)
		opts = append(opts, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	} else {
		kf, err := newJWKSKeyfunc(ctx, cfg.JWKSURL, cfg.HTTPClient)
		if err != nil {
			return nil, err
		}
		v.jwks = kf
		opts = append(opts, jwt.WithValidMethods([]string{"RS256"}))
	}
	v.parser = jwt.NewParser(opts...)
	return v, nil
}

// Verify checks signature, expiry, issuer and audience and returns the granted scopes.
func (v *JWTVerifier) Verify(_ context.Context, token string) (Scopes, error) {
	claims := &jwtClaims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if v.jwks != nil {
			return v.jwks.Keyfunc(t)
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &Error{Kind: KindExpired, Message: "token expired", Err: err}
		}
		return nil, &Error{Kind: KindInvalidToken, Message: "unable to verify token", Err: err}
	}
	if !parsed.Valid {
		return nil, &Error{Kind: KindInvalidToken, Message: "token is not valid"}
	}

	scopes := ParseScopes(claims.Scope)
	for _, p := range claims.Permissions {
		scopes[p] = struct{}{}
	}
	return scopes, nil
}
