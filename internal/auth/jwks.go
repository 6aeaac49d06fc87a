package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"golang.org/x/time/rate"
)

const (
	// minRefreshInterval limits how often an unknown kid can trigger a refetch,
	// whether or not the previous fetch succeeded.
	minRefreshInterval = 30 * time.Second
	keyRefreshInterval = time.Hour
	jwksFetchTimeout   = 5 * time.Second
)

// newJWKSKeyfunc fetches the key set at url once and returns a keyfunc that
// serves keys by kid. The set is refreshed every keyRefreshInterval until ctx
// ends, and on an unknown kid at most once per minRefreshInterval. A key server
// that is down at startup is not fatal: lookups fail until a refresh succeeds.
func newJWKSKeyfunc(ctx context.Context, url string, client *http.Client) (keyfunc.Keyfunc, error) {
	remote, err := jwkset.NewStorageFromHTTP(url, jwkset.HTTPClientStorageOptions{
		Client:                    client,
		Ctx:                       ctx,
		HTTPTimeout:               jwksFetchTimeout,
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           keyRefreshInterval,
		RefreshErrorHandler: func(ctx context.Context, err error) {
			slog.Default().WarnContext(ctx, "JWKS refresh failed", "url", url, "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("JWKS storage: %w", err)
	}

	storage, err := jwkset.NewHTTPClient(jwkset.HTTPClientOptions{
		HTTPURLs: map[string]jwkset.Storage{url: remote},
		// Callers never queue behind the limiter: when no refetch is due the
		// lookup fails at once.
		RateLimitWaitMax:  time.Second,
		RefreshUnknownKID: rate.NewLimiter(rate.Every(minRefreshInterval), 1),
	})
	if err != nil {
		return nil, fmt.Errorf("JWKS client: %w", err)
	}

	kf, err := keyfunc.New(keyfunc.Options{
		Ctx:     ctx,
		Storage: storage,
	})
	if err != nil {
		return nil, fmt.Errorf("JWKS keyfunc: %w", err)
	}
	return kf, nil
}
