package gdocs

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"

	"evaluate_homework/config"

	"github.com/chainguard-dev/clog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
)

// DefaultScopes are requested when the settings carry none.
var DefaultScopes = []string{drive.DriveReadonlyScope, docs.DocumentsReadonlyScope}

type authOptions struct {
	tokenPath string
	receiver  CodeReceiver
	endpoint  oauth2.Endpoint
}

// AuthOption customizes Authorize.
type AuthOption func(*authOptions)

// WithTokenCache stores and reuses tokens at path. An empty path disables caching.
func WithTokenCache(path string) AuthOption {
	return func(o *authOptions) { o.tokenPath = path }
}

// WithCodeReceiver replaces the receiver chosen from the redirect URI.
func WithCodeReceiver(r CodeReceiver) AuthOption {
	return func(o *authOptions) { o.receiver = r }
}

// WithEndpoint overrides the Google OAuth endpoint.
func WithEndpoint(e oauth2.Endpoint) AuthOption {
	return func(o *authOptions) { o.endpoint = e }
}

// DefaultTokenPath is the per-user token cache location.
func DefaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, config.DefaultApplicationName, "token.json")
}

// Authorize runs the three-legged OAuth flow, or reuses a cached token for
// the same client and scopes, and returns an authorized HTTP client.
// Every failure wraps ErrAuth; nothing is retried.
func Authorize(ctx context.Context, settings config.OAuthSettings, opts ...AuthOption) (*http.Client, error) {
	o := authOptions{tokenPath: DefaultTokenPath(), endpoint: google.Endpoint}
	for _, opt := range opts {
		opt(&o)
	}
	if settings.ClientID == "" || settings.ClientSecret == "" {
		return nil, fmt.Errorf("%w: %w", ErrAuth, ErrMissingClientSecret)
	}
	scopes := settings.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	cfg := &oauth2.Config{
		ClientID:     settings.ClientID,
		ClientSecret: settings.ClientSecret,
		RedirectURL:  settings.RedirectURI,
		Scopes:       scopes,
		Endpoint:     o.endpoint,
	}
	cache := tokenCache{path: o.tokenPath, clientID: cfg.ClientID, scopes: scopes}

	tok, err := cache.load()
	if err != nil {
		clog.WarnContextf(ctx, "Ignoring cached token: %v", err)
	}
	if tok == nil {
		if tok, err = exchange(ctx, cfg, o.receiver); err != nil {
			return nil, err
		}
		if err := cache.save(tok); err != nil {
			clog.WarnContextf(ctx, "Could not cache token: %v", err)
		}
	} else {
		clog.FromContext(ctx).With("path", cache.path).Debug("Using cached Google token")
	}

	ts := oauth2.ReuseTokenSource(tok, &savingTokenSource{
		ctx:   ctx,
		base:  cfg.TokenSource(ctx, tok),
		cache: cache,
		last:  tok.AccessToken,
	})
	return oauth2.NewClient(ctx, ts), nil
}

func exchange(ctx context.Context, cfg *oauth2.Config, receiver CodeReceiver) (*oauth2.Token, error) {
	if receiver == nil {
		receiver = receiverFor(cfg.RedirectURL)
	}
	redirect, err := receiver.Start(cfg.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("%w: starting code receiver: %w", ErrAuth, err)
	}
	defer receiver.Close()
	cfg.RedirectURL = redirect

	state, err := randomState()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}
	verifier := oauth2.GenerateVerifier()
	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))

	code, err := receiver.Wait(ctx, authURL, state)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}
	tok, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("%w: exchanging authorization code: %w", ErrAuth, err)
	}
	return tok, nil
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// savingTokenSource persists refreshed tokens.
type savingTokenSource struct {
	ctx   context.Context
	base  oauth2.TokenSource
	cache tokenCache
	last  string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := s.cache.save(tok); err != nil {
			clog.WarnContextf(s.ctx, "Could not cache refreshed token: %v", err)
		}
	}
	return tok, nil
}

// cachedToken is the on-disk token format. A token is only reused for the
// client and scopes it was issued for.
type cachedToken struct {
	ClientID string        `json:"client_id"`
	Scopes   []string      `json:"scopes"`
	Token    *oauth2.Token `json:"token"`
}

type tokenCache struct {
	path     string
	clientID string
	scopes   []string
}

func (c tokenCache) load() (*oauth2.Token, error) {
	if c.path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ct cachedToken
	if err := json.Unmarshal(data, &ct); err != nil {
		return nil, fmt.Errorf("%s: %w", c.path, err)
	}
	if ct.Token == nil || ct.ClientID != c.clientID || !slices.Equal(ct.Scopes, c.scopes) {
		return nil, nil
	}
	if !ct.Token.Valid() && ct.Token.RefreshToken == "" {
		return nil, nil
	}
	return ct.Token, nil
}

func (c tokenCache) save(tok *oauth2.Token) error {
	if c.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(cachedToken{ClientID: c.clientID, Scopes: c.scopes, Token: tok}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o600)
}
