package config

import (
	"context"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

type llmEnv struct {
	APIKey  string `env:"OpenAI__ApiKey"`
	Model   string `env:"OpenAI__Model"`
	BaseURL string `env:"OpenAI__BaseUrl"`
}

type oauthEnv struct {
	ClientID     string `env:"GoogleOAuth__ClientId"`
	ClientSecret string `env:"GoogleOAuth__ClientSecret"`
	RedirectURI  string `env:"GoogleOAuth__RedirectUri"`
}

// casingLookuper tries the key as written and then its upper-case form, so
// both OpenAI__ApiKey and OPENAI__APIKEY are honored.
type casingLookuper struct {
	next envconfig.Lookuper
}

func (c casingLookuper) Lookup(key string) (string, bool) {
	if v, ok := c.next.Lookup(key); ok && v != "" {
		return v, true
	}
	if upper := strings.ToUpper(key); upper != key {
		return c.next.Lookup(upper)
	}
	return "", false
}

func processEnv(ctx context.Context, l envconfig.Lookuper, target any) error {
	if l == nil {
		l = envconfig.OsLookuper()
	}
	return envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   target,
		Lookuper: casingLookuper{next: l},
	})
}

func (l *Loader) llmFromEnv(ctx context.Context) LLMSettings {
	var e llmEnv
	if err := processEnv(ctx, l.Lookuper, &e); err != nil {
		l.warn(ctx, "reading OpenAI environment variables", err)
		return LLMSettings{}
	}
	return LLMSettings(e)
}

func (l *Loader) oauthFromEnv(ctx context.Context) OAuthSettings {
	var e oauthEnv
	if err := processEnv(ctx, l.Lookuper, &e); err != nil {
		l.warn(ctx, "reading GoogleOAuth environment variables", err)
		return OAuthSettings{}
	}
	return OAuthSettings{
		ClientID:     e.ClientID,
		ClientSecret: e.ClientSecret,
		RedirectURI:  e.RedirectURI,
	}
}
