package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// PublicSettingsFile is the checked-in settings file. It carries only
	// non-secret OAuth fields.
	PublicSettingsFile = "appsettings.json"
	// MarkerFile names the secrets store used by a project directory.
	MarkerFile = "evalhw.yaml"

	secretsFile = "secrets.json"
	llmGroup    = "OpenAI"
	oauthGroup  = "GoogleOAuth"
)

// Loader resolves settings from environment variables, the developer-local
// secrets store and the public settings file, in that order of precedence.
// It never fails: unreadable sources are logged and skipped.
type Loader struct {
	// Dir holds PublicSettingsFile and MarkerFile.
	Dir string
	// SecretsRoot holds one <id>/secrets.json per secrets identifier.
	SecretsRoot string
	Lookuper    envconfig.Lookuper
}

type marker struct {
	UserSecretsID string `yaml:"user_secrets_id"`
}

// NewLoader returns a Loader bound to the working directory, the user
// configuration directory and the process environment.
func NewLoader() *Loader {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	root := ""
	if cfgDir, err := os.UserConfigDir(); err == nil {
		root = filepath.Join(cfgDir, DefaultApplicationName, "UserSecrets")
	}
	return &Loader{Dir: dir, SecretsRoot: root, Lookuper: envconfig.OsLookuper()}
}

// LoadLLMSettings resolves the completion endpoint settings.
func (l *Loader) LoadLLMSettings(ctx context.Context) LLMSettings {
	secrets := l.secrets(ctx)
	return MergeLLM(
		l.llmFromEnv(ctx),
		LLMSettings{
			APIKey:  secrets.str(llmGroup, "ApiKey"),
			Model:   secrets.str(llmGroup, "Model"),
			BaseURL: secrets.str(llmGroup, "BaseUrl"),
		},
	)
}

// LoadOAuthSettings resolves the Google OAuth client settings.
func (l *Loader) LoadOAuthSettings(ctx context.Context) OAuthSettings {
	secrets := l.secrets(ctx)
	public := l.public(ctx)
	return MergeOAuth(
		l.oauthFromEnv(ctx),
		OAuthSettings{
			ClientID:     secrets.str(oauthGroup, "ClientId"),
			ClientSecret: secrets.str(oauthGroup, "ClientSecret"),
			RedirectURI:  secrets.str(oauthGroup, "RedirectUri"),
			Scopes:       secrets.scopes(oauthGroup, "Scopes"),
		},
		// The public file never contributes ClientSecret.
		OAuthSettings{
			ClientID:        public.str(oauthGroup, "ClientId"),
			RedirectURI:     public.str(oauthGroup, "RedirectUri"),
			Scopes:          public.scopes(oauthGroup, "Scopes"),
			ApplicationName: public.str(oauthGroup, "ApplicationName"),
		},
	)
}

// SecretsPath returns the secrets store location named by the marker file,
// or "" when the project has no marker.
func (l *Loader) SecretsPath() (string, error) {
	data, err := os.ReadFile(filepath.Join(l.Dir, MarkerFile))
	if err != nil {
		return "", err
	}
	var m marker
	if err := yaml.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("parsing %s: %w", MarkerFile, err)
	}
	id := strings.TrimSpace(m.UserSecretsID)
	if id == "" {
		return "", fmt.Errorf("%s: user_secrets_id is empty", MarkerFile)
	}
	if l.SecretsRoot == "" {
		return "", fmt.Errorf("no user configuration directory for secrets %q", id)
	}
	return filepath.Join(l.SecretsRoot, id, secretsFile), nil
}

func (l *Loader) secrets(ctx context.Context) document {
	path, err := l.SecretsPath()
	if os.IsNotExist(err) {
		clog.FromContext(ctx).With("marker", MarkerFile).Debug("No secrets marker, skipping user secrets")
		return document{}
	}
	if err != nil {
		l.warn(ctx, "locating user secrets", err)
		return document{}
	}
	doc, err := readDocument(path)
	if err != nil {
		l.warn(ctx, "reading user secrets", err)
		return document{}
	}
	return doc
}

func (l *Loader) public(ctx context.Context) document {
	doc, err := readDocument(filepath.Join(l.Dir, PublicSettingsFile))
	if err != nil {
		l.warn(ctx, "reading "+PublicSettingsFile, err)
		return document{}
	}
	return doc
}

func (l *Loader) warn(ctx context.Context, what string, err error) {
	clog.WarnContextf(ctx, "Warning: failed %s: %v", what, err)
}
