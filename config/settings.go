package config

import "strings"

// DefaultApplicationName is reported to Google APIs when no name is configured.
const DefaultApplicationName = "EvaluateHomework"

// LLMSettings holds the completion endpoint credentials.
type LLMSettings struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OAuthSettings holds the Google OAuth client configuration.
type OAuthSettings struct {
	ClientID        string
	ClientSecret    string
	RedirectURI     string
	Scopes          []string
	ApplicationName string
}

// MergeLLM folds layers ordered from highest to lowest precedence.
// For every field the first non-empty value wins.
func MergeLLM(layers ...LLMSettings) LLMSettings {
	var out LLMSettings
	for _, l := range layers {
		out.APIKey = firstNonEmpty(out.APIKey, l.APIKey)
		out.Model = firstNonEmpty(out.Model, l.Model)
		out.BaseURL = firstNonEmpty(out.BaseURL, l.BaseURL)
	}
	return out
}

// MergeOAuth folds layers ordered from highest to lowest precedence.
// For every field the first non-empty value wins; ApplicationName falls back
// to DefaultApplicationName.
func MergeOAuth(layers ...OAuthSettings) OAuthSettings {
	var out OAuthSettings
	for _, l := range layers {
		out.ClientID = firstNonEmpty(out.ClientID, l.ClientID)
		out.ClientSecret = firstNonEmpty(out.ClientSecret, l.ClientSecret)
		out.RedirectURI = firstNonEmpty(out.RedirectURI, l.RedirectURI)
		out.ApplicationName = firstNonEmpty(out.ApplicationName, l.ApplicationName)
		if len(out.Scopes) == 0 && len(l.Scopes) > 0 {
			out.Scopes = append([]string(nil), l.Scopes...)
		}
	}
	if out.ApplicationName == "" {
		out.ApplicationName = DefaultApplicationName
	}
	return out
}

// SplitScopes splits a comma or semicolon delimited list, dropping blanks.
func SplitScopes(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	return cleanScopes(fields)
}

func cleanScopes(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
