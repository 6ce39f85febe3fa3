// Package models defines data structures and domain types.
package models

import (
	"encoding/json"
	"strings"
)

// AppKind identifies which assistant product a provider's configuration
// targets. Unknown values are treated as claude-like for credential
// extraction and as "no filter" for model filtering.
type AppKind string

const (
	// AppClaude is a Claude-compatible provider configuration.
	AppClaude AppKind = "claude"
	// AppCodex is a Codex/OpenAI-compatible provider configuration.
	AppCodex AppKind = "codex"
	// AppGemini is a Gemini-compatible provider configuration.
	AppGemini AppKind = "gemini"
)

// String returns the string representation of the AppKind.
func (k AppKind) String() string {
	return string(k)
}

// Provider represents one configured backend entry from the switcher's
// providers file. SettingsConfig is an opaque, provider-defined blob; it
// is read-only input and may itself be a JSON-encoded string.
type Provider struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	AppKind        AppKind         `json:"appType,omitempty"`
	WebsiteURL     string          `json:"websiteUrl,omitempty"`
	SettingsConfig json.RawMessage `json:"settingsConfig,omitempty"`
}

// providerSettings is the subset of the settings blob this application
// reads. Both maps hold arbitrary JSON values; only string values count.
type providerSettings struct {
	Env  map[string]json.RawMessage `json:"env"`
	Auth map[string]json.RawMessage `json:"auth"`
}

// ExtractAPIKey resolves the credential string for a provider and app
// kind. It returns "" when the provider is absent, the settings payload
// is missing or malformed, or the relevant field is not a string. It
// never returns an error: an unparseable blob means "no credential".
func ExtractAPIKey(p *Provider, kind AppKind) string {
	if p == nil || len(p.SettingsConfig) == 0 {
		return ""
	}

	settings, ok := decodeSettings(p.SettingsConfig)
	if !ok {
		return ""
	}

	switch kind {
	case AppGemini:
		return stringValue(settings.Env, "GEMINI_API_KEY")

	case AppCodex:
		return stringValue(settings.Auth, "OPENAI_API_KEY")

	default:
		// Claude-like: prefer the auth token, fall back to the API key.
		if token := stringValue(settings.Env, "ANTHROPIC_AUTH_TOKEN"); token != "" {
			return token
		}
		return stringValue(settings.Env, "ANTHROPIC_API_KEY")
	}
}

// decodeSettings parses the settings blob, unwrapping one level of
// string encoding if the blob is JSON text inside a JSON string.
func decodeSettings(raw json.RawMessage) (providerSettings, bool) {
	var settings providerSettings

	payload := []byte(raw)
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, `"`) {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return settings, false
		}
		payload = []byte(encoded)
	}

	if err := json.Unmarshal(payload, &settings); err != nil {
		return settings, false
	}
	return settings, true
}

// stringValue returns the value for key if it decodes as a JSON string.
func stringValue(m map[string]json.RawMessage, key string) string {
	if m == nil {
		return ""
	}
	raw, ok := m[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
