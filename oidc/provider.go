package oidc

import "fmt"

// ProviderConfig describes one configured identity provider. The list is
// consumed as-is from the host application's configuration surface.
type ProviderConfig struct {
	Name                  string            `json:"provider"`
	Enabled               bool              `json:"enabled"`
	AuthorizeURL          string            `json:"authorize_url"`
	ClientID              string            `json:"client_id"`
	RedirectURI           string            `json:"redirect_uri"`
	ResponseType          string            `json:"response_type"`
	Scopes                []string          `json:"scopes"`
	UsePKCE               bool              `json:"use_pkce"`
	LogoutURL             string            `json:"logout_url,omitempty"`
	PostLogoutRedirectURI string            `json:"post_logout_redirect_uri,omitempty"`
	AdditionalParams      map[string]string `json:"additional_params,omitempty"`
	// JWKSURL enables id_token signature and nonce verification when set.
	JWKSURL string `json:"jwks_url,omitempty"`
}

// Registry resolves provider configurations by name.
type Registry struct {
	providers map[string]ProviderConfig
}

// NewRegistry creates a registry from the configured provider list.
func NewRegistry(configs ...ProviderConfig) *Registry {
	r := &Registry{providers: make(map[string]ProviderConfig, len(configs))}
	for _, cfg := range configs {
		if cfg.Name == "" {
			continue
		}
		r.providers[cfg.Name] = cfg
	}
	return r
}

// Enabled returns the provider configuration, failing for unknown or
// disabled providers.
func (r *Registry) Enabled(name string) (ProviderConfig, error) {
	cfg, ok := r.providers[name]
	if !ok || !cfg.Enabled {
		return ProviderConfig{}, fmt.Errorf("%w: %s", ErrProviderNotConfigured, name)
	}
	return cfg, nil
}

// Names lists the registered providers, enabled or not.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
