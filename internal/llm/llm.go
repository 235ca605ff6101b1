// Package llm routes chat-completion requests to a provider: through the
// Glueco gateway when an active session grants the model, or directly to
// the provider's API when a local key is configured.
package llm

import (
	"context"
	"net/http"

	apperrors "github.com/mumernisar/outsmart/internal/errors"
	"github.com/mumernisar/outsmart/internal/gateway"
)

// Request is the provider-agnostic send contract: system and user
// prompts in, response text out.
type Request struct {
	System       string
	User         string
	MaxTokens    int
	Temperature  float64
	JSONResponse bool
}

// Provider sends one chat-completion request for a model it serves.
type Provider interface {
	Name() string
	Send(ctx context.Context, model string, req Request) (string, error)
}

// SessionSource yields the current gateway session, or nil when not
// connected. Satisfied by service.SessionManager.
type SessionSource interface {
	Current() *gateway.Session
}

// Registry resolves model names to providers. Gateway-granted models win
// over direct API access, mirroring how a connected player should never
// burn a local API key.
type Registry struct {
	source SessionSource
	http   *http.Client
	direct map[string]*directProvider
	models []string
}

func NewRegistry(source SessionSource, httpClient *http.Client) *Registry {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	r := &Registry{
		source: source,
		http:   httpClient,
		direct: make(map[string]*directProvider),
	}
	for _, p := range builtinProviders(httpClient) {
		for _, model := range p.models {
			r.direct[model] = p
			r.models = append(r.models, model)
		}
	}
	return r
}

// ForModel picks the provider for a model. The session is consulted per
// call; a session expiring between calls silently falls back to direct
// access rather than erroring on the stale route.
func (r *Registry) ForModel(model string) (Provider, error) {
	if sess := r.source.Current(); sess != nil {
		if provider := sess.FindProviderForModel(model); provider != "" {
			return newGatewayProvider(gateway.NewClient(sess, r.http), provider), nil
		}
	}

	p, ok := r.direct[model]
	if !ok {
		return nil, apperrors.NotFound("Model").WithDetails(map[string]any{"model": model, "known": r.models})
	}
	if !p.configured() {
		return nil, apperrors.InvalidInput("model", p.name+" API key is not configured and the gateway does not grant "+model)
	}
	return p, nil
}

// ModelNames lists every model the registry knows how to reach right
// now: gateway grants first (catalog order), then configured direct
// models not already granted.
func (r *Registry) ModelNames() []string {
	var names []string
	seen := make(map[string]bool)

	if sess := r.source.Current(); sess != nil {
		for _, grant := range sess.ResourcesByType("llm") {
			for _, m := range grant.Models {
				if !seen[m] {
					seen[m] = true
					names = append(names, m)
				}
			}
		}
	}

	for _, m := range r.models {
		if !seen[m] && r.direct[m].configured() {
			seen[m] = true
			names = append(names, m)
		}
	}
	return names
}
