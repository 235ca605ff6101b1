package gateway

import (
	"time"
)

// ResourceGrant is one granted resource from the gateway's catalog.
// Order within a session's catalog follows the fetch response.
type ResourceGrant struct {
	Provider string   `json:"provider"`
	Type     string   `json:"type"`
	Models   []string `json:"models"`
}

// Session is the capability grant resulting from an approved pairing.
// All fields are read-only after construction; methods are safe to call
// from concurrent workers.
type Session struct {
	AppID     string          `json:"app_id"`
	ProxyURL  string          `json:"proxy_url"`
	ExpiresAt time.Time       `json:"expires_at"`
	Resources []ResourceGrant `json:"resources"`

	signer Signer
}

// NewSession binds an approved grant to its signer. resources preserves
// the order returned by the catalog fetch.
func NewSession(appID, proxyURL string, expiresAt time.Time, signer Signer, resources []ResourceGrant) *Session {
	return &Session{
		AppID:     appID,
		ProxyURL:  proxyURL,
		ExpiresAt: expiresAt,
		Resources: resources,
		signer:    signer,
	}
}

// Valid reports whether the grant is still live. Callers must check this
// immediately before signing; a cached result can straddle the expiry
// boundary.
func (s *Session) Valid() bool {
	return s.ValidAt(time.Now())
}

func (s *Session) ValidAt(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// TimeRemaining is clamped to zero for expired sessions.
func (s *Session) TimeRemaining() time.Duration {
	remaining := time.Until(s.ExpiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ResourcesByType filters the catalog, preserving fetch order.
func (s *Session) ResourcesByType(resourceType string) []ResourceGrant {
	var out []ResourceGrant
	for _, r := range s.Resources {
		if r.Type == resourceType {
			out = append(out, r)
		}
	}
	return out
}

// FindProviderForModel returns the provider of the first grant listing
// the model, in catalog order. Empty string when no grant has it.
func (s *Session) FindProviderForModel(model string) string {
	for _, r := range s.Resources {
		for _, m := range r.Models {
			if m == model {
				return r.Provider
			}
		}
	}
	return ""
}

// Signer exposes the session's signing capability to the transport.
func (s *Session) Signer() Signer {
	return s.signer
}
