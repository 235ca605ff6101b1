package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mumernisar/outsmart/internal/gateway"
)

// SessionStatus is the read-only snapshot the presentation layer renders.
type SessionStatus struct {
	Connected     bool      `json:"connected"`
	ProxyURL      string    `json:"proxy_url,omitempty"`
	ExpiresAt     time.Time `json:"expires_at,omitzero"`
	TimeRemaining string    `json:"time_remaining,omitempty"`
	Providers     []string  `json:"providers,omitempty"`
}

// SessionManager owns the lifecycle of the single active gateway
// session: install on approved callback, invalidate on disconnect, lazy
// drop on expiry. Readers get an immutable *gateway.Session; the manager
// only ever swaps the pointer.
type SessionManager struct {
	mu      sync.RWMutex
	current *gateway.Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{}
}

// Current returns the active session, or nil when disconnected or
// expired. An expired session is dropped here rather than by a timer, so
// expiry is observed on the next read no matter where it happens.
func (m *SessionManager) Current() *gateway.Session {
	m.mu.RLock()
	sess := m.current
	m.mu.RUnlock()

	if sess == nil {
		return nil
	}
	if !sess.Valid() {
		m.dropIfCurrent(sess)
		return nil
	}
	return sess
}

// Install replaces any previous session. In-flight requests signed with
// the old session are unaffected; they hold their own pointer.
func (m *SessionManager) Install(sess *gateway.Session) {
	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()

	log.Info().
		Str("appId", sess.AppID).
		Str("proxy", sess.ProxyURL).
		Time("expiresAt", sess.ExpiresAt).
		Int("resources", len(sess.Resources)).
		Msg("gateway session installed")
}

// Invalidate disconnects. New signed calls fail from here on; in-flight
// ones are not cancelled.
func (m *SessionManager) Invalidate() {
	m.mu.Lock()
	had := m.current != nil
	m.current = nil
	m.mu.Unlock()

	if had {
		log.Info().Msg("gateway session invalidated")
	}
}

func (m *SessionManager) dropIfCurrent(sess *gateway.Session) {
	m.mu.Lock()
	if m.current == sess {
		m.current = nil
		log.Info().Str("appId", sess.AppID).Msg("gateway session expired")
	}
	m.mu.Unlock()
}

// Status reports the connection snapshot for the UI layer.
func (m *SessionManager) Status() SessionStatus {
	sess := m.Current()
	if sess == nil {
		return SessionStatus{Connected: false}
	}

	var providers []string
	for _, grant := range sess.ResourcesByType("llm") {
		providers = append(providers, grant.Provider)
	}

	return SessionStatus{
		Connected:     true,
		ProxyURL:      sess.ProxyURL,
		ExpiresAt:     sess.ExpiresAt,
		TimeRemaining: formatRemaining(sess.TimeRemaining()),
		Providers:     providers,
	}
}

func formatRemaining(d time.Duration) string {
	if d <= 0 {
		return "expired"
	}
	return d.Truncate(time.Second).String()
}
