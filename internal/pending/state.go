// Package pending carries pairing state across the redirect boundary.
// Between Connect and the approval callback the process may restart, so
// nothing here lives on a call stack: state is either encrypted into the
// redirect URI itself or parked in a durable store under a one-time
// correlation token.
package pending

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mumernisar/outsmart/internal/gateway"
)

// State is what must survive the redirect: where to talk to, and the key
// to sign with. KeySeed is empty in environment key mode, where the
// signing key never leaves the process environment.
type State struct {
	ProxyURL  string    `json:"proxy_url"`
	KeySeed   string    `json:"key_seed,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewState snapshots a pairing attempt. keypair may be nil in
// environment key mode.
func NewState(proxyURL string, keypair *gateway.KeyPair) *State {
	s := &State{
		ProxyURL:  proxyURL,
		CreatedAt: time.Now().UTC(),
	}
	if keypair != nil {
		s.KeySeed = keypair.Seed()
	}
	return s
}

// KeyPair reconstructs the pairing keypair, or nil when the state was
// created in environment key mode.
func (s *State) KeyPair() (*gateway.KeyPair, error) {
	if s.KeySeed == "" {
		return nil, nil
	}
	return gateway.KeyPairFromSeed(s.KeySeed)
}

func (s *State) marshal() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal pending state: %w", err)
	}
	return data, nil
}

func unmarshalState(data []byte) (*State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal pending state: %w", err)
	}
	return &s, nil
}

// Carrier persists pending state across the redirect. Prepare returns
// the opaque value to place in the redirect URI's state parameter; Take
// recovers the state and consumes it, exactly once. A second Take with
// the same parameter fails with PENDING_STATE_LOST, as does any
// parameter the carrier cannot recognize.
type Carrier interface {
	Prepare(ctx context.Context, state *State) (string, error)
	Take(ctx context.Context, param string) (*State, error)
}
