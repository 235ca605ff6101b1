package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mumernisar/outsmart/internal/gateway"
)

func newTestSession(t *testing.T, expiresAt time.Time, resources []gateway.ResourceGrant) *gateway.Session {
	t.Helper()
	kp, err := gateway.GenerateKeyPair()
	require.NoError(t, err)
	return gateway.NewSession("app-1", "https://gw.example", expiresAt, gateway.NewSigner(kp), resources)
}

func TestSessionManager(t *testing.T) {
	t.Run("starts disconnected", func(t *testing.T) {
		m := NewSessionManager()
		assert.Nil(t, m.Current())

		status := m.Status()
		assert.False(t, status.Connected)
		assert.Empty(t, status.Providers)
	})

	t.Run("install makes the session current", func(t *testing.T) {
		m := NewSessionManager()
		sess := newTestSession(t, time.Now().Add(time.Hour), nil)

		m.Install(sess)
		assert.Same(t, sess, m.Current())
	})

	t.Run("invalidate disconnects", func(t *testing.T) {
		m := NewSessionManager()
		m.Install(newTestSession(t, time.Now().Add(time.Hour), nil))

		m.Invalidate()
		assert.Nil(t, m.Current())

		// Safe to call again.
		m.Invalidate()
		assert.Nil(t, m.Current())
	})

	t.Run("expired session is dropped on read", func(t *testing.T) {
		m := NewSessionManager()
		m.Install(newTestSession(t, time.Now().Add(-time.Second), nil))

		assert.Nil(t, m.Current())
		assert.False(t, m.Status().Connected)
	})

	t.Run("install replaces the previous session", func(t *testing.T) {
		m := NewSessionManager()
		first := newTestSession(t, time.Now().Add(time.Hour), nil)
		second := newTestSession(t, time.Now().Add(2*time.Hour), nil)

		m.Install(first)
		m.Install(second)
		assert.Same(t, second, m.Current())
	})

	t.Run("status reports llm providers in grant order", func(t *testing.T) {
		m := NewSessionManager()
		m.Install(newTestSession(t, time.Now().Add(time.Hour), []gateway.ResourceGrant{
			{Provider: "openai", Type: "llm", Models: []string{"gpt-5-nano"}},
			{Provider: "groq", Type: "llm", Models: []string{"openai/gpt-oss-120b"}},
			{Provider: "s3", Type: "storage"},
		}))

		status := m.Status()
		assert.True(t, status.Connected)
		assert.Equal(t, "https://gw.example", status.ProxyURL)
		assert.Equal(t, []string{"openai", "groq"}, status.Providers)
		assert.NotEmpty(t, status.TimeRemaining)
		assert.NotEqual(t, "expired", status.TimeRemaining)
	})
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "expired", formatRemaining(0))
	assert.Equal(t, "expired", formatRemaining(-time.Minute))
	assert.Equal(t, "1h0m0s", formatRemaining(time.Hour+500*time.Millisecond))
}
