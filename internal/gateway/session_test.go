package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(t *testing.T, expiresAt time.Time, resources []ResourceGrant) *Session {
	t.Helper()
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	return NewSession("app-9", "https://gw.example", expiresAt, NewSigner(kp), resources)
}

func TestSessionValidity(t *testing.T) {
	t.Run("valid one second before expiry", func(t *testing.T) {
		sess := testSession(t, time.Now().Add(time.Second), nil)
		assert.True(t, sess.Valid())
	})

	t.Run("invalid one second after expiry", func(t *testing.T) {
		sess := testSession(t, time.Now().Add(-time.Second), nil)
		assert.False(t, sess.Valid())
	})

	t.Run("expiry boundary is exclusive", func(t *testing.T) {
		at := time.Now()
		sess := testSession(t, at, nil)
		assert.False(t, sess.ValidAt(at))
		assert.True(t, sess.ValidAt(at.Add(-time.Nanosecond)))
	})

	t.Run("hour-long grant expires on schedule", func(t *testing.T) {
		start := time.Now()
		sess := testSession(t, start.Add(3600*time.Second), nil)
		assert.True(t, sess.ValidAt(start.Add(3599*time.Second)))
		assert.False(t, sess.ValidAt(start.Add(3601*time.Second)))
	})
}

func TestTimeRemaining(t *testing.T) {
	t.Run("clamps to zero when expired", func(t *testing.T) {
		sess := testSession(t, time.Now().Add(-time.Hour), nil)
		assert.Equal(t, time.Duration(0), sess.TimeRemaining())
	})

	t.Run("positive before expiry", func(t *testing.T) {
		sess := testSession(t, time.Now().Add(time.Hour), nil)
		assert.Greater(t, sess.TimeRemaining(), 59*time.Minute)
	})
}

func TestResourcesByType(t *testing.T) {
	catalog := []ResourceGrant{
		{Provider: "openai", Type: "llm", Models: []string{"gpt-5-nano"}},
		{Provider: "s3", Type: "storage", Models: nil},
		{Provider: "groq", Type: "llm", Models: []string{"openai/gpt-oss-120b"}},
	}
	sess := testSession(t, time.Now().Add(time.Hour), catalog)

	t.Run("filters by type preserving fetch order", func(t *testing.T) {
		llms := sess.ResourcesByType("llm")
		require.Len(t, llms, 2)
		assert.Equal(t, "openai", llms[0].Provider)
		assert.Equal(t, "groq", llms[1].Provider)
	})

	t.Run("unknown type yields nothing", func(t *testing.T) {
		assert.Empty(t, sess.ResourcesByType("vector-db"))
	})
}

func TestFindProviderForModel(t *testing.T) {
	catalog := []ResourceGrant{
		{Provider: "openai", Type: "llm", Models: []string{"gpt-5-nano", "shared-model"}},
		{Provider: "groq", Type: "llm", Models: []string{"shared-model", "openai/gpt-oss-120b"}},
	}
	sess := testSession(t, time.Now().Add(time.Hour), catalog)

	t.Run("returns provider of the grant listing the model", func(t *testing.T) {
		assert.Equal(t, "groq", sess.FindProviderForModel("openai/gpt-oss-120b"))
	})

	t.Run("first grant wins ties in catalog order", func(t *testing.T) {
		assert.Equal(t, "openai", sess.FindProviderForModel("shared-model"))
	})

	t.Run("empty for unknown model", func(t *testing.T) {
		assert.Equal(t, "", sess.FindProviderForModel("nonexistent-model"))
	})
}
