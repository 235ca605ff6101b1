package pending

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mumernisar/outsmart/internal/errors"
	"github.com/mumernisar/outsmart/internal/gateway"
)

const testStateSecret = "a-reasonably-long-operator-secret"

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestURLCarrier(t *testing.T) {
	ctx := context.Background()

	t.Run("prepare then take recovers the state", func(t *testing.T) {
		carrier := NewURLCarrier(testStateSecret, newTestRedis(t), time.Minute)

		kp, err := gateway.GenerateKeyPair()
		require.NoError(t, err)
		blob, err := carrier.Prepare(ctx, NewState("https://gw.example", kp))
		require.NoError(t, err)

		state, err := carrier.Take(ctx, blob)
		require.NoError(t, err)
		assert.Equal(t, "https://gw.example", state.ProxyURL)

		restored, err := state.KeyPair()
		require.NoError(t, err)
		assert.Equal(t, kp.Seed(), restored.Seed())
	})

	t.Run("blob does not expose the key seed", func(t *testing.T) {
		carrier := NewURLCarrier(testStateSecret, newTestRedis(t), time.Minute)

		kp, err := gateway.GenerateKeyPair()
		require.NoError(t, err)

		blob, err := carrier.Prepare(ctx, NewState("https://gw.example", kp))
		require.NoError(t, err)

		assert.NotContains(t, blob, kp.Seed())
		assert.NotContains(t, blob, "gw.example")
	})

	t.Run("blob is consumed exactly once", func(t *testing.T) {
		carrier := NewURLCarrier(testStateSecret, newTestRedis(t), time.Minute)

		blob, err := carrier.Prepare(ctx, NewState("https://gw.example", nil))
		require.NoError(t, err)

		_, err = carrier.Take(ctx, blob)
		require.NoError(t, err)

		_, err = carrier.Take(ctx, blob)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodePendingStateLost, apperrors.GetCode(err))
	})

	t.Run("concurrent pairing attempts get independent blobs", func(t *testing.T) {
		carrier := NewURLCarrier(testStateSecret, newTestRedis(t), time.Minute)

		blobA, err := carrier.Prepare(ctx, NewState("https://gw-a.example", nil))
		require.NoError(t, err)
		blobB, err := carrier.Prepare(ctx, NewState("https://gw-b.example", nil))
		require.NoError(t, err)
		assert.NotEqual(t, blobA, blobB)

		stateB, err := carrier.Take(ctx, blobB)
		require.NoError(t, err)
		assert.Equal(t, "https://gw-b.example", stateB.ProxyURL)

		stateA, err := carrier.Take(ctx, blobA)
		require.NoError(t, err)
		assert.Equal(t, "https://gw-a.example", stateA.ProxyURL)
	})

	t.Run("blob older than the validity window is lost", func(t *testing.T) {
		carrier := NewURLCarrier(testStateSecret, newTestRedis(t), time.Minute)

		state := NewState("https://gw.example", nil)
		state.CreatedAt = time.Now().UTC().Add(-2 * time.Minute)
		blob, err := carrier.Prepare(ctx, state)
		require.NoError(t, err)

		_, err = carrier.Take(ctx, blob)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodePendingStateLost, apperrors.GetCode(err))
	})

	t.Run("foreign blobs are lost", func(t *testing.T) {
		carrier := NewURLCarrier(testStateSecret, newTestRedis(t), time.Minute)

		_, err := carrier.Take(ctx, "not-a-blob")
		assert.Equal(t, apperrors.ErrCodePendingStateLost, apperrors.GetCode(err))

		_, err = carrier.Take(ctx, "")
		assert.Equal(t, apperrors.ErrCodePendingStateLost, apperrors.GetCode(err))

		// A blob sealed under a different operator secret.
		other := NewURLCarrier("some-other-operator-secret-entirely", newTestRedis(t), time.Minute)
		blob, err := other.Prepare(ctx, NewState("https://gw.example", nil))
		require.NoError(t, err)

		_, err = carrier.Take(ctx, blob)
		assert.Equal(t, apperrors.ErrCodePendingStateLost, apperrors.GetCode(err))
	})

	t.Run("tampered blobs are lost", func(t *testing.T) {
		carrier := NewURLCarrier(testStateSecret, newTestRedis(t), time.Minute)

		blob, err := carrier.Prepare(ctx, NewState("https://gw.example", nil))
		require.NoError(t, err)

		flipped := "A"
		if blob[len(blob)-1] == 'A' {
			flipped = "B"
		}
		tampered := blob[:len(blob)-1] + flipped
		_, err = carrier.Take(ctx, tampered)
		assert.Equal(t, apperrors.ErrCodePendingStateLost, apperrors.GetCode(err))
	})
}
