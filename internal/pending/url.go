package pending

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	apperrors "github.com/mumernisar/outsmart/internal/errors"
	"github.com/mumernisar/outsmart/internal/util"
)

const (
	stateEncryptionInfo = "gateway-pending-state"
	tombstonePrefix     = "gateway:pending:consumed:"
)

// URLCarrier encodes the state into the redirect URI itself, encrypted
// so the keypair never transits browser history or gateway logs in the
// clear. Consume-once is enforced with a redis tombstone on the blob
// digest, since the blob itself is stateless.
type URLCarrier struct {
	secret string
	rdb    *redis.Client
	ttl    time.Duration
}

func NewURLCarrier(secret string, rdb *redis.Client, ttl time.Duration) *URLCarrier {
	return &URLCarrier{secret: secret, rdb: rdb, ttl: ttl}
}

func (c *URLCarrier) Prepare(ctx context.Context, state *State) (string, error) {
	data, err := state.marshal()
	if err != nil {
		return "", err
	}
	return util.Encrypt(c.secret, stateEncryptionInfo, data)
}

func (c *URLCarrier) Take(ctx context.Context, param string) (*State, error) {
	if param == "" {
		return nil, apperrors.PendingStateLost()
	}

	data, err := util.Decrypt(c.secret, stateEncryptionInfo, param)
	if err != nil {
		// Foreign or corrupted blob; same outcome as missing state.
		log.Debug().Err(err).Msg("pending state blob failed to decrypt")
		return nil, apperrors.PendingStateLost()
	}

	state, err := unmarshalState(data)
	if err != nil {
		return nil, apperrors.PendingStateLost()
	}

	if time.Since(state.CreatedAt) > c.ttl {
		return nil, apperrors.PendingStateLost()
	}

	// The tombstone outlives the blob's validity window, after which the
	// age check above rejects replays on its own.
	key := tombstonePrefix + util.HashToken(param)
	set, err := c.rdb.SetNX(ctx, key, 1, c.ttl+time.Minute).Result()
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if !set {
		return nil, apperrors.PendingStateLost()
	}

	return state, nil
}
