package pending

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/mumernisar/outsmart/internal/errors"
	"github.com/mumernisar/outsmart/internal/util"
)

const redisKeyPrefix = "gateway:pending:"

// RedisCarrier parks the state server-side under a random correlation
// token; only the token rides through the redirect. Redis TTL handles
// garbage collection of abandoned attempts.
type RedisCarrier struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCarrier(rdb *redis.Client, ttl time.Duration) *RedisCarrier {
	return &RedisCarrier{rdb: rdb, ttl: ttl}
}

func (c *RedisCarrier) Prepare(ctx context.Context, state *State) (string, error) {
	data, err := state.marshal()
	if err != nil {
		return "", err
	}

	// A fresh token per attempt: two racing pairing attempts get
	// separate slots and cannot clobber each other.
	token, err := util.GenerateToken()
	if err != nil {
		return "", apperrors.Internal("failed to generate pending token").WithCause(err)
	}

	if err := c.rdb.Set(ctx, redisKeyPrefix+token, data, c.ttl).Err(); err != nil {
		return "", apperrors.Database(err)
	}
	return token, nil
}

func (c *RedisCarrier) Take(ctx context.Context, param string) (*State, error) {
	if param == "" {
		return nil, apperrors.PendingStateLost()
	}

	data, err := c.rdb.GetDel(ctx, redisKeyPrefix+param).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.PendingStateLost()
	}
	if err != nil {
		return nil, apperrors.Database(err)
	}

	state, err := unmarshalState(data)
	if err != nil {
		return nil, apperrors.PendingStateLost()
	}
	return state, nil
}
