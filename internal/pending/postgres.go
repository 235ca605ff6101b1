package pending

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/mumernisar/outsmart/internal/errors"
	"github.com/mumernisar/outsmart/internal/model"
	"github.com/mumernisar/outsmart/internal/repository"
)

// PostgresCarrier is the durable-store strategy backed by the
// pending_pairings table. Expired rows are swept by the cleanup job.
type PostgresCarrier struct {
	repo repository.PendingPairingRepository
	ttl  time.Duration
}

func NewPostgresCarrier(repo repository.PendingPairingRepository, ttl time.Duration) *PostgresCarrier {
	return &PostgresCarrier{repo: repo, ttl: ttl}
}

func (c *PostgresCarrier) Prepare(ctx context.Context, state *State) (string, error) {
	data, err := state.marshal()
	if err != nil {
		return "", err
	}

	token := uuid.NewString()
	_, err = c.repo.Create(ctx, model.CreatePendingPairingParams{
		Token:     token,
		State:     data,
		ExpiresAt: time.Now().Add(c.ttl),
	})
	if err != nil {
		return "", apperrors.Database(err)
	}
	return token, nil
}

func (c *PostgresCarrier) Take(ctx context.Context, param string) (*State, error) {
	if param == "" {
		return nil, apperrors.PendingStateLost()
	}

	row, err := c.repo.Take(ctx, param)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if row == nil {
		return nil, apperrors.PendingStateLost()
	}

	state, err := unmarshalState(row.State)
	if err != nil {
		return nil, apperrors.PendingStateLost()
	}
	return state, nil
}
