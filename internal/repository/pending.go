package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/mumernisar/outsmart/internal/model"
)

type PendingPairingRepository interface {
	Create(ctx context.Context, params model.CreatePendingPairingParams) (*model.PendingPairing, error)
	Take(ctx context.Context, token string) (*model.PendingPairing, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type pendingPairingRepo struct {
	db *sqlx.DB
}

func NewPendingPairingRepository(db *sqlx.DB) PendingPairingRepository {
	return &pendingPairingRepo{db: db}
}

func (r *pendingPairingRepo) Create(ctx context.Context, params model.CreatePendingPairingParams) (*model.PendingPairing, error) {
	var pp model.PendingPairing
	err := r.db.GetContext(ctx, &pp, `
		INSERT INTO pending_pairings (token, state, expires_at)
		VALUES ($1, $2, $3)
		RETURNING *
	`, params.Token, params.State, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &pp, nil
}

// Take deletes and returns the row in one statement, so two concurrent
// callbacks racing for the same token cannot both win.
func (r *pendingPairingRepo) Take(ctx context.Context, token string) (*model.PendingPairing, error) {
	var pp model.PendingPairing
	err := r.db.GetContext(ctx, &pp, `
		DELETE FROM pending_pairings
		WHERE token = $1 AND expires_at > NOW()
		RETURNING *
	`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pp, nil
}

func (r *pendingPairingRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM pending_pairings
		WHERE expires_at < NOW()
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
