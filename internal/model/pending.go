package model

import (
	"encoding/json"
	"time"
)

type PendingPairing struct {
	Token     string          `db:"token" json:"token"`
	State     json.RawMessage `db:"state" json:"-"`
	ExpiresAt time.Time       `db:"expires_at" json:"expiresAt"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

type CreatePendingPairingParams struct {
	Token     string
	State     json.RawMessage
	ExpiresAt time.Time
}
