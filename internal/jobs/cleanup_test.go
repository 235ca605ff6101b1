package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mumernisar/outsmart/internal/model"
)

type mockPendingRepo struct {
	deleteExpiredCalls atomic.Int32
	deleteExpiredCount int64
}

func (m *mockPendingRepo) Create(ctx context.Context, params model.CreatePendingPairingParams) (*model.PendingPairing, error) {
	return nil, nil
}

func (m *mockPendingRepo) Take(ctx context.Context, token string) (*model.PendingPairing, error) {
	return nil, nil
}

func (m *mockPendingRepo) DeleteExpired(ctx context.Context) (int64, error) {
	m.deleteExpiredCalls.Add(1)
	return m.deleteExpiredCount, nil
}

func TestCleanupJob(t *testing.T) {
	t.Run("creates job with correct interval", func(t *testing.T) {
		job := NewCleanupJob(nil, 5*time.Minute)

		assert.NotNil(t, job)
		assert.Equal(t, 5*time.Minute, job.interval)
	})

	t.Run("runs cleanup on start", func(t *testing.T) {
		repo := &mockPendingRepo{deleteExpiredCount: 3}
		job := NewCleanupJob(repo, time.Hour)

		job.Start()
		time.Sleep(10 * time.Millisecond)
		job.Stop()

		assert.Equal(t, int32(1), repo.deleteExpiredCalls.Load())
	})

	t.Run("starts and stops without panic", func(t *testing.T) {
		job := NewCleanupJob(&mockPendingRepo{}, 100*time.Millisecond)

		job.Start()
		time.Sleep(50 * time.Millisecond)
		job.Stop()
	})
}
