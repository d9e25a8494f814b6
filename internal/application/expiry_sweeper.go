package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/quotation"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
)

const sweepBatchSize = 100

// ExpirySweeper persists the EXPIRED status on quotations whose offer window
// has passed. Foreground reads never need the sweep to be current: they
// project effective status against the clock. The sweep only keeps stored
// state from drifting indefinitely.
type ExpirySweeper struct {
	repo     quotation.Repository
	interval time.Duration
	logger   *zap.Logger
}

// NewExpirySweeper creates an ExpirySweeper.
func NewExpirySweeper(repo quotation.Repository, interval time.Duration, logger *zap.Logger) *ExpirySweeper {
	return &ExpirySweeper{repo: repo, interval: interval, logger: logger}
}

// Run sweeps on the configured interval until the context is cancelled. A zero
// interval disables the sweep.
func (s *ExpirySweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("quotation expiry sweep disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("quotation expiry sweep started",
		zap.Duration("interval", s.interval),
	)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("expiry sweep failed", zap.Error(err))
			} else if n > 0 {
				s.logger.Info("expired quotations persisted", zap.Int("count", n))
			}
		}
	}
}

// SweepOnce marks one batch of overdue DRAFT/SENT quotations EXPIRED and
// returns how many were updated. Records modified concurrently are skipped and
// picked up by the next sweep.
func (s *ExpirySweeper) SweepOnce(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	expired, err := s.repo.FindExpiredActive(ctx, now, sweepBatchSize)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, q := range expired {
		if err := q.MarkExpired(); err != nil {
			continue
		}
		q.IncrementVersion()
		if err := s.repo.Update(ctx, q); err != nil {
			if shared.IsKind(err, shared.KindConflict) {
				continue
			}
			return updated, err
		}
		updated++
	}
	return updated, nil
}
