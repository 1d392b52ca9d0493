package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/tailfin-labs/tailfin/config"
	"github.com/tailfin-labs/tailfin/internal/core"
)

// SweeperOptions groups dependencies for Sweeper. MaxAttempts is the
// worker's retry budget; the sweeper needs it to tell a stranded item with
// retries left from one that must be dead-lettered.
type SweeperOptions struct {
	Queue       core.QueueRepository
	Config      config.SweeperConfig
	MaxAttempts int
	Logger      *slog.Logger
}

// Sweeper is the queue janitor.
//
// It handles:
// - Returning items stranded in processing by a dead worker to pending.
// - Dead-lettering stranded items that already spent their last attempt.
// - Deleting dead-lettered items past the retention window.
type Sweeper struct {
	queue       core.QueueRepository
	config      config.SweeperConfig
	maxAttempts int
	logger      *slog.Logger
}

// NewSweeper constructs a Sweeper.
func NewSweeper(opts SweeperOptions) (*Sweeper, error) {
	if opts.Queue == nil {
		return nil, errors.New("QueueRepository is required")
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Sweeper{
		queue:       opts.Queue,
		config:      opts.Config,
		maxAttempts: opts.MaxAttempts,
		logger:      opts.Logger.With("component", "sweeper"),
	}, nil
}

// Run starts the sweep loop and runs until the context is cancelled.
// Returns nil on graceful shutdown.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting sweeper",
		"interval", s.config.Interval, "stuck_after", s.config.StuckAfter)

	// Jitter keeps multiple instances from sweeping in lockstep.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "sweeper stopping")
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		return
	}
	jitter := time.Duration(int64(binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)))

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

// sweep runs both cleanup steps. Each step fails independently; a broken
// requeue still lets retention run.
func (s *Sweeper) sweep(ctx context.Context) {
	swept, err := s.queue.RequeueStuck(ctx, s.config.StuckAfter, s.maxAttempts, s.config.BatchSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "requeue stuck items failed", "error", err)
	} else if swept > 0 {
		s.logger.InfoContext(ctx, "resolved stuck items", "count", swept)
	}

	deleted, err := s.queue.DeleteOldDeadLetters(ctx, s.config.DeadLetterMaxAge, s.config.BatchSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "dead letter retention failed", "error", err)
	} else if deleted > 0 {
		s.logger.InfoContext(ctx, "deleted expired dead letters", "count", deleted)
	}
}
