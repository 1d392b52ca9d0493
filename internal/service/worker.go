package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tailfin-labs/tailfin/internal/core"
	"github.com/tailfin-labs/tailfin/internal/domain/model"
	apperrors "github.com/tailfin-labs/tailfin/internal/errors"
)

// Worker drains the queue: claim, transform, write to the owning job's
// destination, report the outcome. Claims happen on a fixed tick, one at a
// time, and each claimed item is delivered on its own goroutine so a slow
// destination write never stalls claiming. Several worker processes may run
// at once; the claim primitive keeps them from colliding.
type Worker struct {
	queue         core.QueueRepository
	jobs          core.JobRepository
	credentials   core.CredentialRepository
	pools         core.DestinationPools
	reconciler    *Reconciler
	logger        *slog.Logger
	pollInterval  time.Duration
	maxAttempts   int
	queryTimeout  time.Duration
	shutdownGrace time.Duration
}

// WorkerOptions configures a Worker.
type WorkerOptions struct {
	Queue       core.QueueRepository
	Jobs        core.JobRepository
	Credentials core.CredentialRepository
	Pools       core.DestinationPools
	Reconciler  *Reconciler
	Logger      *slog.Logger

	PollInterval  time.Duration
	MaxAttempts   int
	QueryTimeout  time.Duration
	ShutdownGrace time.Duration
}

func NewWorker(opts WorkerOptions) *Worker {
	poll := opts.PollInterval
	if poll <= 0 {
		poll = time.Second
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 5
	}
	queryTimeout := opts.QueryTimeout
	if queryTimeout <= 0 {
		queryTimeout = 15 * time.Second
	}
	shutdownGrace := opts.ShutdownGrace
	if shutdownGrace <= 0 {
		shutdownGrace = 20 * time.Second
	}
	return &Worker{
		queue:         opts.Queue,
		jobs:          opts.Jobs,
		credentials:   opts.Credentials,
		pools:         opts.Pools,
		reconciler:    opts.Reconciler,
		logger:        opts.Logger.With("component", "worker"),
		pollInterval:  poll,
		maxAttempts:   maxAttempts,
		queryTimeout:  queryTimeout,
		shutdownGrace: shutdownGrace,
	}
}

// Run starts the claim tick and blocks until the context is cancelled. On
// shutdown it waits for in-flight deliveries up to the shutdown grace.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "starting delivery worker",
		"poll_interval", w.pollInterval, "max_attempts", w.maxAttempts)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	var inflight sync.WaitGroup
	defer w.drain(&inflight)

	if err := w.claimAndDispatch(ctx, &inflight); err != nil && ctx.Err() == nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "worker stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := w.claimAndDispatch(ctx, &inflight); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return err
			}
		}
	}
}

// claimAndDispatch attempts one claim. Claims run inline so they stay
// serialized, one per tick at most; delivery runs detached so the next tick
// claims regardless of how slow the destination is. The detached context
// also lets a write already in flight finish during shutdown.
func (w *Worker) claimAndDispatch(ctx context.Context, inflight *sync.WaitGroup) error {
	item, err := w.queue.ClaimNext(ctx, w.maxAttempts)
	if err != nil {
		return fmt.Errorf("claim next: %w", err)
	}
	if item == nil {
		return nil
	}
	itemCtx := context.WithoutCancel(ctx)
	inflight.Add(1)
	go func() {
		defer inflight.Done()
		w.process(itemCtx, item)
	}()
	return nil
}

// drain waits for in-flight deliveries to report their outcomes, bounded by
// the shutdown grace. A delivery still running when the grace expires is
// abandoned; its queue row stays in processing until the sweeper resolves it.
func (w *Worker) drain(inflight *sync.WaitGroup) {
	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(w.shutdownGrace):
		w.logger.Warn("in-flight deliveries did not finish before shutdown grace expired")
	}
}

// process runs one claimed item to a terminal report. Every path out of here
// calls exactly one of MarkProcessed, MarkFailed or MarkFailedPermanent; an
// item left in processing is the sweeper's problem, and only a crash should
// create one.
func (w *Worker) process(ctx context.Context, item *model.QueueItem) {
	logger := w.logger.With("item_id", item.ID, "job_id", item.JobID, "attempt", item.Attempts)

	job, err := w.jobs.Get(ctx, item.JobID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			// Job deleted after enqueue. Drop the item.
			w.markProcessed(ctx, logger, item)
			return
		}
		w.markFailed(ctx, logger, item, fmt.Errorf("load job: %w", err))
		return
	}
	if job.Status != model.JobStatusActive {
		// Paused or errored after enqueue. Drop rather than hold; the
		// subscription no longer watches this job's address anyway.
		logger.InfoContext(ctx, "dropping item for inactive job", "status", job.Status)
		w.markProcessed(ctx, logger, item)
		return
	}

	cred, err := w.credentials.Get(ctx, job.CredentialID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			w.markPermanent(ctx, logger, item, job, "destination credential missing")
			return
		}
		if apperrors.Permanent(err) {
			// Undecryptable credential. No retry will change that.
			w.markPermanent(ctx, logger, item, job, err.Error())
			return
		}
		w.markFailed(ctx, logger, item, fmt.Errorf("load credential: %w", err))
		return
	}

	rows, err := TransformEvent(job, item.Payload)
	if err != nil {
		// A payload this job cannot decode will never decode. Dead-letter it
		// without touching the job.
		logger.WarnContext(ctx, "payload transform failed", "error", err)
		if markErr := w.queue.MarkFailedPermanent(ctx, item.ID, err.Error()); markErr != nil {
			logger.ErrorContext(ctx, "failed to dead-letter item", "error", markErr)
		}
		return
	}
	if len(rows) == 0 {
		// The transaction touched the address without producing rows for
		// this category. A clean no-op.
		w.markProcessed(ctx, logger, item)
		return
	}

	dest, err := w.pools.Acquire(ctx, cred)
	if err != nil {
		w.reportWriteError(ctx, logger, item, job, cred, err)
		return
	}

	for _, row := range rows {
		sql, args := row.InsertSQL(job.TableName)
		writeCtx, cancel := context.WithTimeout(ctx, w.queryTimeout)
		err := dest.Exec(writeCtx, sql, args...)
		cancel()
		if err != nil {
			w.reportWriteError(ctx, logger, item, job, cred, apperrors.ClassifyDestination(err))
			return
		}
	}

	w.markProcessed(ctx, logger, item)
	logger.InfoContext(ctx, "item delivered", "rows", len(rows))
}

// reportWriteError routes a destination failure to the right outcome:
// permanent faults dead-letter the item and flag the job so its address
// leaves the subscription, transient faults burn one attempt.
func (w *Worker) reportWriteError(ctx context.Context, logger *slog.Logger, item *model.QueueItem, job *model.Job, cred *model.Credential, err error) {
	if apperrors.Permanent(err) {
		w.markPermanent(ctx, logger, item, job, err.Error())
		if apperrors.IsKind(err, apperrors.KindUnauthorized) {
			w.pools.Evict(cred.ID)
		}
		return
	}
	w.markFailed(ctx, logger, item, err)
}

func (w *Worker) markProcessed(ctx context.Context, logger *slog.Logger, item *model.QueueItem) {
	if err := w.queue.MarkProcessed(ctx, item.ID); err != nil {
		logger.ErrorContext(ctx, "failed to mark item processed", "error", err)
	}
}

func (w *Worker) markFailed(ctx context.Context, logger *slog.Logger, item *model.QueueItem, cause error) {
	logger.WarnContext(ctx, "delivery attempt failed", "error", cause)
	if err := w.queue.MarkFailed(ctx, item.ID, cause.Error(), w.maxAttempts); err != nil {
		logger.ErrorContext(ctx, "failed to mark item failed", "error", err)
	}
}

func (w *Worker) markPermanent(ctx context.Context, logger *slog.Logger, item *model.QueueItem, job *model.Job, msg string) {
	logger.WarnContext(ctx, "delivery permanently failed", "reason", msg)
	if err := w.queue.MarkFailedPermanent(ctx, item.ID, msg); err != nil {
		logger.ErrorContext(ctx, "failed to dead-letter item", "error", err)
	}
	if w.reconciler != nil {
		if err := w.reconciler.FlagJobError(ctx, job.ID, msg); err != nil {
			logger.ErrorContext(ctx, "failed to flag job error", "error", err)
		}
	}
}
