package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tailfin-labs/tailfin/internal/core"
	"github.com/tailfin-labs/tailfin/internal/domain/model"
	apperrors "github.com/tailfin-labs/tailfin/internal/errors"
)

// Reconciler keeps the upstream webhook subscription equal to the address set
// of active jobs. Every job mutation funnels through it so the subscription
// and the jobs table converge after each change.
type Reconciler struct {
	jobs        core.JobRepository
	credentials core.CredentialRepository
	directory   *DirectoryService
	subscriber  core.SubscriptionClient
	logger      *slog.Logger
}

// ReconcilerOptions configures a Reconciler.
type ReconcilerOptions struct {
	Jobs        core.JobRepository
	Credentials core.CredentialRepository
	Directory   *DirectoryService
	Subscriber  core.SubscriptionClient
	Logger      *slog.Logger
}

func NewReconciler(opts ReconcilerOptions) *Reconciler {
	return &Reconciler{
		jobs:        opts.Jobs,
		credentials: opts.Credentials,
		directory:   opts.Directory,
		subscriber:  opts.Subscriber,
		logger:      opts.Logger.With("component", "reconciler"),
	}
}

// Sync rebuilds the directory from active jobs and pushes the full address
// set upstream. Edits are full replacements, so one call converges the
// subscription no matter how many mutations preceded it.
func (r *Reconciler) Sync(ctx context.Context) error {
	dir, err := r.directory.Rebuild(ctx)
	if err != nil {
		return err
	}
	if err := r.subscriber.ReplaceAddresses(ctx, dir.Addresses()); err != nil {
		return apperrors.E(apperrors.KindUnavailable, "subscription edit failed", err)
	}
	return nil
}

// CreateJob validates and persists a job as pending, pushes the subscription
// including the new address, and only then flips the job active. Ordering
// matters: a job must never sit active while its address was never pushed,
// because nothing later would converge it. The reverse skew, a pending job
// whose address is already upstream, is harmless; unmatched events are
// dropped and the next sync prunes the address.
func (r *Reconciler) CreateJob(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.E(apperrors.KindInvalid, "invalid job", err)
	}
	if _, err := r.credentials.Get(ctx, req.CredentialID); err != nil {
		return nil, err
	}

	job := &model.Job{
		UserID:       req.UserID,
		Category:     req.Category,
		Params:       req.Params,
		CredentialID: req.CredentialID,
		TableName:    req.TableName,
		Status:       model.JobStatusPending,
	}
	addr, ok := job.MonitoredAddress()
	if !ok {
		return nil, apperrors.E(apperrors.KindInvalid, "job params yield no monitored address", nil)
	}
	if err := r.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	// The job is still pending, so the rebuilt directory excludes it; union
	// its address in by hand for the push.
	dir, err := r.directory.Rebuild(ctx)
	if err != nil {
		return nil, r.failCreate(ctx, job.ID, err)
	}
	addresses := dir.Addresses()
	if _, exists := dir[addr]; !exists {
		addresses = append(addresses, addr)
	}
	if err := r.subscriber.ReplaceAddresses(ctx, addresses); err != nil {
		err = apperrors.E(apperrors.KindUnavailable, "subscription edit failed", err)
		return nil, r.failCreate(ctx, job.ID, err)
	}

	if err := r.jobs.UpdateStatus(ctx, job.ID, model.JobStatusActive); err != nil {
		return nil, err
	}
	job.Status = model.JobStatusActive
	r.directory.Invalidate(ctx)

	r.logger.InfoContext(ctx, "job created", "job_id", job.ID, "category", job.Category)
	return job, nil
}

// failCreate flags a job whose activation push never landed and hands the
// original error back to the caller.
func (r *Reconciler) failCreate(ctx context.Context, jobID string, err error) error {
	r.logger.ErrorContext(ctx, "subscription sync failed during create",
		"job_id", jobID, "error", err)
	if setErr := r.jobs.SetError(ctx, jobID, "subscription sync failed: "+err.Error()); setErr != nil {
		r.logger.ErrorContext(ctx, "failed to flag job after sync failure",
			"job_id", jobID, "error", setErr)
	}
	r.directory.Invalidate(ctx)
	return err
}

// DeleteJob removes a job and drops its address from the subscription when no
// other active job shares it. The row is deleted first so matching stops
// immediately; a failed sync leaves a harmless extra address upstream, which
// the next successful sync removes.
func (r *Reconciler) DeleteJob(ctx context.Context, id string) error {
	if err := r.jobs.Delete(ctx, id); err != nil {
		return err
	}
	r.directory.Invalidate(ctx)

	// An over-broad subscription is safe: unmatched events are dropped by the
	// gateway, and the next successful sync prunes the address. The delete
	// itself already happened, so the caller gets success either way.
	if err := r.Sync(ctx); err != nil {
		r.logger.WarnContext(ctx, "subscription sync failed after delete, will converge on next sync",
			"job_id", id, "error", err)
		return nil
	}
	r.logger.InfoContext(ctx, "job deleted", "job_id", id)
	return nil
}

// SetJobStatus pauses or resumes a job, then syncs the subscription.
func (r *Reconciler) SetJobStatus(ctx context.Context, id string, status model.JobStatus) error {
	switch status {
	case model.JobStatusActive, model.JobStatusPaused:
	default:
		return apperrors.E(apperrors.KindInvalid,
			fmt.Sprintf("status %q cannot be set directly", status), nil)
	}

	if err := r.jobs.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	r.directory.Invalidate(ctx)

	if err := r.Sync(ctx); err != nil {
		r.logger.WarnContext(ctx, "subscription sync failed after status change",
			"job_id", id, "status", status, "error", err)
		return err
	}
	return nil
}

// FlagJobError records a sticky delivery error and pulls the job's address
// out of the subscription via sync.
func (r *Reconciler) FlagJobError(ctx context.Context, id string, msg string) error {
	if err := r.jobs.SetError(ctx, id, msg); err != nil {
		return err
	}
	r.directory.Invalidate(ctx)
	if err := r.Sync(ctx); err != nil {
		r.logger.WarnContext(ctx, "subscription sync failed after error flag",
			"job_id", id, "error", err)
		return err
	}
	return nil
}
