// Package data implements the PostgreSQL repositories backing the control
// plane and the durable queue.
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/tailfin-labs/tailfin/internal/errors"

	"github.com/tailfin-labs/tailfin/internal/data/pgxutil"
	"github.com/tailfin-labs/tailfin/internal/domain/model"
)

// JobRepo persists monitoring jobs.
type JobRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

// JobRepoOptions configures a JobRepo.
type JobRepoOptions struct {
	DB     *sql.DB
	Logger *slog.Logger
}

func NewJobRepo(opts JobRepoOptions) *JobRepo {
	return &JobRepo{
		db:     opts.DB,
		logger: opts.Logger.With("component", "job_repo"),
	}
}

const jobColumns = `id, user_id, category, params, credential_id, table_name,
	status, last_event_at, last_error, created_at, updated_at`

// Create inserts a new job. The caller supplies the ID so the reconciler can
// refer to it before and after the subscription edit.
func (r *JobRepo) Create(ctx context.Context, job *model.Job) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = model.JobStatusPending
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, user_id, category, params, credential_id, table_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		job.ID, job.UserID, job.Category, job.Params, job.CredentialID,
		job.TableName, job.Status, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// Get fetches one job by ID.
func (r *JobRepo) Get(ctx context.Context, id string) (*model.Job, error) {
	var job *model.Job
	err := pgxutil.WithPgxConn(ctx, r.db, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
		if err != nil {
			return err
		}
		job, err = pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Job])
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.E(apperrors.KindNotFound, "job not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// List returns all jobs owned by a user, newest first.
func (r *JobRepo) List(ctx context.Context, userID string) ([]model.Job, error) {
	var jobs []model.Job
	err := pgxutil.WithPgxConn(ctx, r.db, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+jobColumns+` FROM jobs WHERE user_id = $1 ORDER BY created_at DESC`, userID)
		if err != nil {
			return err
		}
		jobs, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Job])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// ListActive returns every job in active status. The directory is rebuilt
// from this set.
func (r *JobRepo) ListActive(ctx context.Context) ([]model.Job, error) {
	var jobs []model.Job
	err := pgxutil.WithPgxConn(ctx, r.db, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+jobColumns+` FROM jobs WHERE status = $1 ORDER BY created_at`, model.JobStatusActive)
		if err != nil {
			return err
		}
		jobs, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Job])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list active jobs: %w", err)
	}
	return jobs, nil
}

// UpdateStatus moves a job between statuses and clears any sticky error when
// the job becomes active again.
func (r *JobRepo) UpdateStatus(ctx context.Context, id string, status model.JobStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = $2,
			last_error = CASE WHEN $2 = 'active' THEN NULL ELSE last_error END,
			updated_at = $3
		WHERE id = $1`,
		id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return requireRow(res, "job")
}

// SetError flags a job with a sticky error and moves it to error status so
// the reconciler drops its address on the next rebuild.
func (r *JobRepo) SetError(ctx context.Context, id string, msg string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = $2, last_error = $3, updated_at = $4
		WHERE id = $1`,
		id, model.JobStatusError, msg, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set job error: %w", err)
	}
	return requireRow(res, "job")
}

// TouchLastEvent bumps last_event_at for the jobs that just matched a batch.
func (r *JobRepo) TouchLastEvent(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := pgxutil.WithPgxConn(ctx, r.db, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `
			UPDATE jobs SET last_event_at = $2, updated_at = $2 WHERE id = ANY($1)`,
			ids, at.UTC())
		return err
	})
	if err != nil {
		return fmt.Errorf("touch last event: %w", err)
	}
	return nil
}

// Delete removes a job. Queue items referencing it cascade.
func (r *JobRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return requireRow(res, "job")
}

func requireRow(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.E(apperrors.KindNotFound, entity+" not found", nil)
	}
	return nil
}
