package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tailfin-labs/tailfin/internal/data/pgxutil"
	"github.com/tailfin-labs/tailfin/internal/domain/model"
)

// QueueRepo is the durable queue. All claim and outcome transitions are
// single-statement updates so concurrent workers never hand out the same
// item twice.
type QueueRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

// QueueRepoOptions configures a QueueRepo.
type QueueRepoOptions struct {
	DB     *sql.DB
	Logger *slog.Logger
}

func NewQueueRepo(opts QueueRepoOptions) *QueueRepo {
	return &QueueRepo{
		db:     opts.DB,
		logger: opts.Logger.With("component", "queue_repo"),
	}
}

const queueColumns = `id, job_id, payload, status, attempts, last_attempt_at,
	last_error, created_at, updated_at`

// BulkInsert writes one pending item per (job, event) match in a single
// round trip. Returns the number of rows inserted.
func (r *QueueRepo) BulkInsert(ctx context.Context, items []model.NewQueueItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return 0, fmt.Errorf("queue item %d: %w", i, err)
		}
	}

	now := time.Now().UTC()
	var inserted int64
	err := pgxutil.WithPgxConn(ctx, r.db, func(conn *pgx.Conn) error {
		batch := &pgx.Batch{}
		for _, item := range items {
			batch.Queue(`
				INSERT INTO queue_items (id, job_id, payload, status, attempts, created_at, updated_at)
				VALUES ($1, $2, $3, $4, 0, $5, $5)`,
				uuid.NewString(), item.JobID, item.Payload, model.QueueStatusPending, now)
		}
		results := conn.SendBatch(ctx, batch)
		defer results.Close()
		for range items {
			tag, err := results.Exec()
			if err != nil {
				return err
			}
			inserted += tag.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("bulk insert queue items: %w", err)
	}
	return int(inserted), nil
}

// reserveNextSQL claims the oldest eligible pending item. SKIP LOCKED keeps
// concurrent claimers from blocking on the same row; the UPDATE flips the
// status and bumps the attempt counter in the same statement, so a claimed
// item is invisible to every other claimer the moment it is returned.
const reserveNextSQL = `
WITH next AS (
	SELECT id FROM queue_items
	WHERE status = 'pending' AND attempts < $1
	ORDER BY created_at
	LIMIT 1
	FOR UPDATE SKIP LOCKED
)
UPDATE queue_items q
SET status = 'processing', attempts = q.attempts + 1, last_attempt_at = $2, updated_at = $2
FROM next
WHERE q.id = next.id
RETURNING q.id, q.job_id, q.payload, q.status, q.attempts, q.last_attempt_at,
	q.last_error, q.created_at, q.updated_at`

// ClaimNext atomically claims the oldest eligible item. Returns (nil, nil)
// when the queue has nothing eligible.
func (r *QueueRepo) ClaimNext(ctx context.Context, maxAttempts int) (*model.QueueItem, error) {
	var item *model.QueueItem
	err := pgxutil.WithPgxConn(ctx, r.db, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, reserveNextSQL, maxAttempts, time.Now().UTC())
		if err != nil {
			return err
		}
		item, err = pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.QueueItem])
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim next: %w", err)
	}
	return item, nil
}

// MarkProcessed finalizes a successfully delivered (or deliberately dropped)
// item.
func (r *QueueRepo) MarkProcessed(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE queue_items
		SET status = $2, last_error = NULL, updated_at = $3
		WHERE id = $1 AND status = $4`,
		id, model.QueueStatusProcessed, time.Now().UTC(), model.QueueStatusProcessing)
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return requireRow(res, "queue item")
}

// MarkFailed records a retryable failure. The item returns to pending while
// attempts remain, and becomes a dead letter once the budget is exhausted.
func (r *QueueRepo) MarkFailed(ctx context.Context, id string, errMsg string, maxAttempts int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE queue_items
		SET status = CASE WHEN attempts >= $3 THEN 'failed' ELSE 'pending' END,
			last_error = $2, updated_at = $4
		WHERE id = $1 AND status = $5`,
		id, truncateError(errMsg), maxAttempts, time.Now().UTC(), model.QueueStatusProcessing)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return requireRow(res, "queue item")
}

// MarkFailedPermanent dead-letters an item immediately, regardless of
// remaining attempts. Used for faults retries cannot fix, such as a missing
// credential or a destination schema mismatch.
func (r *QueueRepo) MarkFailedPermanent(ctx context.Context, id string, errMsg string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE queue_items
		SET status = $2, last_error = $3, updated_at = $4
		WHERE id = $1 AND status = $5`,
		id, model.QueueStatusFailed, truncateError(errMsg), time.Now().UTC(), model.QueueStatusProcessing)
	if err != nil {
		return fmt.Errorf("mark failed permanent: %w", err)
	}
	return requireRow(res, "queue item")
}

// RequeueStuck resolves items stranded in processing (a worker died without
// reporting an outcome). Items with attempts left return to pending; items
// that burned their last attempt become dead letters, since the claim path
// would never hand them out again and nothing else can finalize them. An
// advisory lock keeps overlapping sweeps from doing redundant work.
func (r *QueueRepo) RequeueStuck(ctx context.Context, olderThan time.Duration, maxAttempts, limit int) (int, error) {
	var swept int
	err := pgxutil.WithSQLTx(ctx, r.db, func(tx *sql.Tx) error {
		var locked bool
		if err := tx.QueryRowContext(ctx,
			`SELECT pg_try_advisory_xact_lock(hashtext('queue_items_requeue'))`).Scan(&locked); err != nil {
			return err
		}
		if !locked {
			return nil
		}
		cutoff := time.Now().UTC().Add(-olderThan)
		res, err := tx.ExecContext(ctx, `
			UPDATE queue_items
			SET status = CASE WHEN attempts >= $3 THEN 'failed' ELSE 'pending' END,
				last_error = CASE WHEN attempts >= $3
					THEN COALESCE(last_error, 'abandoned in processing with no attempts left')
					ELSE last_error END,
				updated_at = $4
			WHERE id IN (
				SELECT id FROM queue_items
				WHERE status = 'processing' AND last_attempt_at < $1
				ORDER BY last_attempt_at
				LIMIT $2
			)`,
			cutoff, limit, maxAttempts, time.Now().UTC())
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		swept = int(n)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("requeue stuck: %w", err)
	}
	return swept, nil
}

// DeleteOldDeadLetters prunes failed items past the retention window.
func (r *QueueRepo) DeleteOldDeadLetters(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM queue_items
		WHERE id IN (
			SELECT id FROM queue_items
			WHERE status = 'failed' AND updated_at < $1
			ORDER BY updated_at
			LIMIT $2
		)`,
		cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("delete dead letters: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Stats returns per-status counts for the operational surface.
func (r *QueueRepo) Stats(ctx context.Context) (*model.QueueStats, error) {
	stats := &model.QueueStats{}
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM queue_items GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status model.QueueItemStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		switch status {
		case model.QueueStatusPending:
			stats.Pending = count
		case model.QueueStatusProcessing:
			stats.Processing = count
		case model.QueueStatusProcessed:
			stats.Processed = count
		case model.QueueStatusFailed:
			stats.Failed = count
		}
	}
	return stats, rows.Err()
}

// Postgres text columns have no practical limit but unbounded driver errors
// bloat the table; keep the last_error snippet short. The cut lands on a
// rune boundary because Postgres rejects text with a torn UTF-8 sequence.
func truncateError(msg string) string {
	const max = 1024
	if len(msg) <= max {
		return msg
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut]
}
