package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailfin-labs/tailfin/internal/domain/model"
	"github.com/tailfin-labs/tailfin/internal/testutil"
)

func newTestQueueRepo(db *sql.DB) *QueueRepo {
	return NewQueueRepo(QueueRepoOptions{DB: db, Logger: testLogger()})
}

func enqueue(t *testing.T, db *sql.DB, jobID string, n int) {
	t.Helper()
	repo := newTestQueueRepo(db)
	items := make([]model.NewQueueItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, model.NewQueueItem{
			JobID:   jobID,
			Payload: json.RawMessage(`{"signature":"sig"}`),
		})
	}
	inserted, err := repo.BulkInsert(context.Background(), items)
	require.NoError(t, err)
	require.Equal(t, n, inserted)
}

func TestQueueRepo_BulkInsert_Empty(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		inserted, err := newTestQueueRepo(db).BulkInsert(context.Background(), nil)
		require.NoError(t, err)
		assert.Zero(t, inserted)
	})
}

func TestQueueRepo_BulkInsert_RejectsInvalidItem(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		_, err := newTestQueueRepo(db).BulkInsert(context.Background(), []model.NewQueueItem{
			{JobID: "", Payload: json.RawMessage(`{}`)},
		})
		require.Error(t, err)
	})
}

func TestQueueRepo_ClaimNext(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		cred := seedCredential(t, db)
		job := seedJob(t, db, cred.ID, model.JobStatusActive)
		repo := newTestQueueRepo(db)
		ctx := context.Background()

		enqueue(t, db, job.ID, 1)

		item, err := repo.ClaimNext(ctx, 3)
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, job.ID, item.JobID)
		assert.Equal(t, model.QueueStatusProcessing, item.Status)
		assert.Equal(t, 1, item.Attempts)
		require.NotNil(t, item.LastAttemptAt)

		// Claimed item is invisible to the next claimer.
		second, err := repo.ClaimNext(ctx, 3)
		require.NoError(t, err)
		assert.Nil(t, second)
	})
}

func TestQueueRepo_ClaimNext_EmptyQueue(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		item, err := newTestQueueRepo(db).ClaimNext(context.Background(), 3)
		require.NoError(t, err)
		assert.Nil(t, item)
	})
}

func TestQueueRepo_ClaimNext_SkipsExhaustedItems(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		cred := seedCredential(t, db)
		job := seedJob(t, db, cred.ID, model.JobStatusActive)
		repo := newTestQueueRepo(db)
		ctx := context.Background()

		enqueue(t, db, job.ID, 1)

		// Burn the full attempt budget.
		for i := 0; i < 2; i++ {
			item, err := repo.ClaimNext(ctx, 2)
			require.NoError(t, err)
			require.NotNil(t, item)
			require.NoError(t, repo.MarkFailed(ctx, item.ID, "destination down", 2))
		}

		item, err := repo.ClaimNext(ctx, 2)
		require.NoError(t, err)
		assert.Nil(t, item)

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.Failed)
	})
}

func TestQueueRepo_ClaimNext_ConcurrentClaimersNeverShareItems(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		cred := seedCredential(t, db)
		job := seedJob(t, db, cred.ID, model.JobStatusActive)
		repo := newTestQueueRepo(db)
		ctx := context.Background()

		const total = 24
		enqueue(t, db, job.ID, total)

		var (
			mu      sync.Mutex
			claimed = make(map[string]int)
		)
		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					item, err := repo.ClaimNext(ctx, 3)
					if err != nil {
						t.Error(err)
						return
					}
					if item == nil {
						return
					}
					mu.Lock()
					claimed[item.ID]++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Len(t, claimed, total)
		for id, n := range claimed {
			assert.Equal(t, 1, n, "item %s claimed more than once", id)
		}
	})
}

func TestQueueRepo_MarkProcessed(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		cred := seedCredential(t, db)
		job := seedJob(t, db, cred.ID, model.JobStatusActive)
		repo := newTestQueueRepo(db)
		ctx := context.Background()

		enqueue(t, db, job.ID, 1)
		item, err := repo.ClaimNext(ctx, 3)
		require.NoError(t, err)
		require.NotNil(t, item)

		require.NoError(t, repo.MarkProcessed(ctx, item.ID))

		// Terminal transitions only apply to processing items.
		err = repo.MarkProcessed(ctx, item.ID)
		require.Error(t, err)
	})
}

func TestQueueRepo_MarkFailed_ReturnsToPendingWithBudget(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		cred := seedCredential(t, db)
		job := seedJob(t, db, cred.ID, model.JobStatusActive)
		repo := newTestQueueRepo(db)
		ctx := context.Background()

		enqueue(t, db, job.ID, 1)
		item, err := repo.ClaimNext(ctx, 3)
		require.NoError(t, err)
		require.NotNil(t, item)

		require.NoError(t, repo.MarkFailed(ctx, item.ID, "transient", 3))

		reclaimed, err := repo.ClaimNext(ctx, 3)
		require.NoError(t, err)
		require.NotNil(t, reclaimed)
		assert.Equal(t, item.ID, reclaimed.ID)
		assert.Equal(t, 2, reclaimed.Attempts)
		require.NotNil(t, reclaimed.LastError)
		assert.Equal(t, "transient", *reclaimed.LastError)
	})
}

func TestQueueRepo_MarkFailedPermanent(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		cred := seedCredential(t, db)
		job := seedJob(t, db, cred.ID, model.JobStatusActive)
		repo := newTestQueueRepo(db)
		ctx := context.Background()

		enqueue(t, db, job.ID, 1)
		item, err := repo.ClaimNext(ctx, 5)
		require.NoError(t, err)
		require.NotNil(t, item)

		require.NoError(t, repo.MarkFailedPermanent(ctx, item.ID, "schema mismatch"))

		next, err := repo.ClaimNext(ctx, 5)
		require.NoError(t, err)
		assert.Nil(t, next)

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.Failed)
	})
}

func TestQueueRepo_RequeueStuck(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		cred := seedCredential(t, db)
		job := seedJob(t, db, cred.ID, model.JobStatusActive)
		repo := newTestQueueRepo(db)
		ctx := context.Background()

		enqueue(t, db, job.ID, 1)
		item, err := repo.ClaimNext(ctx, 5)
		require.NoError(t, err)
		require.NotNil(t, item)

		// Backdate the claim so it looks abandoned.
		_, err = db.ExecContext(ctx,
			`UPDATE queue_items SET last_attempt_at = $2 WHERE id = $1`,
			item.ID, time.Now().UTC().Add(-time.Hour))
		require.NoError(t, err)

		requeued, err := repo.RequeueStuck(ctx, 5*time.Minute, 5, 100)
		require.NoError(t, err)
		assert.Equal(t, 1, requeued)

		reclaimed, err := repo.ClaimNext(ctx, 5)
		require.NoError(t, err)
		require.NotNil(t, reclaimed)
		assert.Equal(t, item.ID, reclaimed.ID)
	})
}

func TestQueueRepo_RequeueStuck_DeadLettersExhaustedItems(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		cred := seedCredential(t, db)
		job := seedJob(t, db, cred.ID, model.JobStatusActive)
		repo := newTestQueueRepo(db)
		ctx := context.Background()

		enqueue(t, db, job.ID, 1)

		// Burn the budget down to the last attempt, then abandon the final
		// claim as if the worker crashed mid-write.
		const maxAttempts = 2
		item, err := repo.ClaimNext(ctx, maxAttempts)
		require.NoError(t, err)
		require.NotNil(t, item)
		require.NoError(t, repo.MarkFailed(ctx, item.ID, "destination down", maxAttempts))

		item, err = repo.ClaimNext(ctx, maxAttempts)
		require.NoError(t, err)
		require.NotNil(t, item)
		require.Equal(t, maxAttempts, item.Attempts)

		_, err = db.ExecContext(ctx,
			`UPDATE queue_items SET last_attempt_at = $2 WHERE id = $1`,
			item.ID, time.Now().UTC().Add(-time.Hour))
		require.NoError(t, err)

		swept, err := repo.RequeueStuck(ctx, 5*time.Minute, maxAttempts, 100)
		require.NoError(t, err)
		assert.Equal(t, 1, swept)

		// The item must land in failed, not pending; a pending item with no
		// attempts left would be invisible to every claimer forever.
		var status string
		require.NoError(t, db.QueryRowContext(ctx,
			`SELECT status FROM queue_items WHERE id = $1`, item.ID).Scan(&status))
		assert.Equal(t, "failed", status)

		next, err := repo.ClaimNext(ctx, maxAttempts)
		require.NoError(t, err)
		assert.Nil(t, next)
	})
}

func TestQueueRepo_RequeueStuck_LeavesFreshClaims(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		cred := seedCredential(t, db)
		job := seedJob(t, db, cred.ID, model.JobStatusActive)
		repo := newTestQueueRepo(db)
		ctx := context.Background()

		enqueue(t, db, job.ID, 1)
		_, err := repo.ClaimNext(ctx, 5)
		require.NoError(t, err)

		requeued, err := repo.RequeueStuck(ctx, 5*time.Minute, 5, 100)
		require.NoError(t, err)
		assert.Zero(t, requeued)
	})
}

func TestQueueRepo_DeleteOldDeadLetters(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		cred := seedCredential(t, db)
		job := seedJob(t, db, cred.ID, model.JobStatusActive)
		repo := newTestQueueRepo(db)
		ctx := context.Background()

		enqueue(t, db, job.ID, 1)
		item, err := repo.ClaimNext(ctx, 5)
		require.NoError(t, err)
		require.NoError(t, repo.MarkFailedPermanent(ctx, item.ID, "dead"))

		// Too young to prune.
		deleted, err := repo.DeleteOldDeadLetters(ctx, time.Hour, 100)
		require.NoError(t, err)
		assert.Zero(t, deleted)

		_, err = db.ExecContext(ctx,
			`UPDATE queue_items SET updated_at = $2 WHERE id = $1`,
			item.ID, time.Now().UTC().Add(-48*time.Hour))
		require.NoError(t, err)

		deleted, err = repo.DeleteOldDeadLetters(ctx, time.Hour, 100)
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)
	})
}

func TestQueueRepo_Stats(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		cred := seedCredential(t, db)
		job := seedJob(t, db, cred.ID, model.JobStatusActive)
		repo := newTestQueueRepo(db)
		ctx := context.Background()

		enqueue(t, db, job.ID, 3)
		item, err := repo.ClaimNext(ctx, 5)
		require.NoError(t, err)
		require.NoError(t, repo.MarkProcessed(ctx, item.ID))

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Pending)
		assert.Equal(t, int64(0), stats.Processing)
		assert.Equal(t, int64(1), stats.Processed)
		assert.Equal(t, int64(0), stats.Failed)
	})
}

func TestTruncateError_CutsOnRuneBoundary(t *testing.T) {
	short := "destination down"
	assert.Equal(t, short, truncateError(short))

	// A multibyte rune straddling the cut must be dropped whole; Postgres
	// rejects text containing a torn UTF-8 sequence.
	long := strings.Repeat("x", 1023) + "é" + strings.Repeat("y", 10)
	got := truncateError(long)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("x", 1023), got)

	ascii := strings.Repeat("a", 2000)
	assert.Len(t, truncateError(ascii), 1024)
}

func TestQueueRepo_JobDeletionCascades(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		cred := seedCredential(t, db)
		job := seedJob(t, db, cred.ID, model.JobStatusActive)
		ctx := context.Background()

		enqueue(t, db, job.ID, 2)
		require.NoError(t, newTestJobRepo(db).Delete(ctx, job.ID))

		stats, err := newTestQueueRepo(db).Stats(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.Pending)
	})
}
