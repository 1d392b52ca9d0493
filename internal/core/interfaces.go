// Package core defines the ports between the service layer and its
// collaborators. Mocks for these interfaces live in internal/mocks.
package core

import (
	"context"
	"time"

	"github.com/tailfin-labs/tailfin/internal/domain/model"
)

// JobRepository persists monitoring jobs.
type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	Get(ctx context.Context, id string) (*model.Job, error)
	List(ctx context.Context, userID string) ([]model.Job, error)
	ListActive(ctx context.Context) ([]model.Job, error)
	UpdateStatus(ctx context.Context, id string, status model.JobStatus) error
	SetError(ctx context.Context, id string, msg string) error
	TouchLastEvent(ctx context.Context, ids []string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// CredentialRepository persists destination-database credentials, secrets
// encrypted at rest.
type CredentialRepository interface {
	Create(ctx context.Context, userID string, req *model.CreateCredentialRequest) (*model.Credential, error)
	Get(ctx context.Context, id string) (*model.Credential, error)
	List(ctx context.Context, userID string) ([]model.Credential, error)
	Delete(ctx context.Context, id string) error
}

// QueueRepository is the durable work queue. ClaimNext returns (nil, nil)
// when no item is eligible.
type QueueRepository interface {
	BulkInsert(ctx context.Context, items []model.NewQueueItem) (int, error)
	ClaimNext(ctx context.Context, maxAttempts int) (*model.QueueItem, error)
	MarkProcessed(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string, maxAttempts int) error
	MarkFailedPermanent(ctx context.Context, id string, errMsg string) error
	RequeueStuck(ctx context.Context, olderThan time.Duration, maxAttempts, limit int) (int, error)
	DeleteOldDeadLetters(ctx context.Context, olderThan time.Duration, limit int) (int, error)
	Stats(ctx context.Context) (*model.QueueStats, error)
}

// SubscriptionClient edits the single upstream webhook subscription. Edits
// replace the full address list.
type SubscriptionClient interface {
	ReplaceAddresses(ctx context.Context, addresses []string) error
}

// DirectoryCache caches the address directory between rebuilds.
type DirectoryCache interface {
	Get(ctx context.Context) (model.Directory, bool, error)
	Set(ctx context.Context, dir model.Directory, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// Destination executes writes against a user's database.
type Destination interface {
	Exec(ctx context.Context, sql string, args ...any) error
}

// DestinationPools hands out live connections to destination databases keyed
// by credential.
type DestinationPools interface {
	Acquire(ctx context.Context, cred *model.Credential) (Destination, error)
	Evict(credID string)
	Close()
}
