package model

import (
	"encoding/json"
	"errors"
	"time"
)

// QueueItemStatus represents where a queue item is in its delivery lifecycle.
type QueueItemStatus string

const (
	// QueueStatusPending indicates the item is waiting to be claimed.
	QueueStatusPending QueueItemStatus = "pending"
	// QueueStatusProcessing indicates the item is claimed by a worker.
	QueueStatusProcessing QueueItemStatus = "processing"
	// QueueStatusProcessed indicates the item was delivered or deliberately dropped.
	QueueStatusProcessed QueueItemStatus = "processed"
	// QueueStatusFailed indicates the item is a dead letter: it either exhausted
	// its attempt budget or hit a non-retryable fault, and is kept for inspection.
	QueueStatusFailed QueueItemStatus = "failed"
)

// Valid returns true if the QueueItemStatus is a known status.
func (s QueueItemStatus) Valid() bool {
	return s == QueueStatusPending || s == QueueStatusProcessing ||
		s == QueueStatusProcessed || s == QueueStatusFailed
}

// QueueItem is one matched (job, event) pair awaiting delivery to the job's
// destination table. Items are created by the matching gateway, mutated only
// by the claim primitive and worker outcome reports, and never deleted by the
// pipeline itself.
type QueueItem struct {
	ID            string          `json:"id"                        db:"id"`
	JobID         string          `json:"job_id"                    db:"job_id"`
	Payload       json.RawMessage `json:"payload"                   db:"payload"`
	Status        QueueItemStatus `json:"status"                    db:"status"`
	Attempts      int             `json:"attempts"                  db:"attempts"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty" db:"last_attempt_at"`
	LastError     *string         `json:"last_error,omitempty"      db:"last_error"`
	CreatedAt     time.Time       `json:"created_at"                db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"                db:"updated_at"`
}

// NewQueueItem carries the fields for one queue insertion.
type NewQueueItem struct {
	JobID   string
	Payload json.RawMessage
}

// Validate checks a queue insertion request.
func (n *NewQueueItem) Validate() error {
	if n.JobID == "" {
		return errors.New("job id is required")
	}
	if len(n.Payload) == 0 {
		return errors.New("payload is required")
	}
	return nil
}

// QueueStats reports item counts per status for operator inspection.
type QueueStats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Processed  int64 `json:"processed"`
	Failed     int64 `json:"failed"`
}
