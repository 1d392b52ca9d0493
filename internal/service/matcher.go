package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tailfin-labs/tailfin/internal/core"
	"github.com/tailfin-labs/tailfin/internal/domain/model"
)

// MatchResult summarizes one webhook batch pass.
type MatchResult struct {
	Events   int
	Matched  int
	Enqueued int
}

// Matcher fans incoming webhook batches out to queue items. It holds no state
// beyond its dependencies; every batch is matched against the directory
// current at delivery time.
type Matcher struct {
	directory *DirectoryService
	queue     core.QueueRepository
	jobs      core.JobRepository
	extractor *AccountExtractor
	logger    *slog.Logger
}

// MatcherOptions configures a Matcher.
type MatcherOptions struct {
	Directory *DirectoryService
	Queue     core.QueueRepository
	Jobs      core.JobRepository
	Extractor *AccountExtractor
	Logger    *slog.Logger
}

func NewMatcher(opts MatcherOptions) *Matcher {
	extractor := opts.Extractor
	if extractor == nil {
		extractor = NewAccountExtractor(nil)
	}
	return &Matcher{
		directory: opts.Directory,
		queue:     opts.Queue,
		jobs:      opts.Jobs,
		extractor: extractor,
		logger:    opts.Logger.With("component", "matcher"),
	}
}

// MatchBatch matches every event in a decoded webhook batch against the
// address directory and enqueues one item per (job, event) pair. Events
// matching no job are dropped; the subscription may briefly lag job
// mutations, so unmatched events are expected, not errors.
func (m *Matcher) MatchBatch(ctx context.Context, raw []json.RawMessage) (*MatchResult, error) {
	result := &MatchResult{Events: len(raw)}
	if len(raw) == 0 {
		return result, nil
	}

	dir, err := m.directory.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("match batch: %w", err)
	}
	if len(dir) == 0 {
		return result, nil
	}

	var items []model.NewQueueItem
	touched := make(map[string]struct{})
	for _, payload := range raw {
		entries := m.matchEvent(payload, dir)
		if len(entries) == 0 {
			continue
		}
		result.Matched++
		for _, entry := range entries {
			items = append(items, model.NewQueueItem{JobID: entry.JobID, Payload: payload})
			touched[entry.JobID] = struct{}{}
		}
	}

	if len(items) > 0 {
		inserted, err := m.queue.BulkInsert(ctx, items)
		if err != nil {
			return nil, fmt.Errorf("enqueue batch: %w", err)
		}
		result.Enqueued = inserted

		ids := make([]string, 0, len(touched))
		for id := range touched {
			ids = append(ids, id)
		}
		if err := m.jobs.TouchLastEvent(ctx, ids, time.Now()); err != nil {
			// Delivery already committed; the timestamp is advisory.
			m.logger.WarnContext(ctx, "failed to touch last event", "error", err)
		}
	}

	m.logger.InfoContext(ctx, "batch matched",
		"events", result.Events, "matched", result.Matched, "enqueued", result.Enqueued)
	return result, nil
}

// matchEvent returns, deduplicated, every directory entry whose address the
// event touches. One event can match several jobs and one job at most once.
func (m *Matcher) matchEvent(payload json.RawMessage, dir model.Directory) []model.DirectoryEntry {
	accounts := make(map[string]struct{})

	var event model.EnhancedEvent
	if err := json.Unmarshal(payload, &event); err == nil {
		for addr := range event.InvolvedAccounts() {
			accounts[addr] = struct{}{}
		}
	}

	var decoded any
	if err := json.Unmarshal(payload, &decoded); err == nil {
		m.extractor.Extract(decoded, accounts)
	}

	var entries []model.DirectoryEntry
	seen := make(map[string]struct{})
	for addr := range accounts {
		for _, entry := range dir[addr] {
			if _, dup := seen[entry.JobID]; dup {
				continue
			}
			seen[entry.JobID] = struct{}{}
			entries = append(entries, entry)
		}
	}
	return entries
}
