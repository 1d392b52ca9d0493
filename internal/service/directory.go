// Package service contains the pipeline services: directory and
// reconciliation, webhook matching, delivery worker and queue sweeper.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tailfin-labs/tailfin/internal/core"
	"github.com/tailfin-labs/tailfin/internal/domain/model"
)

// DirectoryService builds the address directory from active jobs and keeps a
// cached copy so webhook batches do not hit the jobs table on every delivery.
type DirectoryService struct {
	jobs     core.JobRepository
	cache    core.DirectoryCache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// DirectoryServiceOptions configures a DirectoryService.
type DirectoryServiceOptions struct {
	Jobs     core.JobRepository
	Cache    core.DirectoryCache
	CacheTTL time.Duration
	Logger   *slog.Logger
}

func NewDirectoryService(opts DirectoryServiceOptions) *DirectoryService {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DirectoryService{
		jobs:     opts.Jobs,
		cache:    opts.Cache,
		cacheTTL: ttl,
		logger:   opts.Logger.With("component", "directory"),
	}
}

// Current returns the directory, preferring the cache. Cache failures fall
// back to a rebuild so webhook matching keeps working without Redis.
func (s *DirectoryService) Current(ctx context.Context) (model.Directory, error) {
	if s.cache != nil {
		dir, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "directory cache unavailable, rebuilding", "error", err)
		} else if ok {
			return dir, nil
		}
	}
	return s.Rebuild(ctx)
}

// Rebuild derives the directory from active jobs and refreshes the cache.
func (s *DirectoryService) Rebuild(ctx context.Context) (model.Directory, error) {
	jobs, err := s.jobs.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("rebuild directory: %w", err)
	}

	dir := BuildDirectory(jobs)
	if s.cache != nil {
		if err := s.cache.Set(ctx, dir, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "directory cache write failed", "error", err)
		}
	}
	return dir, nil
}

// Invalidate drops the cached directory after a job mutation.
func (s *DirectoryService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "directory cache invalidate failed", "error", err)
	}
}

// BuildDirectory maps monitored address to the jobs watching it. Jobs whose
// params fail to yield an address are skipped; they cannot match anything.
func BuildDirectory(jobs []model.Job) model.Directory {
	dir := make(model.Directory, len(jobs))
	for _, job := range jobs {
		addr, ok := job.MonitoredAddress()
		if !ok {
			continue
		}
		dir[addr] = append(dir[addr], model.DirectoryEntry{
			JobID:    job.ID,
			Category: job.Category,
		})
	}
	return dir
}
