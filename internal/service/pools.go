package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"

	"github.com/tailfin-labs/tailfin/internal/core"
	"github.com/tailfin-labs/tailfin/internal/domain/model"
	apperrors "github.com/tailfin-labs/tailfin/internal/errors"
)

// closeGrace bounds how long Close waits for in-flight destination queries.
const closeGrace = 10 * time.Second

// PoolRegistry hands out one connection pool per destination credential.
// Pools are created lazily on first acquire; a singleflight group collapses
// concurrent first acquires for the same credential into one dial.
type PoolRegistry struct {
	maxConns    int32
	idleTimeout time.Duration
	logger      *slog.Logger

	mu    sync.RWMutex
	pools map[string]*pgxpool.Pool
	group singleflight.Group
}

// PoolRegistryOptions configures a PoolRegistry.
type PoolRegistryOptions struct {
	MaxConns    int
	IdleTimeout time.Duration
	Logger      *slog.Logger
}

func NewPoolRegistry(opts PoolRegistryOptions) *PoolRegistry {
	maxConns := opts.MaxConns
	if maxConns < 1 {
		maxConns = 4
	}
	idle := opts.IdleTimeout
	if idle <= 0 {
		idle = 5 * time.Minute
	}
	return &PoolRegistry{
		maxConns:    int32(maxConns),
		idleTimeout: idle,
		logger:      opts.Logger.With("component", "destination_pools"),
		pools:       make(map[string]*pgxpool.Pool),
	}
}

// Acquire returns a Destination backed by the credential's pool, dialing it
// on first use. A failed ping classifies the error so callers can tell auth
// faults from transient connectivity.
func (r *PoolRegistry) Acquire(ctx context.Context, cred *model.Credential) (core.Destination, error) {
	r.mu.RLock()
	pool, ok := r.pools[cred.ID]
	r.mu.RUnlock()
	if ok {
		return &pooledDestination{pool: pool}, nil
	}

	result, err, _ := r.group.Do(cred.ID, func() (any, error) {
		r.mu.RLock()
		existing, ok := r.pools[cred.ID]
		r.mu.RUnlock()
		if ok {
			return existing, nil
		}

		cfg, err := pgxpool.ParseConfig(cred.DSN())
		if err != nil {
			return nil, apperrors.E(apperrors.KindInvalid, "invalid destination config", err)
		}
		cfg.MaxConns = r.maxConns
		cfg.MaxConnIdleTime = r.idleTimeout

		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, apperrors.E(apperrors.KindUnavailable, "destination pool create failed", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, apperrors.ClassifyDestination(err)
		}

		r.mu.Lock()
		r.pools[cred.ID] = pool
		r.mu.Unlock()
		r.logger.InfoContext(ctx, "destination pool opened", "credential_id", cred.ID)
		return pool, nil
	})
	if err != nil {
		return nil, fmt.Errorf("acquire destination: %w", err)
	}
	return &pooledDestination{pool: result.(*pgxpool.Pool)}, nil
}

// Evict closes and forgets a credential's pool. Called when the credential is
// deleted or its jobs hit auth failures.
func (r *PoolRegistry) Evict(credID string) {
	r.mu.Lock()
	pool, ok := r.pools[credID]
	if ok {
		delete(r.pools, credID)
	}
	r.mu.Unlock()
	if ok {
		pool.Close()
		r.logger.Info("destination pool evicted", "credential_id", credID)
	}
}

// Close shuts down every pool, waiting at most the grace period for in-flight
// queries. Pools that do not drain in time are abandoned so shutdown cannot
// hang on a wedged destination.
func (r *PoolRegistry) Close() {
	r.mu.Lock()
	pools := r.pools
	r.pools = make(map[string]*pgxpool.Pool)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, pool := range pools {
			pool.Close()
		}
	}()

	select {
	case <-done:
	case <-time.After(closeGrace):
		r.logger.Warn("destination pools did not drain before shutdown grace expired")
	}
}

type pooledDestination struct {
	pool *pgxpool.Pool
}

func (d *pooledDestination) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := d.pool.Exec(ctx, sql, args...)
	return err
}
