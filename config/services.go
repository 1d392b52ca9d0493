package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server, including the webhook gateway.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeWorker runs the queue delivery worker.
	ServiceModeWorker ServiceMode = "worker"
	// ServiceModeSweeper runs the queue sweeper for stuck-item recovery
	// and dead-letter retention.
	ServiceModeSweeper ServiceMode = "sweeper"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeWorker, ServiceModeSweeper}
}

// ParseServices parses a comma-delimited string of service names and returns
// the enabled services. All names must be valid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		mode := ServiceMode(name)
		switch mode {
		case ServiceModeHTTP, ServiceModeWorker, ServiceModeSweeper:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: http, worker, sweeper)", name)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}
	return services, nil
}

// WorkerConfig contains delivery worker configuration.
type WorkerConfig struct {
	// PollInterval is the claim tick interval. Each tick claims at most one
	// item; deliveries run detached so a slow write never delays the tick.
	PollInterval time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"1s"`

	// MaxAttempts is the per-item attempt budget before dead-lettering.
	MaxAttempts int `env:"WORKER_MAX_ATTEMPTS" envDefault:"5"`

	// QueryTimeout bounds each destination write.
	QueryTimeout time.Duration `env:"WORKER_QUERY_TIMEOUT" envDefault:"15s"`

	// PoolMaxConns caps connections per destination credential.
	PoolMaxConns int `env:"WORKER_POOL_MAX_CONNS" envDefault:"4"`

	// PoolIdleTimeout closes destination connections idle this long.
	PoolIdleTimeout time.Duration `env:"WORKER_POOL_IDLE_TIMEOUT" envDefault:"5m"`

	// ShutdownGrace is how long in-flight items may finish on shutdown.
	ShutdownGrace time.Duration `env:"WORKER_SHUTDOWN_GRACE" envDefault:"20s"`
}

// Sanitize applies guardrails to worker configuration values.
func (w *WorkerConfig) Sanitize() {
	if w.PollInterval < 100*time.Millisecond {
		w.PollInterval = 100 * time.Millisecond
	}
	if w.MaxAttempts < 1 {
		w.MaxAttempts = 1
	}
	if w.QueryTimeout < time.Second {
		w.QueryTimeout = time.Second
	}
	if w.PoolMaxConns < 1 {
		w.PoolMaxConns = 1
	}
	if w.ShutdownGrace < time.Second {
		w.ShutdownGrace = time.Second
	}
}

// SweeperConfig contains queue sweeper configuration.
type SweeperConfig struct {
	// Interval is the sweeper tick interval.
	Interval time.Duration `env:"SWEEPER_INTERVAL" envDefault:"1m"`

	// StuckAfter is how long an item may sit in processing before it is
	// treated as abandoned and returned to pending.
	StuckAfter time.Duration `env:"SWEEPER_STUCK_AFTER" envDefault:"5m"`

	// DeadLetterMaxAge is the retention window for failed items.
	DeadLetterMaxAge time.Duration `env:"SWEEPER_DEAD_LETTER_MAX_AGE" envDefault:"168h"` // 7 days

	// BatchSize is the maximum number of rows to touch per sweep step.
	// Batching prevents long locks on a large queue table.
	BatchSize int `env:"SWEEPER_BATCH_SIZE" envDefault:"1000"`
}

// Sanitize applies guardrails to sweeper configuration values.
func (s *SweeperConfig) Sanitize() {
	if s.Interval < 10*time.Second {
		s.Interval = 10 * time.Second
	}
	if s.StuckAfter < 30*time.Second {
		s.StuckAfter = 30 * time.Second
	}
	if s.DeadLetterMaxAge < time.Hour {
		s.DeadLetterMaxAge = time.Hour
	}
	if s.BatchSize < 1 {
		s.BatchSize = 1
	}
	if s.BatchSize > 10000 {
		s.BatchSize = 10000
	}
}

// DirectoryConfig contains address-directory cache configuration.
type DirectoryConfig struct {
	// CacheTTL bounds how stale a cached directory may get if an
	// invalidation is missed.
	CacheTTL time.Duration `env:"DIRECTORY_CACHE_TTL" envDefault:"5m"`
}

// Sanitize applies guardrails to directory configuration values.
func (d *DirectoryConfig) Sanitize() {
	if d.CacheTTL < 10*time.Second {
		d.CacheTTL = 10 * time.Second
	}
}
