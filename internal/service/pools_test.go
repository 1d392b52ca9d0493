package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailfin-labs/tailfin/internal/domain/model"
	"github.com/tailfin-labs/tailfin/internal/testutil"
)

func testDestinationCredential(t *testing.T) *model.Credential {
	t.Helper()
	cfg := testutil.DefaultTestDBConfig()
	port, err := strconv.Atoi(cfg.Port)
	require.NoError(t, err)
	return &model.Credential{
		ID:       "cred-pool-test",
		Host:     cfg.Host,
		Port:     port,
		Database: cfg.DBName,
		Username: cfg.User,
		Password: cfg.Password,
		SSLMode:  "disable",
	}
}

func TestPoolRegistry_AcquireAndReuse(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	registry := NewPoolRegistry(PoolRegistryOptions{MaxConns: 2, Logger: testLogger()})
	defer registry.Close()
	ctx := context.Background()
	cred := testDestinationCredential(t)

	dest, err := registry.Acquire(ctx, cred)
	require.NoError(t, err)
	require.NoError(t, dest.Exec(ctx, "SELECT 1"))

	// Second acquire reuses the cached pool.
	again, err := registry.Acquire(ctx, cred)
	require.NoError(t, err)
	require.NoError(t, again.Exec(ctx, "SELECT 1"))
}

func TestPoolRegistry_AcquireBadCredential(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	registry := NewPoolRegistry(PoolRegistryOptions{Logger: testLogger()})
	defer registry.Close()

	cred := testDestinationCredential(t)
	cred.ID = "cred-bad-password"
	cred.Password = "definitely-wrong"

	_, err := registry.Acquire(context.Background(), cred)
	require.Error(t, err)
}

func TestPoolRegistry_Evict(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	registry := NewPoolRegistry(PoolRegistryOptions{Logger: testLogger()})
	defer registry.Close()
	ctx := context.Background()
	cred := testDestinationCredential(t)

	_, err := registry.Acquire(ctx, cred)
	require.NoError(t, err)

	registry.Evict(cred.ID)
	// Evicting an unknown credential is a no-op.
	registry.Evict("never-acquired")

	dest, err := registry.Acquire(ctx, cred)
	require.NoError(t, err)
	assert.NoError(t, dest.Exec(ctx, "SELECT 1"))
}
