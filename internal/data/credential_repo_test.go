package data

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailfin-labs/tailfin/internal/data/cryptoutil"
	"github.com/tailfin-labs/tailfin/internal/domain/model"
	apperrors "github.com/tailfin-labs/tailfin/internal/errors"
	"github.com/tailfin-labs/tailfin/internal/testutil"
)

func testKey() []byte {
	// Derive a deterministic 32-byte key from a phrase for tests
	sum := sha256.Sum256([]byte("tailfin-test-key"))
	return sum[:]
}

func newTestCredentialRepo(t *testing.T, db *sql.DB) *CredentialRepo {
	t.Helper()
	enc, err := cryptoutil.NewAESGCMEncryptor(testKey())
	require.NoError(t, err)
	return NewCredentialRepo(CredentialRepoOptions{DB: db, Encryptor: enc, Logger: testLogger()})
}

func credentialRequest() *model.CreateCredentialRequest {
	return &model.CreateCredentialRequest{
		UserID:   "user-1",
		Name:     "prod sink",
		Host:     "dest.example.com",
		Port:     5432,
		Database: "events",
		Username: "writer",
		Password: "p@ss/word",
		SSLMode:  "require",
	}
}

func TestCredentialRepo_Create_Get_RoundTrip(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestCredentialRepo(t, db)
		ctx := context.Background()

		created, err := repo.Create(ctx, "user-1", credentialRequest())
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.Equal(t, "p@ss/word", created.Password)

		// Stored password must be ciphertext, not plaintext.
		var stored string
		require.NoError(t, db.QueryRowContext(ctx,
			`SELECT password FROM credentials WHERE id = $1`, created.ID).Scan(&stored))
		assert.True(t, strings.HasPrefix(stored, "tf1:"))
		assert.NotContains(t, stored, "p@ss/word")

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "p@ss/word", got.Password)
		assert.Equal(t, "dest.example.com", got.Host)
	})
}

func TestCredentialRepo_Get_NotFound(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestCredentialRepo(t, db)
		_, err := repo.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})
}

func TestCredentialRepo_List_RedactsPasswords(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestCredentialRepo(t, db)
		ctx := context.Background()

		_, err := repo.Create(ctx, "user-1", credentialRequest())
		require.NoError(t, err)

		creds, err := repo.List(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, creds, 1)
		assert.Empty(t, creds[0].Password)

		other, err := repo.List(ctx, "user-2")
		require.NoError(t, err)
		assert.Empty(t, other)
	})
}

func TestCredentialRepo_Delete_RejectedWhileReferenced(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestCredentialRepo(t, db)
		ctx := context.Background()

		cred, err := repo.Create(ctx, "user-1", credentialRequest())
		require.NoError(t, err)
		job := seedJob(t, db, cred.ID, model.JobStatusActive)

		err = repo.Delete(ctx, cred.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

		require.NoError(t, newTestJobRepo(db).Delete(ctx, job.ID))
		require.NoError(t, repo.Delete(ctx, cred.ID))

		_, err = repo.Get(ctx, cred.ID)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})
}
