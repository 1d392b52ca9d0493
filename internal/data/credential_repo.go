package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tailfin-labs/tailfin/internal/data/cryptoutil"
	"github.com/tailfin-labs/tailfin/internal/data/pgxutil"
	"github.com/tailfin-labs/tailfin/internal/domain/model"
	apperrors "github.com/tailfin-labs/tailfin/internal/errors"
)

// CredentialRepo persists destination credentials with the password encrypted
// at rest.
type CredentialRepo struct {
	db        *sql.DB
	encryptor cryptoutil.Encryptor
	logger    *slog.Logger
}

// CredentialRepoOptions configures a CredentialRepo.
type CredentialRepoOptions struct {
	DB        *sql.DB
	Encryptor cryptoutil.Encryptor
	Logger    *slog.Logger
}

func NewCredentialRepo(opts CredentialRepoOptions) *CredentialRepo {
	return &CredentialRepo{
		db:        opts.DB,
		encryptor: opts.Encryptor,
		logger:    opts.Logger.With("component", "credential_repo"),
	}
}

const credentialColumns = `id, user_id, name, host, port, database, username,
	password, ssl_mode, created_at, updated_at`

// Create encrypts the password and inserts the credential.
func (r *CredentialRepo) Create(ctx context.Context, userID string, req *model.CreateCredentialRequest) (*model.Credential, error) {
	sealed, err := r.encryptor.Encrypt([]byte(req.Password))
	if err != nil {
		return nil, fmt.Errorf("encrypt password: %w", err)
	}

	now := time.Now().UTC()
	cred := &model.Credential{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      req.Name,
		Host:      req.Host,
		Port:      req.Port,
		Database:  req.Database,
		Username:  req.Username,
		Password:  req.Password,
		SSLMode:   req.SSLMode,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO credentials (id, user_id, name, host, port, database, username, password, ssl_mode, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		cred.ID, cred.UserID, cred.Name, cred.Host, cred.Port, cred.Database,
		cred.Username, sealed, cred.SSLMode, cred.CreatedAt, cred.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert credential: %w", err)
	}
	return cred, nil
}

// Get fetches one credential with the password decrypted.
func (r *CredentialRepo) Get(ctx context.Context, id string) (*model.Credential, error) {
	var cred *model.Credential
	err := pgxutil.WithPgxConn(ctx, r.db, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+credentialColumns+` FROM credentials WHERE id = $1`, id)
		if err != nil {
			return err
		}
		cred, err = pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Credential])
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.E(apperrors.KindNotFound, "credential not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}

	plain, err := r.encryptor.Decrypt(cred.Password)
	if err != nil {
		// Retrying cannot fix a key mismatch, so callers treat this as permanent.
		return nil, apperrors.E(apperrors.KindInvalid, "decrypt credential", err)
	}
	cred.Password = string(plain)
	return cred, nil
}

// List returns a user's credentials with passwords redacted.
func (r *CredentialRepo) List(ctx context.Context, userID string) ([]model.Credential, error) {
	var creds []model.Credential
	err := pgxutil.WithPgxConn(ctx, r.db, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+credentialColumns+` FROM credentials WHERE user_id = $1 ORDER BY created_at DESC`, userID)
		if err != nil {
			return err
		}
		creds, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Credential])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	for i := range creds {
		creds[i].Password = ""
	}
	return creds, nil
}

// Delete removes a credential. Deletion is rejected while jobs still
// reference it.
func (r *CredentialRepo) Delete(ctx context.Context, id string) error {
	var inUse int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jobs WHERE credential_id = $1`, id).Scan(&inUse); err != nil {
		return fmt.Errorf("check credential use: %w", err)
	}
	if inUse > 0 {
		return apperrors.E(apperrors.KindConflict,
			fmt.Sprintf("credential is referenced by %d job(s)", inUse), nil)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return requireRow(res, "credential")
}
