package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pgError(code string) error {
	return &pgconn.PgError{Code: code, Message: "pg error " + code}
}

func TestClassifyDestination(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{"undefined table", pgError(pgerrcode.UndefinedTable), KindSchema},
		{"undefined column", pgError(pgerrcode.UndefinedColumn), KindSchema},
		{"datatype mismatch", pgError(pgerrcode.DatatypeMismatch), KindSchema},
		{"not null violation", pgError(pgerrcode.NotNullViolation), KindSchema},
		{"invalid text representation", pgError(pgerrcode.InvalidTextRepresentation), KindSchema},
		{"invalid password", pgError(pgerrcode.InvalidPassword), KindUnauthorized},
		{"invalid authorization", pgError(pgerrcode.InvalidAuthorizationSpecification), KindUnauthorized},
		{"insufficient privilege", pgError(pgerrcode.InsufficientPrivilege), KindUnauthorized},
		{"too many connections", pgError(pgerrcode.TooManyConnections), KindUnavailable},
		{"cannot connect now", pgError(pgerrcode.CannotConnectNow), KindUnavailable},
		{"serialization failure", pgError(pgerrcode.SerializationFailure), KindUnavailable},
		{"deadlock", pgError(pgerrcode.DeadlockDetected), KindUnavailable},
		{"connection exception", pgError(pgerrcode.ConnectionFailure), KindUnavailable},
		{"unique violation falls back to internal", pgError(pgerrcode.UniqueViolation), KindInternal},
		{"deadline exceeded", context.DeadlineExceeded, KindUnavailable},
		{"cancelled", context.Canceled, KindUnavailable},
		{"plain network error", errors.New("dial tcp: connection refused"), KindUnavailable},
		{"wrapped pg error", fmt.Errorf("exec insert: %w", pgError(pgerrcode.UndefinedTable)), KindSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := ClassifyDestination(tt.err)
			require.NotNil(t, classified)
			assert.Equal(t, tt.kind, classified.Kind)
		})
	}
}

func TestClassifyDestination_Nil(t *testing.T) {
	assert.Nil(t, ClassifyDestination(nil))
}

func TestClassifyDestination_PreservesCause(t *testing.T) {
	cause := pgError(pgerrcode.UndefinedTable)
	classified := ClassifyDestination(cause)

	var pgErr *pgconn.PgError
	require.ErrorAs(t, classified, &pgErr)
	assert.Equal(t, pgerrcode.UndefinedTable, pgErr.Code)
}

func TestPermanent(t *testing.T) {
	assert.True(t, Permanent(E(KindSchema, "bad table", nil)))
	assert.True(t, Permanent(E(KindUnauthorized, "bad password", nil)))
	assert.True(t, Permanent(E(KindInvalid, "bad payload", nil)))
	assert.False(t, Permanent(E(KindUnavailable, "down", nil)))
	assert.False(t, Permanent(E(KindInternal, "bug", nil)))
	assert.False(t, Permanent(errors.New("unclassified")))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(E(KindNotFound, "missing", nil)))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrapped: %w", E(KindNotFound, "missing", nil))))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.True(t, IsKind(E(KindConflict, "in use", nil), KindConflict))
}
