package errors

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ClassifyDestination maps an error from a destination-database write to an
// AppError kind. Schema-shaped failures (missing table, missing column, type
// mismatch) are permanent and should pause the owning job rather than burn
// retries; authentication failures likewise. Transient connectivity problems
// stay retryable.
func ClassifyDestination(err error) *AppError {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UndefinedTable,
			pgerrcode.UndefinedColumn,
			pgerrcode.UndefinedFunction,
			pgerrcode.DatatypeMismatch,
			pgerrcode.InvalidTextRepresentation,
			pgerrcode.NotNullViolation,
			pgerrcode.StringDataRightTruncationDataException:
			return E(KindSchema, "destination schema mismatch", err)
		case pgerrcode.InvalidPassword, pgerrcode.InvalidAuthorizationSpecification:
			return E(KindUnauthorized, "destination auth failed", err)
		case pgerrcode.InsufficientPrivilege:
			return E(KindUnauthorized, "destination privilege denied", err)
		case pgerrcode.TooManyConnections, pgerrcode.CannotConnectNow:
			return E(KindUnavailable, "destination saturated", err)
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return E(KindUnavailable, "destination contention", err)
		}
		if pgerrcode.IsConnectionException(pgErr.Code) {
			return E(KindUnavailable, "destination connection failed", err)
		}
		return E(KindInternal, "destination write failed", err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return E(KindUnavailable, "destination timeout", err)
	}
	return E(KindUnavailable, "destination unreachable", err)
}

// Permanent reports whether the classified destination error should stop
// retries and flag the job.
func Permanent(err error) bool {
	switch KindOf(err) {
	case KindSchema, KindUnauthorized, KindInvalid:
		return true
	}
	return false
}
