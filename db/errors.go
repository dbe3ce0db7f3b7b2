package db

import (
	"context"
	"errors"

	"dynamictickets/entities"

	"github.com/lib/pq"
)

const (
	postgresUniqueValueViolationErrorCode = "23505"
	postgresSerializationFailureErrorCode = "40001"
	postgresDeadlockDetectedErrorCode     = "40P01"
	postgresLockNotAvailableErrorCode     = "55P03"
	postgresQueryCanceledErrorCode        = "57014"
)

func isErrorUniqueViolation(err error) bool {
	var psqlErr *pq.Error
	return errors.As(err, &psqlErr) && psqlErr.Code == postgresUniqueValueViolationErrorCode
}

func isTransientError(err error) bool {
	var psqlErr *pq.Error
	if !errors.As(err, &psqlErr) {
		return false
	}

	switch psqlErr.Code {
	case postgresSerializationFailureErrorCode,
		postgresDeadlockDetectedErrorCode,
		postgresLockNotAvailableErrorCode,
		postgresQueryCanceledErrorCode:
		return true
	default:
		return false
	}
}

// classifyError wraps errors worth retrying in entities.TransientStoreError.
// A statement canceled because the caller went away is not one of them.
func classifyError(ctx context.Context, err error) error {
	if err == nil || ctx.Err() != nil || entities.IsTransient(err) {
		return err
	}
	if isTransientError(err) {
		return entities.TransientStoreError{Err: err}
	}
	return err
}
