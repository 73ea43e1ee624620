package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oroshi/backoffice/internal/domain/shared"
)

// transientPgCodes are the PostgreSQL error classes worth retrying:
// serialization_failure, deadlock_detected, lock_not_available and
// query_canceled (statement_timeout).
var transientPgCodes = map[string]struct{}{
	"40001": {},
	"40P01": {},
	"55P03": {},
	"57014": {},
}

// translateError maps raw store failures onto the domain error taxonomy so
// callers can retry on shared.ErrTransientStore without knowing the driver.
// Domain errors already raised inside a repository pass through untouched.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if _, ok := transientPgCodes[pgErr.Code]; ok {
			return fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
		}
	}
	return err
}
