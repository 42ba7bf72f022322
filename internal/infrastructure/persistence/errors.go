package persistence

import (
	"errors"
	"net"

	"github.com/hms/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes the engine cares about
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// translateError maps storage-layer errors onto typed domain errors so
// callers never have to understand SQLSTATEs
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return shared.ErrDuplicateEntry
		case pgForeignKeyViolation, pgCheckViolation:
			return shared.ErrIntegrityViolation
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return shared.ErrConnectionLost
	}

	return err
}
