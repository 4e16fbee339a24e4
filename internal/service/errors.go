package service

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Errors shared across services. Operation-specific sentinels live next to
// the service that returns them.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("not authorized for this resource")
)

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
