package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolationCode is the PostgreSQL error code for unique constraint
// violations (class 23, integrity constraint violation)
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a unique constraint violation.
// The saga relies on this to detect that a concurrent duplicate won the race.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
