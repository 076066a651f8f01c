package dbx

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// UniqueViolationCode is the SQLSTATE for unique_violation.
const UniqueViolationCode = "23505"

// UniqueViolation reports whether err carries a PostgreSQL unique violation
// and, if so, the name of the constraint that fired.
func UniqueViolation(err error) (constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != UniqueViolationCode {
		return "", false
	}
	return pgErr.ConstraintName, true
}

// TranslateUniqueViolation maps a unique violation on one of the known
// constraints to its sentinel error. It returns nil when err is not a unique
// violation or the constraint is not in known.
func TranslateUniqueViolation(err error, known map[string]error) error {
	constraint, ok := UniqueViolation(err)
	if !ok {
		return nil
	}
	return known[constraint]
}
