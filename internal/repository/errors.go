package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// isDuplicateKeyError checks if the error is a unique constraint violation mentioning
// any of the given names. PostgreSQL reports the constraint name; SQLite reports the
// offending columns as "table.column".
func isDuplicateKeyError(err error, names ...string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		return pgErr.Code == "23505" && containsAny(pgErr.ConstraintName, names)
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return containsAny(msg, names)
	}

	// TranslateError drops the constraint detail
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func containsAny(s string, names []string) bool {
	if len(names) == 0 {
		return true
	}
	s = strings.ToLower(s)
	for _, name := range names {
		if strings.Contains(s, strings.ToLower(name)) {
			return true
		}
	}
	return false
}
