package pkg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsUniqueViolationError reports a unique or primary key violation from postgres or sqlite.
func IsUniqueViolationError(err error) bool {
	if code, ok := pgErrorCode(err); ok {
		return code == pgUniqueViolation
	}
	if code, ok := sqliteErrorCode(err); ok {
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// IsForeignKeyViolationError reports a foreign key violation from postgres or sqlite.
// SQLite only enforces foreign keys with PRAGMA foreign_keys = ON.
func IsForeignKeyViolationError(err error) bool {
	if code, ok := pgErrorCode(err); ok {
		return code == pgForeignKeyViolation
	}
	if code, ok := sqliteErrorCode(err); ok {
		return code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}

func pgErrorCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	return "", false
}

// sqliteErrorCode returns the extended result code; the driver turns extended codes on.
func sqliteErrorCode(err error) (int, bool) {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code(), true
	}
	return 0, false
}
