package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes the write paths react to.
const (
	pgUndefinedColumn  = "42703"
	pgUniqueViolation  = "23505"
	pgInvalidOnConflct = "42P10"
)

// UniqueKey names a unique constraint both by its Postgres name and by its
// column list, so it can be recognised on any driver.
type UniqueKey struct {
	Table      string
	Constraint string
	Columns    []string
}

func (k UniqueKey) qualifiedColumns() string {
	parts := make([]string, 0, len(k.Columns))
	for _, c := range k.Columns {
		parts = append(parts, k.Table+"."+c)
	}
	return strings.Join(parts, ", ")
}

func asPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsMissingColumn reports whether err says column does not exist on the table.
func IsMissingColumn(err error, column string) bool {
	if err == nil || column == "" {
		return false
	}
	if pgErr, ok := asPgError(err); ok {
		return pgErr.Code == pgUndefinedColumn && strings.Contains(pgErr.Message, column)
	}
	msg := err.Error()
	if strings.Contains(msg, "no column named "+column) {
		return true
	}
	return strings.Contains(msg, column) && strings.Contains(msg, "does not exist") && strings.Contains(msg, "column")
}

// IsUniqueViolationOn reports whether err is a unique violation of key.
func IsUniqueViolationOn(err error, key UniqueKey) bool {
	if err == nil {
		return false
	}
	if pgErr, ok := asPgError(err); ok {
		if pgErr.Code != pgUniqueViolation {
			return false
		}
		return pgErr.ConstraintName == key.Constraint || strings.Contains(pgErr.Message, key.Constraint)
	}
	msg := err.Error()
	if key.Constraint != "" && strings.Contains(msg, key.Constraint) {
		return true
	}
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, key.qualifiedColumns())
}

// IsUniqueViolation reports any unique violation, whatever the constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	if pgErr, ok := asPgError(err); ok {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsMissingConflictTarget reports an ON CONFLICT target without a matching
// unique index (schema not migrated to that key yet).
func IsMissingConflictTarget(err error) bool {
	if err == nil {
		return false
	}
	if pgErr, ok := asPgError(err); ok {
		return pgErr.Code == pgInvalidOnConflct
	}
	return strings.Contains(err.Error(), "ON CONFLICT clause does not match")
}
