package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// handleError converts database-specific errors to repository errors.
// dup is returned for unique constraint violations.
func handleError(err error, dup error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return dup
	}

	errStr := err.Error()
	// PostgreSQL, SQLite, MySQL unique constraint violations
	if strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "Duplicate entry") {
		return dup
	}

	return err
}

// notFound maps gorm.ErrRecordNotFound to target.
func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

var likeReplacer = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern lowercases s, escapes wildcards and wraps it for a substring
// match. Queries must use it with "LIKE ? ESCAPE '!'".
func likePattern(s string) string {
	return "%" + likeReplacer.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
