package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tair/till-pos/internal/pos/domain"
)

func writeError(op string, err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("failed to %s: %w: %w", op, domain.ErrWriteRejected, err)
}

func readError(op string, err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func notFound(what string, id uint) error {
	return fmt.Errorf("%s %d: %w", what, id, domain.ErrNotFound)
}

// isUniqueViolation covers dialects that do not translate driver errors
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
