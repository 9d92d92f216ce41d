package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	domainErrors "github.com/wekeepgrowing/accounting-sync/internal/domain/errors"
)

// isDuplicateKey reports unique constraint violations. gorm translates them
// to ErrDuplicatedKey when TranslateError is enabled; the string checks cover
// drivers that do not.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// wrapWriteError maps unique violations onto ErrDuplicateEntity.
func wrapWriteError(entity string, err error) error {
	if isDuplicateKey(err) {
		return fmt.Errorf("%w: %s: %v", domainErrors.ErrDuplicateEntity, entity, err)
	}
	return fmt.Errorf("failed to save %s: %w", entity, err)
}
