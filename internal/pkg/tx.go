package pkg

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/rentfront/internal/domain"
)

// WithTx runs fn in a transaction bound to ctx. The transaction commits when
// fn returns nil and rolls back when it fails or panics; fn's error is
// returned unchanged, while begin and commit failures are mapped with
// MapDBError.
func WithTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var fnErr error
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(tx)
		return fnErr
	})
	if err != nil && fnErr == nil {
		return MapDBError(err)
	}
	return err
}

// MapDBError converts GORM errors to domain errors. AppErrors pass through.
func MapDBError(err error) error {
	var appErr *domain.AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isDuplicateKeyError(err):
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	default:
		return domain.NewAppError(domain.CodeInternal, "database error", err)
	}
}

// isDuplicateKeyError matches unique violations by message, for dialectors
// such as the pure-Go SQLite driver that do not translate them to
// gorm.ErrDuplicatedKey.
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"unique constraint", "duplicate key", "duplicate entry"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
