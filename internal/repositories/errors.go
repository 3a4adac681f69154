package repositories

import (
	"errors"
	"fmt"

	"inkbook/pkg/apperror"

	"gorm.io/gorm"
)

// translate maps GORM errors onto application errors.
// Requires gorm.Config.TranslateError so duplicate keys surface as gorm.ErrDuplicatedKey.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NotFound(what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Wrap(apperror.CodeConflict, err, "%s already exists", what)
	}
	return fmt.Errorf("%s query failed: %w", what, err)
}

// notFoundIfNoRows turns an update that touched nothing into a not-found error.
func notFoundIfNoRows(res *gorm.DB, what string) error {
	if res.Error != nil {
		return translate(res.Error, what)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound(what)
	}
	return nil
}
