package repository

import (
	"errors"
	"strings"

	"church-service/internal/apperr"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// TranslateError maps store errors onto the API error kinds. Errors that
// already carry a kind pass through unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.KindNotFound, err, "record not found")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Wrap(apperr.KindConflict, err, "record already exists")
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return apperr.Wrap(apperr.KindValidation, err, "referenced record does not exist")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Wrap(apperr.KindConflict, err, "record already exists: "+pgErr.ConstraintName)
		case pgerrcode.ForeignKeyViolation:
			return apperr.Wrap(apperr.KindValidation, err, "referenced record does not exist")
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
			return apperr.Wrap(apperr.KindValidation, err, "invalid value: "+pgErr.ColumnName)
		}
	}

	// sqlite without error translation
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return apperr.Wrap(apperr.KindConflict, err, "record already exists")
	}

	return apperr.Internal(err)
}

// IsNotFound reports whether err means the row does not exist or is hidden.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || apperr.IsKind(err, apperr.KindNotFound)
}
