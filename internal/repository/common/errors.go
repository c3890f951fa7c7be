package common

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Общие ошибки для всех репозиториев
var (
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrReferenceViolation = errors.New("referenced entity does not exist")
)

// Коды ошибок PostgreSQL, которые отдаём клиенту как ошибки ввода.
const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
	pqNotNullViolation    = "23502"
	pqCheckViolation      = "23514"
	pqStringTooLong       = "22001"
	pqNumericOutOfRange   = "22003"
)

// MapPQError переводит ошибки драйвера в ошибки репозитория, сохраняя исходную причину.
func MapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case pqForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrReferenceViolation, pqErr.Constraint)
	case pqUniqueViolation:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, pqErr.Constraint)
	case pqNotNullViolation, pqCheckViolation, pqStringTooLong, pqNumericOutOfRange:
		return fmt.Errorf("%w: %s", ErrInvalidInput, pqErr.Message)
	}
	return err
}
