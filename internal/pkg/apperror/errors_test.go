package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBadRequestAlert(t *testing.T) {
	err := BadRequestAlert("category", KeyIDNull, "неверный id")

	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Equal(t, "category", err.Entity)
	assert.True(t, HasKey(err, KeyIDNull))
	assert.False(t, IsNotFound(err))
}

func TestWrappedErrorsAreDetected(t *testing.T) {
	base := NotFound("tag")
	wrapped := fmt.Errorf("service: %w", base)

	assert.True(t, IsNotFound(wrapped))
	assert.True(t, HasKey(wrapped, KeyNotFound))
}

func TestValidationCarriesFields(t *testing.T) {
	err := Validation("country", []FieldError{{Field: "name", Rule: "required"}})

	assert.True(t, IsValidation(err))
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Len(t, err.Fields, 1)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Wrap(cause, ErrCodeDatabaseError, "ошибка базы данных")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusMethodNotAllowed, New(ErrCodeMethodNotAllowed, "").HTTPStatus)
	assert.Equal(t, http.StatusUnsupportedMediaType, New(ErrCodeUnsupportedMedia, "").HTTPStatus)
	assert.Equal(t, http.StatusRequestEntityTooLarge, New(ErrCodeTooLarge, "").HTTPStatus)
	assert.Equal(t, http.StatusConflict, New(ErrCodeConflict, "").HTTPStatus)
}
