package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrCodeBadRequest       ErrorCode = "BAD_REQUEST"
	ErrCodeConflict         ErrorCode = "CONFLICT"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError    ErrorCode = "DATABASE_ERROR"
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeUnsupportedMedia ErrorCode = "UNSUPPORTED_MEDIA_TYPE"
	ErrCodeTooLarge         ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS"
)

// Ключи ошибок, которые уходят клиенту в заголовке и теле ответа.
const (
	KeyIDExists        = "idexists"
	KeyIDNull          = "idnull"
	KeyIDInvalid       = "idinvalid"
	KeyIDNotFound      = "idnotfound"
	KeyValidation      = "validation"
	KeyInvalidFilter   = "invalidfilter"
	KeyInvalidBody     = "invalidbody"
	KeyReference       = "reference"
	KeyNotFound        = "notfound"
	KeyDuplicate       = "duplicate"
	KeyUnsupportedType = "unsupportedmediatype"
)

// FieldError описывает нарушение ограничения на конкретном поле.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error

	// Entity и Key повторяют формат алертов клиента: error.<Key> для сущности Entity.
	Entity string
	Key    string
	Fields []FieldError
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// BadRequestAlert создаёт ошибку 400 с ключом для заголовка алерта.
func BadRequestAlert(entity, key, message string) *AppError {
	e := New(ErrCodeBadRequest, message)
	e.Entity = entity
	e.Key = key
	return e
}

// Validation создаёт ошибку валидации со списком нарушенных полей.
func Validation(entity string, fields []FieldError) *AppError {
	e := New(ErrCodeValidation, "ошибка валидации")
	e.Entity = entity
	e.Key = KeyValidation
	e.Fields = fields
	return e
}

// NotFound создаёт ошибку 404 для сущности.
func NotFound(entity string) *AppError {
	e := New(ErrCodeNotFound, "ресурс не найден")
	e.Entity = entity
	e.Key = KeyNotFound
	return e
}

// WithEntity дописывает имя сущности и ключ и возвращает ту же ошибку.
func (e *AppError) WithEntity(entity, key string) *AppError {
	e.Entity = entity
	e.Key = key
	return e
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrCodeUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case ErrCodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

// HasKey проверяет ключ алерта у ошибки.
func HasKey(err error, key string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Key == key
}

var (
	ErrUnauthorized     = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrMethodNotAllowed = New(ErrCodeMethodNotAllowed, "метод не поддерживается")
	ErrRouteNotFound    = New(ErrCodeNotFound, "маршрут не найден")
	ErrTooManyRequests  = New(ErrCodeTooManyRequests, "слишком много запросов, попробуйте позже")
)
