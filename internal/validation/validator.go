package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ignatzorin/freelance-catalog/internal/pkg/apperror"
)

// Validator проверяет сущности по тегам validate и отдаёт ошибки с JSON-именами полей.
type Validator struct {
	validate *validator.Validate
}

// New создаёт валидатор.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct валидирует сущность. Нарушения возвращаются как apperror с кодом VALIDATION_ERROR.
func (v *Validator) Struct(entity string, s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "ошибка валидации")
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperror.FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}
	return apperror.Validation(entity, fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "поле обязательно"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("должно быть не более %s символов", fe.Param())
		}
		return fmt.Sprintf("должно быть не больше %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("должно быть не менее %s символов", fe.Param())
		}
		return fmt.Sprintf("должно быть не меньше %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("допустимые значения: %s", fe.Param())
	}
	return fmt.Sprintf("не прошло проверку %s", fe.Tag())
}
