package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Ограничения на ввод при загрузке файлов.
const (
	MaxDestinationLength = 64
	MaxLoginLength       = 50
	MaxFileNameLength    = 255
)

var pathSegmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidatePathSegment проверяет часть ключа объекта: только буквы, цифры, дефис и подчёркивание.
func ValidatePathSegment(fieldName, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	if err := ValidateLength(fieldName, value, 1, MaxDestinationLength); err != nil {
		return err
	}
	if !pathSegmentRegex.MatchString(value) {
		return fmt.Errorf("%s может содержать только буквы, цифры, дефис и подчёркивание", fieldName)
	}
	return nil
}
