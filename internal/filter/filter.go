// Package filter разбирает параметры вида <field>.<operator>=<value> и
// превращает их в условия WHERE для squirrel.
package filter

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidFilter возвращается при неизвестном операторе или неразбираемом значении.
var ErrInvalidFilter = errors.New("некорректный фильтр")

// Kind задаёт тип значения поля и набор применимых операторов.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt64
	KindInt32
	KindFloat
	KindDecimal
	KindInstant
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt64:
		return "long"
	case KindInt32:
		return "integer"
	case KindFloat:
		return "double"
	case KindDecimal:
		return "decimal"
	case KindInstant:
		return "instant"
	case KindEnum:
		return "enum"
	}
	return "unknown"
}

func (k Kind) ordered() bool {
	switch k {
	case KindInt64, KindInt32, KindFloat, KindDecimal, KindInstant:
		return true
	}
	return false
}

type Operator string

const (
	OpEquals             Operator = "equals"
	OpNotEquals          Operator = "notEquals"
	OpIn                 Operator = "in"
	OpNotIn              Operator = "notIn"
	OpSpecified          Operator = "specified"
	OpContains           Operator = "contains"
	OpDoesNotContain     Operator = "doesNotContain"
	OpGreaterThan        Operator = "greaterThan"
	OpGreaterThanOrEqual Operator = "greaterThanOrEqual"
	OpLessThan           Operator = "lessThan"
	OpLessThanOrEqual    Operator = "lessThanOrEqual"
)

// Field описывает фильтруемое поле сущности.
type Field struct {
	Name   string // имя в JSON и в query string
	Column string
	Kind   Kind
	Enum   []string
	// Ref помечает внешний ключ: для него доступны только операторы равенства.
	Ref bool
}

// Supports сообщает, применим ли оператор к полю.
func (f Field) Supports(op Operator) bool {
	switch op {
	case OpEquals, OpNotEquals, OpIn, OpNotIn, OpSpecified:
		return true
	case OpContains, OpDoesNotContain:
		return f.Kind == KindString && !f.Ref
	case OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual:
		return f.Kind.ordered() && !f.Ref
	}
	return false
}

// Condition — одна тройка поле-оператор-значение.
type Condition struct {
	Field    Field
	Operator Operator
	Values   []any
}

// Criteria — набор условий, объединяемых через AND.
type Criteria []Condition

// Empty сообщает, что фильтров нет.
func (c Criteria) Empty() bool {
	return len(c) == 0
}

// Parse разбирает query string. Ключи без точки и незнакомые поля пропускаются,
// чтобы page, size, sort и eagerload проходили мимо.
func Parse(values url.Values, fields []Field) (Criteria, error) {
	byName := make(map[string]Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var criteria Criteria
	for _, key := range keys {
		idx := strings.LastIndex(key, ".")
		if idx <= 0 {
			continue
		}
		field, ok := byName[key[:idx]]
		if !ok {
			continue
		}
		op := Operator(key[idx+1:])
		if !field.Supports(op) {
			return nil, fmt.Errorf("%w: оператор %q не применим к полю %q", ErrInvalidFilter, op, field.Name)
		}

		for _, raw := range values[key] {
			cond, err := parseCondition(field, op, raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s=%s: %v", ErrInvalidFilter, key, raw, err)
			}
			criteria = append(criteria, cond)
		}
	}

	return criteria, nil
}

func parseCondition(field Field, op Operator, raw string) (Condition, error) {
	cond := Condition{Field: field, Operator: op}

	switch op {
	case OpSpecified:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return cond, err
		}
		cond.Values = []any{b}
	case OpIn, OpNotIn:
		parts := strings.Split(raw, ",")
		cond.Values = make([]any, 0, len(parts))
		for _, part := range parts {
			v, err := parseValue(field, part)
			if err != nil {
				return cond, err
			}
			cond.Values = append(cond.Values, v)
		}
	default:
		v, err := parseValue(field, raw)
		if err != nil {
			return cond, err
		}
		cond.Values = []any{v}
	}

	return cond, nil
}

func parseValue(field Field, raw string) (any, error) {
	switch field.Kind {
	case KindString:
		return raw, nil
	case KindBool:
		return strconv.ParseBool(strings.TrimSpace(raw))
	case KindInt64:
		return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	case KindInt32:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
		return int32(n), err
	case KindFloat:
		return strconv.ParseFloat(strings.TrimSpace(raw), 64)
	case KindDecimal:
		return decimal.NewFromString(strings.TrimSpace(raw))
	case KindInstant:
		return time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	case KindEnum:
		v := strings.TrimSpace(raw)
		for _, allowed := range field.Enum {
			if v == allowed {
				return v, nil
			}
		}
		return nil, fmt.Errorf("допустимые значения: %s", strings.Join(field.Enum, ", "))
	}
	return nil, fmt.Errorf("неизвестный тип поля %s", field.Kind)
}
