package filter

import (
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Enum реализуют строковые перечисления моделей.
type Enum interface {
	EnumValues() []string
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
	enumType    = reflect.TypeOf((*Enum)(nil)).Elem()
)

// FieldsOf строит список фильтруемых полей по тегам структуры:
// json задаёт имя, db — колонку, filter:"ref" помечает внешний ключ, filter:"-" исключает поле.
// Тип фильтра выводится из Go-типа поля.
func FieldsOf(model any) []Field {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return collectFields(t)
}

func collectFields(t reflect.Type) []Field {
	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			fields = append(fields, collectFields(sf.Type)...)
			continue
		}
		if !sf.IsExported() {
			continue
		}

		column := sf.Tag.Get("db")
		tag := sf.Tag.Get("filter")
		if column == "" || column == "-" || tag == "-" {
			continue
		}
		name := strings.Split(sf.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			continue
		}

		kind, enum, ok := kindOf(sf.Type)
		if !ok {
			continue
		}
		fields = append(fields, Field{
			Name:   name,
			Column: column,
			Kind:   kind,
			Enum:   enum,
			Ref:    tag == "ref",
		})
	}
	return fields
}

func kindOf(t reflect.Type) (Kind, []string, bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch {
	case t == timeType:
		return KindInstant, nil, true
	case t == decimalType:
		return KindDecimal, nil, true
	case t.Implements(enumType):
		return KindEnum, reflect.Zero(t).Interface().(Enum).EnumValues(), true
	}

	switch t.Kind() {
	case reflect.String:
		return KindString, nil, true
	case reflect.Bool:
		return KindBool, nil, true
	case reflect.Int64:
		return KindInt64, nil, true
	case reflect.Int32, reflect.Int:
		return KindInt32, nil, true
	case reflect.Float64, reflect.Float32:
		return KindFloat, nil, true
	}
	return 0, nil, false
}
