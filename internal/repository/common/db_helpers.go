package common

import (
	"context"
	"fmt"
	"reflect"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// Psql возвращает построитель запросов с плейсхолдерами $1, $2, ...
func Psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// StructColumns возвращает значения тегов db у структуры, включая встроенные структуры.
// Поля с db:"-" и без тега пропускаются.
func StructColumns(model any) []string {
	var columns []string
	walkDBFields(reflect.ValueOf(model), func(column string, _ reflect.Value) {
		columns = append(columns, column)
	})
	return columns
}

// StructToMap собирает map колонка -> значение для INSERT/UPDATE.
// Колонки из skip не попадают в результат.
func StructToMap(model any, skip ...string) map[string]any {
	excluded := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		excluded[s] = struct{}{}
	}

	values := make(map[string]any)
	walkDBFields(reflect.ValueOf(model), func(column string, v reflect.Value) {
		if _, ok := excluded[column]; ok {
			return
		}
		values[column] = v.Interface()
	})
	return values
}

func walkDBFields(v reflect.Value, fn func(column string, v reflect.Value)) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			v = reflect.New(v.Type().Elem()).Elem()
			continue
		}
		v = v.Elem()
	}
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			walkDBFields(v.Field(i), fn)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		column := sf.Tag.Get("db")
		if column == "" || column == "-" {
			continue
		}
		fn(column, v.Field(i))
	}
}

// WithTransaction выполняет fn в транзакции. Ошибка fn или паника откатывают транзакцию.
func WithTransaction(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
