package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-catalog/internal/filter"
	"github.com/ignatzorin/freelance-catalog/internal/models"
	"github.com/ignatzorin/freelance-catalog/internal/repository/common"
)

// CrudRepository хранит одну сущность каталога в своей таблице.
type CrudRepository[T any, P models.Model[T]] struct {
	db      *sqlx.DB
	table   string
	columns []string
}

// NewCrudRepository создаёт репозиторий для таблицы ресурса.
func NewCrudRepository[T any, P models.Model[T]](db *sqlx.DB, resource models.Resource) *CrudRepository[T, P] {
	return &CrudRepository[T, P]{
		db:      db,
		table:   resource.Table,
		columns: common.StructColumns(new(T)),
	}
}

// Create вставляет запись и проставляет выданный базой id.
func (r *CrudRepository[T, P]) Create(ctx context.Context, entity P) error {
	query, args, err := common.Psql().
		Insert(r.table).
		SetMap(common.StructToMap(entity, "id")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert into %s: %w", r.table, err)
	}

	var id int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return fmt.Errorf("insert into %s: %w", r.table, common.MapPQError(err))
	}
	entity.SetID(&id)
	return nil
}

// Update перезаписывает все колонки записи. Если записи нет, возвращает common.ErrNotFound.
func (r *CrudRepository[T, P]) Update(ctx context.Context, entity P) error {
	return r.update(ctx, r.db, entity)
}

// Modify блокирует запись (SELECT ... FOR UPDATE), передаёт её в fn и сохраняет результат
// в той же транзакции. Ошибка fn откатывает транзакцию и возвращается как есть.
func (r *CrudRepository[T, P]) Modify(ctx context.Context, id int64, fn func(entity P) error) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query, args, err := common.Psql().
			Select(r.columns...).
			From(r.table).
			Where(sq.Eq{"id": id}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return fmt.Errorf("build select for update from %s: %w", r.table, err)
		}

		entity := P(new(T))
		if err := tx.GetContext(ctx, entity, query, args...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrNotFound
			}
			return fmt.Errorf("select for update from %s: %w", r.table, err)
		}

		if err := fn(entity); err != nil {
			return err
		}
		entity.SetID(&id)
		return r.update(ctx, tx, entity)
	})
}

func (r *CrudRepository[T, P]) update(ctx context.Context, exec sqlx.ExecerContext, entity P) error {
	id := entity.GetID()
	if id == nil {
		return common.ErrInvalidInput
	}

	query, args, err := common.Psql().
		Update(r.table).
		SetMap(common.StructToMap(entity, "id")).
		Where(sq.Eq{"id": *id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update %s: %w", r.table, err)
	}

	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table, common.MapPQError(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// FindByID возвращает запись по id или common.ErrNotFound.
func (r *CrudRepository[T, P]) FindByID(ctx context.Context, id int64) (P, error) {
	query, args, err := common.Psql().
		Select(r.columns...).
		From(r.table).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select from %s: %w", r.table, err)
	}

	entity := P(new(T))
	if err := r.db.GetContext(ctx, entity, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("get by id from %s: %w", r.table, err)
	}
	return entity, nil
}

// ExistsByID проверяет наличие записи.
func (r *CrudRepository[T, P]) ExistsByID(ctx context.Context, id int64) (bool, error) {
	query, args, err := common.Psql().
		Select("1").
		Prefix("SELECT EXISTS (").
		From(r.table).
		Where(sq.Eq{"id": id}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists on %s: %w", r.table, err)
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, fmt.Errorf("exists on %s: %w", r.table, err)
	}
	return exists, nil
}

// FindByIDs возвращает записи с указанными id в порядке возрастания id.
func (r *CrudRepository[T, P]) FindByIDs(ctx context.Context, ids []int64) ([]P, error) {
	if len(ids) == 0 {
		return []P{}, nil
	}

	query, args, err := common.Psql().
		Select(r.columns...).
		From(r.table).
		Where(sq.Eq{"id": ids}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select by ids from %s: %w", r.table, err)
	}

	var items []P
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("select by ids from %s: %w", r.table, err)
	}
	return items, nil
}

// FindByCriteria возвращает страницу записей, подходящих под фильтры.
func (r *CrudRepository[T, P]) FindByCriteria(ctx context.Context, criteria filter.Criteria, page filter.Page) ([]P, error) {
	builder := common.Psql().
		Select(r.columns...).
		From(r.table)
	if !criteria.Empty() {
		builder = builder.Where(criteria.Sqlizer())
	}

	query, args, err := builder.
		OrderBy(page.OrderBy()...).
		Limit(page.Limit()).
		Offset(page.Offset()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select from %s: %w", r.table, err)
	}

	items := []P{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("select from %s: %w", r.table, err)
	}
	return items, nil
}

// CountByCriteria считает записи, подходящие под фильтры.
func (r *CrudRepository[T, P]) CountByCriteria(ctx context.Context, criteria filter.Criteria) (int64, error) {
	builder := common.Psql().
		Select("COUNT(*)").
		From(r.table)
	if !criteria.Empty() {
		builder = builder.Where(criteria.Sqlizer())
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count on %s: %w", r.table, err)
	}

	var count int64
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count on %s: %w", r.table, err)
	}
	return count, nil
}

// Delete удаляет запись. Если записи нет, возвращает common.ErrNotFound.
func (r *CrudRepository[T, P]) Delete(ctx context.Context, id int64) error {
	query, args, err := common.Psql().
		Delete(r.table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete from %s: %w", r.table, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", r.table, common.MapPQError(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}
