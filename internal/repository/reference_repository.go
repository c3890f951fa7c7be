package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-catalog/internal/models"
	"github.com/ignatzorin/freelance-catalog/internal/repository/common"
)

const (
	offerTableName   = "offer"
	profileTableName = "profile"
)

// ReferenceRepository читает внешние таблицы offer и profile, на которые ссылаются сущности каталога.
// Каталог их не изменяет.
type ReferenceRepository struct {
	db *sqlx.DB
}

func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// OffersByIDs возвращает краткие карточки предложений.
func (r *ReferenceRepository) OffersByIDs(ctx context.Context, ids []int64) ([]*models.OfferRef, error) {
	var offers []*models.OfferRef
	if err := r.selectByIDs(ctx, &offers, offerTableName, common.StructColumns(models.OfferRef{}), ids); err != nil {
		return nil, err
	}
	return offers, nil
}

// ProfilesByIDs возвращает краткие карточки профилей.
func (r *ReferenceRepository) ProfilesByIDs(ctx context.Context, ids []int64) ([]*models.ProfileRef, error) {
	var profiles []*models.ProfileRef
	if err := r.selectByIDs(ctx, &profiles, profileTableName, common.StructColumns(models.ProfileRef{}), ids); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *ReferenceRepository) selectByIDs(ctx context.Context, dest any, table string, columns []string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := common.Psql().
		Select(columns...).
		From(table).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build select from %s: %w", table, err)
	}

	if err := r.db.SelectContext(ctx, dest, query, args...); err != nil {
		return fmt.Errorf("select from %s: %w", table, err)
	}
	return nil
}
