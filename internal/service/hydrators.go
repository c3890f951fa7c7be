package service

import (
	"context"
	"fmt"

	"github.com/ignatzorin/freelance-catalog/internal/models"
)

// ByIDsFinder загружает записи по набору id.
type ByIDsFinder[P any] interface {
	FindByIDs(ctx context.Context, ids []int64) ([]P, error)
}

// ReferenceFinder читает внешние сущности offer и profile.
type ReferenceFinder interface {
	OffersByIDs(ctx context.Context, ids []int64) ([]*models.OfferRef, error)
	ProfilesByIDs(ctx context.Context, ids []int64) ([]*models.ProfileRef, error)
}

// relation описывает одну связь many-to-one: внешний ключ, загрузку и присваивание.
type relation[P any, R any] struct {
	name string
	fk   func(P) *int64
	load func(ctx context.Context, ids []int64) ([]R, error)
	id   func(R) int64
	set  func(P, R)
}

// attach загружает связанные записи одним запросом на всю страницу.
func (rel relation[P, R]) attach(ctx context.Context, items []P) error {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		fk := rel.fk(item)
		if fk == nil {
			continue
		}
		if _, ok := seen[*fk]; ok {
			continue
		}
		seen[*fk] = struct{}{}
		ids = append(ids, *fk)
	}
	if len(ids) == 0 {
		return nil
	}

	related, err := rel.load(ctx, ids)
	if err != nil {
		return fmt.Errorf("load %s: %w", rel.name, err)
	}

	byID := make(map[int64]R, len(related))
	for _, r := range related {
		byID[rel.id(r)] = r
	}
	for _, item := range items {
		fk := rel.fk(item)
		if fk == nil {
			continue
		}
		if r, ok := byID[*fk]; ok {
			rel.set(item, r)
		}
	}
	return nil
}

func hydrator[P any](steps ...func(context.Context, []P) error) Hydrator[P] {
	return func(ctx context.Context, items []P) error {
		for _, step := range steps {
			if err := step(ctx, items); err != nil {
				return err
			}
		}
		return nil
	}
}

func entityID[P models.Entity](e P) int64 {
	if id := e.GetID(); id != nil {
		return *id
	}
	return 0
}

func offerRelation[P any](refs ReferenceFinder, fk func(P) *int64, set func(P, *models.OfferRef)) relation[P, *models.OfferRef] {
	return relation[P, *models.OfferRef]{
		name: "offer",
		fk:   fk,
		load: refs.OffersByIDs,
		id:   func(o *models.OfferRef) int64 { return o.ID },
		set:  set,
	}
}

func categoryRelation[P any](categories ByIDsFinder[*models.Category], fk func(P) *int64, set func(P, *models.Category)) relation[P, *models.Category] {
	return relation[P, *models.Category]{
		name: "category",
		fk:   fk,
		load: categories.FindByIDs,
		id:   entityID[*models.Category],
		set:  set,
	}
}

// SubcategoryHydrator подгружает категорию подкатегории.
func SubcategoryHydrator(categories ByIDsFinder[*models.Category]) Hydrator[*models.Subcategory] {
	return hydrator(categoryRelation(categories,
		func(s *models.Subcategory) *int64 { return s.CategoryID },
		func(s *models.Subcategory, c *models.Category) { s.Category = c },
	).attach)
}

// SkillHydrator подгружает категорию навыка.
func SkillHydrator(categories ByIDsFinder[*models.Category]) Hydrator[*models.Skill] {
	return hydrator(categoryRelation(categories,
		func(s *models.Skill) *int64 { return s.CategoryID },
		func(s *models.Skill, c *models.Category) { s.Category = c },
	).attach)
}

// OfferTypeHydrator подгружает подкатегорию типа предложения.
func OfferTypeHydrator(subcategories ByIDsFinder[*models.Subcategory]) Hydrator[*models.OfferType] {
	return hydrator(relation[*models.OfferType, *models.Subcategory]{
		name: "subcategory",
		fk:   func(o *models.OfferType) *int64 { return o.SubcategoryID },
		load: subcategories.FindByIDs,
		id:   entityID[*models.Subcategory],
		set:  func(o *models.OfferType, s *models.Subcategory) { o.Subcategory = s },
	}.attach)
}

// OfferMediaHydrator подгружает предложение и файл.
func OfferMediaHydrator(refs ReferenceFinder, files ByIDsFinder[*models.FileObject]) Hydrator[*models.OfferMedia] {
	return hydrator(
		offerRelation(refs,
			func(m *models.OfferMedia) *int64 { return m.OfferID },
			func(m *models.OfferMedia, o *models.OfferRef) { m.Offer = o },
		).attach,
		relation[*models.OfferMedia, *models.FileObject]{
			name: "file",
			fk:   func(m *models.OfferMedia) *int64 { return m.FileID },
			load: files.FindByIDs,
			id:   entityID[*models.FileObject],
			set:  func(m *models.OfferMedia, f *models.FileObject) { m.File = f },
		}.attach,
	)
}

// OfferPackageHydrator подгружает предложение пакета.
func OfferPackageHydrator(refs ReferenceFinder) Hydrator[*models.OfferPackage] {
	return hydrator(offerRelation(refs,
		func(p *models.OfferPackage) *int64 { return p.OfferID },
		func(p *models.OfferPackage, o *models.OfferRef) { p.Offer = o },
	).attach)
}

// OfferReviewHydrator подгружает предложение и автора отзыва.
func OfferReviewHydrator(refs ReferenceFinder) Hydrator[*models.OfferReview] {
	return hydrator(
		offerRelation(refs,
			func(r *models.OfferReview) *int64 { return r.OfferID },
			func(r *models.OfferReview, o *models.OfferRef) { r.Offer = o },
		).attach,
		relation[*models.OfferReview, *models.ProfileRef]{
			name: "reviewer",
			fk:   func(r *models.OfferReview) *int64 { return r.ReviewerID },
			load: refs.ProfilesByIDs,
			id:   func(p *models.ProfileRef) int64 { return p.ID },
			set:  func(r *models.OfferReview, p *models.ProfileRef) { r.Reviewer = p },
		}.attach,
	)
}
