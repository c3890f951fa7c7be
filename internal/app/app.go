package app

import (
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-catalog/internal/http/handlers"
	"github.com/ignatzorin/freelance-catalog/internal/http/response"
	"github.com/ignatzorin/freelance-catalog/internal/models"
	"github.com/ignatzorin/freelance-catalog/internal/repository"
	"github.com/ignatzorin/freelance-catalog/internal/seed"
	"github.com/ignatzorin/freelance-catalog/internal/service"
	"github.com/ignatzorin/freelance-catalog/internal/storage"
	"github.com/ignatzorin/freelance-catalog/internal/validation"
)

// Services — сервисы всех ресурсов каталога поверх одного пула соединений.
type Services struct {
	Categories    *service.CrudService[models.Category, *models.Category]
	Countries     *service.CrudService[models.Country, *models.Country]
	FileObjects   *service.CrudService[models.FileObject, *models.FileObject]
	OfferMedias   *service.CrudService[models.OfferMedia, *models.OfferMedia]
	OfferPackages *service.CrudService[models.OfferPackage, *models.OfferPackage]
	OfferReviews  *service.CrudService[models.OfferReview, *models.OfferReview]
	OfferTypes    *service.CrudService[models.OfferType, *models.OfferType]
	Skills        *service.CrudService[models.Skill, *models.Skill]
	Subcategories *service.CrudService[models.Subcategory, *models.Subcategory]
	Tags          *service.CrudService[models.Tag, *models.Tag]

	Files *service.FileService

	maxUploadMB int64
}

// Options — внешние зависимости сервисов.
type Options struct {
	Objects     storage.ObjectStorage
	Bucket      string
	MaxUploadMB int64
	// Publisher получает события изменений. nil отключает рассылку.
	Publisher service.ChangePublisher
	// CountCache кеширует ответы /count. nil отключает кеш.
	CountCache *service.CountCache
}

// NewServices собирает репозитории, гидраторы связей и сервисы.
func NewServices(db *sqlx.DB, opts Options) *Services {
	v := validation.New()
	refs := repository.NewReferenceRepository(db)

	categoryRepo := repository.NewCrudRepository[models.Category](db, models.CategoryResource)
	subcategoryRepo := repository.NewCrudRepository[models.Subcategory](db, models.SubcategoryResource)
	fileRepo := repository.NewCrudRepository[models.FileObject](db, models.FileObjectResource)

	s := &Services{
		Categories: crud(opts, service.NewCrudService[models.Category](models.CategoryResource, categoryRepo, v)),
		Countries: crud(opts, service.NewCrudService[models.Country](models.CountryResource,
			repository.NewCrudRepository[models.Country](db, models.CountryResource), v)),
		FileObjects: crud(opts, service.NewCrudService[models.FileObject](models.FileObjectResource, fileRepo, v)),
		OfferMedias: crud(opts, service.NewCrudService[models.OfferMedia](models.OfferMediaResource,
			repository.NewCrudRepository[models.OfferMedia](db, models.OfferMediaResource), v).
			WithHydrator(service.OfferMediaHydrator(refs, fileRepo))),
		OfferPackages: crud(opts, service.NewCrudService[models.OfferPackage](models.OfferPackageResource,
			repository.NewCrudRepository[models.OfferPackage](db, models.OfferPackageResource), v).
			WithHydrator(service.OfferPackageHydrator(refs))),
		OfferReviews: crud(opts, service.NewCrudService[models.OfferReview](models.OfferReviewResource,
			repository.NewCrudRepository[models.OfferReview](db, models.OfferReviewResource), v).
			WithHydrator(service.OfferReviewHydrator(refs))),
		OfferTypes: crud(opts, service.NewCrudService[models.OfferType](models.OfferTypeResource,
			repository.NewCrudRepository[models.OfferType](db, models.OfferTypeResource), v).
			WithHydrator(service.OfferTypeHydrator(subcategoryRepo))),
		Skills: crud(opts, service.NewCrudService[models.Skill](models.SkillResource,
			repository.NewCrudRepository[models.Skill](db, models.SkillResource), v).
			WithHydrator(service.SkillHydrator(categoryRepo))),
		Subcategories: crud(opts, service.NewCrudService[models.Subcategory](models.SubcategoryResource, subcategoryRepo, v).
			WithHydrator(service.SubcategoryHydrator(categoryRepo))),
		Tags: crud(opts, service.NewCrudService[models.Tag](models.TagResource,
			repository.NewCrudRepository[models.Tag](db, models.TagResource), v)),

		maxUploadMB: opts.MaxUploadMB,
	}

	if opts.Objects != nil {
		s.Files = service.NewFileService(s.FileObjects, opts.Objects, opts.Bucket, opts.MaxUploadMB)
	}
	return s
}

func crud[T any, P models.Model[T]](opts Options, svc *service.CrudService[T, P]) *service.CrudService[T, P] {
	if opts.Publisher != nil {
		svc.WithPublisher(opts.Publisher)
	}
	if opts.CountCache != nil {
		svc.WithCountCache(opts.CountCache)
	}
	return svc
}

// Handlers возвращает обработчики всех ресурсов для роутера.
func (s *Services) Handlers(alerts response.Alerts) []handlers.Registrar {
	out := []handlers.Registrar{
		handlers.NewCrudHandler[models.Category](s.Categories, alerts),
		handlers.NewCrudHandler[models.Country](s.Countries, alerts),
		handlers.NewCrudHandler[models.FileObject](s.FileObjects, alerts),
		handlers.NewCrudHandler[models.OfferMedia](s.OfferMedias, alerts),
		handlers.NewCrudHandler[models.OfferPackage](s.OfferPackages, alerts),
		handlers.NewCrudHandler[models.OfferReview](s.OfferReviews, alerts),
		handlers.NewCrudHandler[models.OfferType](s.OfferTypes, alerts),
		handlers.NewCrudHandler[models.Skill](s.Skills, alerts),
		handlers.NewCrudHandler[models.Subcategory](s.Subcategories, alerts),
		handlers.NewCrudHandler[models.Tag](s.Tags, alerts),
	}
	if s.Files != nil {
		out = append(out, handlers.NewFileHandler(s.Files, alerts, s.maxUploadMB))
	}
	return out
}

// Resources перечисляет ресурсы, доступные для подписки на изменения.
func (s *Services) Resources() []models.Resource {
	return []models.Resource{
		models.CategoryResource,
		models.CountryResource,
		models.FileObjectResource,
		models.OfferMediaResource,
		models.OfferPackageResource,
		models.OfferReviewResource,
		models.OfferTypeResource,
		models.SkillResource,
		models.SubcategoryResource,
		models.TagResource,
	}
}

// Seeder возвращает генератор демо-каталога, пишущий через сервисы.
func (s *Services) Seeder(randSeed int64) *seed.Seeder {
	sd := seed.New(randSeed)
	sd.Categories = s.Categories
	sd.Subcategories = s.Subcategories
	sd.Skills = s.Skills
	sd.OfferTypes = s.OfferTypes
	sd.Tags = s.Tags
	sd.Countries = s.Countries
	return sd
}
