package models

import "github.com/ignatzorin/freelance-catalog/internal/filter"

// Resource описывает REST-ресурс сущности: имя для алертов, путь, таблицу и фильтруемые поля.
type Resource struct {
	Name   string
	Path   string
	Table  string
	Fields []filter.Field
}

// Field ищет фильтруемое поле по JSON-имени.
func (r Resource) Field(name string) (filter.Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return filter.Field{}, false
}

func newResource[T any](name, path, table string) Resource {
	return Resource{Name: name, Path: path, Table: table, Fields: filter.FieldsOf(new(T))}
}

var (
	CategoryResource     = newResource[Category]("category", "categories", "category")
	CountryResource      = newResource[Country]("country", "countries", "country")
	FileObjectResource   = newResource[FileObject]("fileObject", "file-objects", "file_object")
	OfferMediaResource   = newResource[OfferMedia]("offerMedia", "offer-medias", "offer_media")
	OfferPackageResource = newResource[OfferPackage]("offerPackage", "offer-packages", "offer_package")
	OfferReviewResource  = newResource[OfferReview]("offerReview", "offer-reviews", "offer_review")
	OfferTypeResource    = newResource[OfferType]("offerType", "offer-types", "offer_type")
	SkillResource        = newResource[Skill]("skill", "skills", "skill")
	SubcategoryResource  = newResource[Subcategory]("subcategory", "subcategories", "subcategory")
	TagResource          = newResource[Tag]("tag", "tags", "tag")
)
