package models

// Category — верхний уровень каталога услуг.
type Category struct {
	Identity
	Name   *string `db:"name" json:"name" validate:"required,max=128"`
	Active *bool   `db:"active" json:"active" validate:"required"`
	Audit
}

// Subcategory принадлежит категории.
type Subcategory struct {
	Identity
	Name       *string `db:"name" json:"name" validate:"required,max=128"`
	Active     *bool   `db:"active" json:"active" validate:"required"`
	CategoryID *int64  `db:"category_id" json:"categoryId" filter:"ref"`
	Audit

	Category *Category `db:"-" json:"category,omitempty" validate:"-"`
}

// OfferType — тип предложения внутри подкатегории.
type OfferType struct {
	Identity
	Name          *string `db:"name" json:"name" validate:"required,max=50"`
	Active        *bool   `db:"active" json:"active" validate:"required"`
	SubcategoryID *int64  `db:"subcategory_id" json:"subcategoryId" filter:"ref"`
	Audit

	Subcategory *Subcategory `db:"-" json:"subcategory,omitempty" validate:"-"`
}

// Skill — навык, привязанный к категории.
type Skill struct {
	Identity
	Name       *string `db:"name" json:"name" validate:"required,max=64"`
	Active     *bool   `db:"active" json:"active" validate:"required"`
	CategoryID *int64  `db:"category_id" json:"categoryId" filter:"ref"`
	Audit

	Category *Category `db:"-" json:"category,omitempty" validate:"-"`
}

// Tag — свободная метка.
type Tag struct {
	Identity
	Name *string `db:"name" json:"name" validate:"required,max=64"`
	Audit
}

// Country — справочник стран.
type Country struct {
	Identity
	Name   *string `db:"name" json:"name" validate:"required,max=128"`
	Iso2   *string `db:"iso_2" json:"iso2" validate:"omitempty,max=2"`
	Iso3   *string `db:"iso_3" json:"iso3" validate:"omitempty,max=3"`
	Region *string `db:"region" json:"region" validate:"required,max=20"`
	Active *bool   `db:"active" json:"active" validate:"required"`
	Audit
}
