package models

import "github.com/shopspring/decimal"

func init() {
	// Цены отдаются числом, а не строкой.
	decimal.MarshalJSONWithoutQuotes = true
}

// OfferMedia связывает предложение с файлом.
type OfferMedia struct {
	Identity
	MediaKind *MediaKind `db:"media_kind" json:"mediaKind" validate:"required,oneof=IMAGE VIDEO DOCUMENT"`
	IsPrimary *bool      `db:"is_primary" json:"isPrimary" validate:"required"`
	Caption   *string    `db:"caption" json:"caption" validate:"omitempty,max=140"`
	OfferID   *int64     `db:"offer_id" json:"offerId" filter:"ref"`
	FileID    *int64     `db:"file_id" json:"fileId" filter:"ref"`
	Audit

	Offer *OfferRef   `db:"-" json:"offer,omitempty" validate:"-"`
	File  *FileObject `db:"-" json:"file,omitempty" validate:"-"`
}

// OfferPackage — тарифный пакет предложения.
type OfferPackage struct {
	Identity
	Name         *string          `db:"name" json:"name" validate:"required,max=50"`
	Description  *string          `db:"description" json:"description" validate:"required,max=200"`
	Price        *decimal.Decimal `db:"price" json:"price" validate:"required"`
	Currency     *string          `db:"currency" json:"currency" validate:"required,max=3"`
	DeliveryDays *int32           `db:"delivery_days" json:"deliveryDays" validate:"required,min=1"`
	PackageTier  *PackageTier     `db:"package_tier" json:"packageTier" validate:"required,oneof=BASIC PREMIUM STANDARD"`
	Active       *bool            `db:"active" json:"active" validate:"required"`
	OfferID      *int64           `db:"offer_id" json:"offerId" filter:"ref"`
	Audit

	Offer *OfferRef `db:"-" json:"offer,omitempty" validate:"-"`
}

// OfferReview — отзыв о предложении.
type OfferReview struct {
	Identity
	Text       *string  `db:"text" json:"text" validate:"omitempty,max=500"`
	Rating     *float64 `db:"rating" json:"rating" validate:"required,min=1,max=5"`
	Checked    *bool    `db:"checked" json:"checked"`
	OfferID    *int64   `db:"offer_id" json:"offerId" filter:"ref"`
	ReviewerID *int64   `db:"reviewer_id" json:"reviewerId" filter:"ref"`
	Audit

	Offer    *OfferRef   `db:"-" json:"offer,omitempty" validate:"-"`
	Reviewer *ProfileRef `db:"-" json:"reviewer,omitempty" validate:"-"`
}

// OfferRef — краткое представление предложения из внешней таблицы offer.
type OfferRef struct {
	ID   int64   `db:"id" json:"id"`
	Name *string `db:"name" json:"name,omitempty"`
}

// ProfileRef — краткое представление профиля из внешней таблицы profile.
type ProfileRef struct {
	ID        int64   `db:"id" json:"id"`
	FirstName *string `db:"first_name" json:"firstName,omitempty"`
	LastName  *string `db:"last_name" json:"lastName,omitempty"`
}
