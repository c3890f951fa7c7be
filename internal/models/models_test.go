package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-catalog/internal/filter"
)

func TestResourceFields_InferKinds(t *testing.T) {
	cases := []struct {
		res  Resource
		name string
		kind filter.Kind
		ref  bool
	}{
		{CategoryResource, "id", filter.KindInt64, false},
		{CategoryResource, "name", filter.KindString, false},
		{CategoryResource, "active", filter.KindBool, false},
		{CategoryResource, "createdDate", filter.KindInstant, false},
		{CategoryResource, "lastModifiedBy", filter.KindString, false},
		{CountryResource, "iso2", filter.KindString, false},
		{FileObjectResource, "fileSize", filter.KindInt64, false},
		{FileObjectResource, "durationSeconds", filter.KindInt32, false},
		{OfferMediaResource, "mediaKind", filter.KindEnum, false},
		{OfferMediaResource, "fileId", filter.KindInt64, true},
		{OfferPackageResource, "price", filter.KindDecimal, false},
		{OfferPackageResource, "deliveryDays", filter.KindInt32, false},
		{OfferReviewResource, "rating", filter.KindFloat, false},
		{OfferReviewResource, "reviewerId", filter.KindInt64, true},
		{OfferTypeResource, "subcategoryId", filter.KindInt64, true},
		{SkillResource, "categoryId", filter.KindInt64, true},
	}

	for _, tc := range cases {
		f, ok := tc.res.Field(tc.name)
		require.True(t, ok, "%s.%s", tc.res.Name, tc.name)
		assert.Equal(t, tc.kind, f.Kind, "%s.%s", tc.res.Name, tc.name)
		assert.Equal(t, tc.ref, f.Ref, "%s.%s", tc.res.Name, tc.name)
	}
}

func TestResourceFields_SkipRelations(t *testing.T) {
	_, ok := OfferMediaResource.Field("offer")
	assert.False(t, ok)
	_, ok = SubcategoryResource.Field("category")
	assert.False(t, ok)
}

func TestResourceFields_EnumValues(t *testing.T) {
	f, ok := OfferPackageResource.Field("packageTier")
	require.True(t, ok)
	assert.Equal(t, []string{"BASIC", "PREMIUM", "STANDARD"}, f.Enum)
}

func TestOfferPackage_JSONShape(t *testing.T) {
	price := decimal.RequireFromString("12.50")
	tier := PackageTierBasic
	created := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	id := int64(7)

	pkg := OfferPackage{Price: &price, PackageTier: &tier}
	pkg.ID = &id
	pkg.CreatedDate = &created

	raw, err := json.Marshal(pkg)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, float64(7), out["id"])
	assert.Equal(t, 12.5, out["price"])
	assert.Equal(t, "BASIC", out["packageTier"])
	assert.Equal(t, "1970-01-01T00:00:00Z", out["createdDate"])
	assert.NotContains(t, out, "offer")
}

func TestAudit_Stamps(t *testing.T) {
	var a Audit
	now := time.Now()

	a.StampCreated("")
	assert.Nil(t, a.CreatedBy)

	a.StampCreated("admin")
	require.NotNil(t, a.CreatedBy)
	assert.Equal(t, "admin", *a.CreatedBy)

	other := "editor"
	a.LastModifiedBy = &other
	a.StampModified("admin", now)
	assert.Equal(t, "editor", *a.LastModifiedBy)
	require.NotNil(t, a.LastModifiedDate)
	assert.Equal(t, now, *a.LastModifiedDate)
}
