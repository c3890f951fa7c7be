package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-catalog/internal/models"
)

type memCreator[T any, P models.Model[T]] struct {
	next  int64
	saved []P
	err   error
}

func (m *memCreator[T, P]) Create(_ context.Context, entity P) (P, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.next++
	id := m.next
	entity.SetID(&id)
	m.saved = append(m.saved, entity)
	return entity, nil
}

type fixture struct {
	categories    *memCreator[models.Category, *models.Category]
	subcategories *memCreator[models.Subcategory, *models.Subcategory]
	skills        *memCreator[models.Skill, *models.Skill]
	offerTypes    *memCreator[models.OfferType, *models.OfferType]
	tags          *memCreator[models.Tag, *models.Tag]
	countries     *memCreator[models.Country, *models.Country]
}

func newSeeder() (*Seeder, *fixture) {
	f := &fixture{
		categories:    &memCreator[models.Category, *models.Category]{},
		subcategories: &memCreator[models.Subcategory, *models.Subcategory]{},
		skills:        &memCreator[models.Skill, *models.Skill]{},
		offerTypes:    &memCreator[models.OfferType, *models.OfferType]{},
		tags:          &memCreator[models.Tag, *models.Tag]{},
		countries:     &memCreator[models.Country, *models.Country]{},
	}
	s := New(42)
	s.Categories = f.categories
	s.Subcategories = f.subcategories
	s.Skills = f.skills
	s.OfferTypes = f.offerTypes
	s.Tags = f.tags
	s.Countries = f.countries
	return s, f
}

func TestSeeder_Run(t *testing.T) {
	s, f := newSeeder()

	res, err := s.Run(context.Background(), DefaultCounts)
	require.NoError(t, err)

	assert.Equal(t, Result{
		Categories:    5,
		Subcategories: 15,
		Skills:        20,
		OfferTypes:    30,
		Tags:          20,
		Countries:     10,
	}, res)

	// Дочерние записи ссылаются на созданных родителей.
	for _, sub := range f.subcategories.saved {
		require.NotNil(t, sub.CategoryID)
		assert.LessOrEqual(t, *sub.CategoryID, int64(5))
		require.NotNil(t, sub.CreatedDate)
	}
	for _, ot := range f.offerTypes.saved {
		require.NotNil(t, ot.SubcategoryID)
		assert.LessOrEqual(t, *ot.SubcategoryID, int64(15))
		assert.LessOrEqual(t, len([]rune(*ot.Name)), 50)
	}
	for _, c := range f.countries.saved {
		assert.Contains(t, regions, *c.Region)
		assert.LessOrEqual(t, len(*c.Iso2), 2)
	}
}

func TestSeeder_Run_StopsOnError(t *testing.T) {
	s, f := newSeeder()
	f.tags.err = errors.New("db down")

	res, err := s.Run(context.Background(), Counts{Categories: 1, Tags: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "тег")
	assert.Equal(t, 1, res.Categories)
	assert.Equal(t, 0, res.Tags)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Раз", *truncate("Разработка", 3))
	assert.Equal(t, "go", *truncate("go", 10))
}
