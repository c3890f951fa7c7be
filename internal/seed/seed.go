package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-catalog/internal/logger"
	"github.com/ignatzorin/freelance-catalog/internal/models"
)

// Creator — то, что умеет сохранять сущность. CrudService удовлетворяет ему.
type Creator[P any] interface {
	Create(ctx context.Context, entity P) (P, error)
}

// Counts задаёт объём генерируемых данных.
type Counts struct {
	Categories       int
	SubcategoriesPer int
	SkillsPer        int
	OfferTypesPer    int
	Tags             int
	Countries        int
}

// DefaultCounts — небольшой демо-каталог.
var DefaultCounts = Counts{
	Categories:       5,
	SubcategoriesPer: 3,
	SkillsPer:        4,
	OfferTypesPer:    2,
	Tags:             20,
	Countries:        10,
}

// Result — сколько записей создано.
type Result struct {
	Categories    int `json:"categories"`
	Subcategories int `json:"subcategories"`
	Skills        int `json:"skills"`
	OfferTypes    int `json:"offerTypes"`
	Tags          int `json:"tags"`
	Countries     int `json:"countries"`
}

// Seeder наполняет справочники каталога фейковыми данными.
type Seeder struct {
	Categories    Creator[*models.Category]
	Subcategories Creator[*models.Subcategory]
	Skills        Creator[*models.Skill]
	OfferTypes    Creator[*models.OfferType]
	Tags          Creator[*models.Tag]
	Countries     Creator[*models.Country]

	faker *gofakeit.Faker
	now   func() time.Time
	log   *logrus.Entry
}

// New создаёт генератор. При seed == 0 данные случайные.
func New(seed int64) *Seeder {
	return &Seeder{
		faker: gofakeit.New(seed),
		now:   time.Now,
		log:   logger.L().WithField("component", "seed"),
	}
}

var categoryNames = []string{
	"Разработка", "Дизайн", "Маркетинг", "Тексты и переводы", "Видео и анимация",
	"Аудио", "Бизнес", "Аналитика", "Обучение", "Администрирование",
}

var regions = []string{"EUROPE", "ASIA", "AFRICA", "NORTH_AMERICA", "SOUTH_AMERICA", "OCEANIA"}

// Run создаёт категории, вложенные в них подкатегории, навыки и типы предложений,
// а также теги и страны.
func (s *Seeder) Run(ctx context.Context, counts Counts) (Result, error) {
	var res Result
	now := s.now().UTC().Truncate(time.Second)
	audit := models.Audit{CreatedDate: &now, CreatedBy: ptr("seed")}

	for i := 0; i < counts.Categories; i++ {
		name := categoryNames[i%len(categoryNames)]
		if i >= len(categoryNames) {
			name = fmt.Sprintf("%s %d", name, i/len(categoryNames)+1)
		}
		category, err := s.Categories.Create(ctx, &models.Category{Name: &name, Active: ptr(true), Audit: audit})
		if err != nil {
			return res, fmt.Errorf("seed: категория %q: %w", name, err)
		}
		res.Categories++

		for j := 0; j < counts.SkillsPer; j++ {
			skillName := s.faker.HackerNoun() + " " + s.faker.HackerVerb()
			if _, err := s.Skills.Create(ctx, &models.Skill{
				Name:       truncate(skillName, 64),
				Active:     ptr(s.faker.Bool()),
				CategoryID: category.ID,
				Audit:      audit,
			}); err != nil {
				return res, fmt.Errorf("seed: навык: %w", err)
			}
			res.Skills++
		}

		for j := 0; j < counts.SubcategoriesPer; j++ {
			subName := s.faker.JobDescriptor() + " " + s.faker.JobLevel()
			sub, err := s.Subcategories.Create(ctx, &models.Subcategory{
				Name:       truncate(subName, 128),
				Active:     ptr(true),
				CategoryID: category.ID,
				Audit:      audit,
			})
			if err != nil {
				return res, fmt.Errorf("seed: подкатегория: %w", err)
			}
			res.Subcategories++

			for k := 0; k < counts.OfferTypesPer; k++ {
				if _, err := s.OfferTypes.Create(ctx, &models.OfferType{
					Name:          truncate(s.faker.BuzzWord()+" "+s.faker.HipsterWord(), 50),
					Active:        ptr(true),
					SubcategoryID: sub.ID,
					Audit:         audit,
				}); err != nil {
					return res, fmt.Errorf("seed: тип предложения: %w", err)
				}
				res.OfferTypes++
			}
		}
	}

	for i := 0; i < counts.Tags; i++ {
		if _, err := s.Tags.Create(ctx, &models.Tag{Name: truncate(s.faker.Word(), 64), Audit: audit}); err != nil {
			return res, fmt.Errorf("seed: тег: %w", err)
		}
		res.Tags++
	}

	for i := 0; i < counts.Countries; i++ {
		iso2 := s.faker.CountryAbr()
		if _, err := s.Countries.Create(ctx, &models.Country{
			Name:   truncate(s.faker.Country(), 128),
			Iso2:   truncate(iso2, 2),
			Region: ptr(s.faker.RandomString(regions)),
			Active: ptr(true),
			Audit:  audit,
		}); err != nil {
			return res, fmt.Errorf("seed: страна: %w", err)
		}
		res.Countries++
	}

	s.log.WithFields(logrus.Fields{
		"categories":    res.Categories,
		"subcategories": res.Subcategories,
		"skills":        res.Skills,
		"offer_types":   res.OfferTypes,
		"tags":          res.Tags,
		"countries":     res.Countries,
	}).Info("seed: демо-каталог создан")

	return res, nil
}

func ptr[T any](v T) *T {
	return &v
}

func truncate(s string, max int) *string {
	r := []rune(s)
	if len(r) > max {
		r = r[:max]
	}
	out := string(r)
	return &out
}
