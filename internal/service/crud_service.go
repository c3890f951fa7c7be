package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-catalog/internal/filter"
	"github.com/ignatzorin/freelance-catalog/internal/logger"
	"github.com/ignatzorin/freelance-catalog/internal/metrics"
	"github.com/ignatzorin/freelance-catalog/internal/models"
	"github.com/ignatzorin/freelance-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-catalog/internal/repository/common"
)

// Действия, о которых сообщается в ленте изменений.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Repository — хранилище одной сущности каталога.
type Repository[T any, P models.Model[T]] interface {
	Create(ctx context.Context, entity P) error
	Update(ctx context.Context, entity P) error
	Modify(ctx context.Context, id int64, fn func(entity P) error) error
	FindByID(ctx context.Context, id int64) (P, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	FindByCriteria(ctx context.Context, criteria filter.Criteria, page filter.Page) ([]P, error)
	CountByCriteria(ctx context.Context, criteria filter.Criteria) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// EntityValidator проверяет ограничения полей сущности.
type EntityValidator interface {
	Struct(entity string, s any) error
}

// ChangePublisher получает уведомления об успешных изменениях.
type ChangePublisher interface {
	PublishChange(entity, action string, id int64)
}

// Hydrator заполняет связанные объекты у страницы сущностей.
type Hydrator[P any] func(ctx context.Context, items []P) error

// CrudService реализует операции REST-ресурса поверх репозитория.
type CrudService[T any, P models.Model[T]] struct {
	resource  models.Resource
	repo      Repository[T, P]
	validator EntityValidator
	hydrate   Hydrator[P]
	publisher ChangePublisher
	counts    *CountCache
	now       func() time.Time
}

// NewCrudService создаёт сервис ресурса.
func NewCrudService[T any, P models.Model[T]](resource models.Resource, repo Repository[T, P], validator EntityValidator) *CrudService[T, P] {
	return &CrudService[T, P]{
		resource:  resource,
		repo:      repo,
		validator: validator,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithHydrator задаёт загрузку связей для eagerload.
func (s *CrudService[T, P]) WithHydrator(h Hydrator[P]) *CrudService[T, P] {
	s.hydrate = h
	return s
}

// WithPublisher подключает ленту изменений.
func (s *CrudService[T, P]) WithPublisher(p ChangePublisher) *CrudService[T, P] {
	s.publisher = p
	return s
}

// WithCountCache включает кеширование count-запросов.
func (s *CrudService[T, P]) WithCountCache(c *CountCache) *CrudService[T, P] {
	s.counts = c
	return s
}

// WithClock подменяет источник времени.
func (s *CrudService[T, P]) WithClock(now func() time.Time) *CrudService[T, P] {
	s.now = now
	return s
}

// Resource возвращает описание ресурса.
func (s *CrudService[T, P]) Resource() models.Resource {
	return s.resource
}

// Create сохраняет новую сущность. Переданный id считается ошибкой.
func (s *CrudService[T, P]) Create(ctx context.Context, entity P) (P, error) {
	if entity.GetID() != nil {
		return nil, apperror.BadRequestAlert(s.resource.Name, apperror.KeyIDExists, "новая сущность не может иметь id")
	}

	entity.AuditInfo().StampCreated(LoginFrom(ctx))
	if err := s.validator.Struct(s.resource.Name, entity); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, entity); err != nil {
		return nil, s.mapError(err)
	}

	s.changed(ctx, ActionCreated, entity)
	return entity, nil
}

// Update полностью заменяет сущность с указанным id.
func (s *CrudService[T, P]) Update(ctx context.Context, id int64, entity P) (P, error) {
	if err := s.checkID(entity.GetID(), id); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err)
	}
	if !exists {
		return nil, s.idNotFound()
	}

	entity.AuditInfo().StampModified(LoginFrom(ctx), s.now())
	if err := s.validator.Struct(s.resource.Name, entity); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, entity); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, s.idNotFound()
		}
		return nil, s.mapError(err)
	}

	s.changed(ctx, ActionUpdated, entity)
	return entity, nil
}

// PartialUpdate применяет JSON merge patch к сохранённой сущности.
// Отсутствующие ключи и ключи со значением null сохраняют прежние значения.
// Чтение, слияние и запись идут в одной транзакции под блокировкой строки.
func (s *CrudService[T, P]) PartialUpdate(ctx context.Context, id int64, patch []byte) (P, error) {
	var head struct {
		ID *int64 `json:"id"`
	}
	if err := json.Unmarshal(patch, &head); err != nil {
		return nil, s.invalidBody(err)
	}
	if err := s.checkID(head.ID, id); err != nil {
		return nil, err
	}

	merge, err := dropNulls(patch)
	if err != nil {
		return nil, s.invalidBody(err)
	}

	login := LoginFrom(ctx)
	var saved P
	err = s.repo.Modify(ctx, id, func(entity P) error {
		if login != "" {
			// Автор и время изменения обновляются, если патч не задал их явно.
			audit := entity.AuditInfo()
			audit.LastModifiedBy = nil
			audit.LastModifiedDate = nil
		}

		if err := json.Unmarshal(merge, entity); err != nil {
			return s.invalidBody(err)
		}
		entity.SetID(&id)
		entity.AuditInfo().StampModified(login, s.now())

		if err := s.validator.Struct(s.resource.Name, entity); err != nil {
			return err
		}
		saved = entity
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, s.idNotFound()
		}
		return nil, s.mapError(err)
	}

	s.changed(ctx, ActionUpdated, saved)
	return saved, nil
}

// dropNulls убирает из объекта патча ключи со значением null.
func dropNulls(patch []byte) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return nil, err
	}
	for key, value := range fields {
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			delete(fields, key)
		}
	}
	return json.Marshal(fields)
}

// FindOne возвращает сущность вместе со связями.
func (s *CrudService[T, P]) FindOne(ctx context.Context, id int64) (P, error) {
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, apperror.NotFound(s.resource.Name)
		}
		return nil, s.mapError(err)
	}

	if err := s.hydrateAll(ctx, []P{entity}); err != nil {
		return nil, err
	}
	return entity, nil
}

// FindByCriteria возвращает страницу и общее количество подходящих записей.
func (s *CrudService[T, P]) FindByCriteria(ctx context.Context, criteria filter.Criteria, page filter.Page, eager bool) ([]P, int64, error) {
	total, err := s.repo.CountByCriteria(ctx, criteria)
	if err != nil {
		return nil, 0, s.mapError(err)
	}

	items, err := s.repo.FindByCriteria(ctx, criteria, page)
	if err != nil {
		return nil, 0, s.mapError(err)
	}

	if eager {
		if err := s.hydrateAll(ctx, items); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

// Count считает записи, подходящие под фильтры.
func (s *CrudService[T, P]) Count(ctx context.Context, criteria filter.Criteria) (int64, error) {
	var (
		count int64
		err   error
	)
	if s.counts != nil {
		count, err = s.counts.GetOrSet(ctx, CountCacheKey(s.resource.Name, criteria), func(ctx context.Context) (int64, error) {
			return s.repo.CountByCriteria(ctx, criteria)
		})
	} else {
		count, err = s.repo.CountByCriteria(ctx, criteria)
	}
	if err != nil {
		return 0, s.mapError(err)
	}
	return count, nil
}

// Delete удаляет сущность. Отсутствующая запись даёт 404.
func (s *CrudService[T, P]) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	switch {
	case err == nil:
		s.publish(ctx, ActionDeleted, id)
		return nil
	case errors.Is(err, common.ErrNotFound):
		return apperror.NotFound(s.resource.Name)
	case errors.Is(err, common.ErrReferenceViolation):
		return apperror.Wrap(err, apperror.ErrCodeConflict, "на сущность ссылаются другие записи").
			WithEntity(s.resource.Name, apperror.KeyReference)
	default:
		return s.mapError(err)
	}
}

func (s *CrudService[T, P]) checkID(bodyID *int64, pathID int64) error {
	if bodyID == nil {
		return apperror.BadRequestAlert(s.resource.Name, apperror.KeyIDNull, "не указан id")
	}
	if *bodyID != pathID {
		return apperror.BadRequestAlert(s.resource.Name, apperror.KeyIDInvalid, "id в теле не совпадает с id в пути")
	}
	return nil
}

func (s *CrudService[T, P]) idNotFound() error {
	return apperror.BadRequestAlert(s.resource.Name, apperror.KeyIDNotFound, "сущность не найдена")
}

func (s *CrudService[T, P]) invalidBody(err error) error {
	return apperror.Wrap(err, apperror.ErrCodeBadRequest, "некорректное тело запроса").
		WithEntity(s.resource.Name, apperror.KeyInvalidBody)
}

func (s *CrudService[T, P]) hydrateAll(ctx context.Context, items []P) error {
	if s.hydrate == nil || len(items) == 0 {
		return nil
	}
	if err := s.hydrate(ctx, items); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *CrudService[T, P]) mapError(err error) error {
	return mapRepoError(s.resource.Name, err)
}

// mapRepoError переводит ошибки репозитория в ошибки API для сущности entity.
func mapRepoError(entity string, err error) error {
	var appErr *apperror.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, common.ErrReferenceViolation):
		return apperror.Wrap(err, apperror.ErrCodeBadRequest, "связанная сущность не существует").
			WithEntity(entity, apperror.KeyReference)
	case errors.Is(err, common.ErrAlreadyExists):
		return apperror.Wrap(err, apperror.ErrCodeConflict, "запись уже существует").
			WithEntity(entity, apperror.KeyDuplicate)
	case errors.Is(err, common.ErrInvalidInput):
		return apperror.Wrap(err, apperror.ErrCodeBadRequest, "значение не подходит под ограничения базы").
			WithEntity(entity, apperror.KeyInvalidBody)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка базы данных")
}

func (s *CrudService[T, P]) changed(ctx context.Context, action string, entity P) {
	if id := entity.GetID(); id != nil {
		s.publish(ctx, action, *id)
	}
}

func (s *CrudService[T, P]) publish(ctx context.Context, action string, id int64) {
	if s.counts != nil {
		s.counts.Invalidate(s.resource.Name)
	}
	metrics.EntityChanges.WithLabelValues(s.resource.Name, action).Inc()
	logger.FromContext(ctx).WithFields(logrus.Fields{
		"entity": s.resource.Name,
		"action": action,
		"id":     id,
	}).Debug("сущность изменена")

	if s.publisher != nil {
		s.publisher.PublishChange(s.resource.Name, action, id)
	}
}
