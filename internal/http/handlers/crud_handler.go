package handlers

import (
	"context"
	"errors"
	"io"
	"mime"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-catalog/internal/filter"
	"github.com/ignatzorin/freelance-catalog/internal/http/middleware"
	"github.com/ignatzorin/freelance-catalog/internal/http/response"
	"github.com/ignatzorin/freelance-catalog/internal/logger"
	"github.com/ignatzorin/freelance-catalog/internal/models"
	"github.com/ignatzorin/freelance-catalog/internal/pkg/apperror"
)

// CrudService — операции ресурса, которые нужны обработчику.
type CrudService[T any, P models.Model[T]] interface {
	Resource() models.Resource
	Create(ctx context.Context, entity P) (P, error)
	Update(ctx context.Context, id int64, entity P) (P, error)
	PartialUpdate(ctx context.Context, id int64, patch []byte) (P, error)
	FindOne(ctx context.Context, id int64) (P, error)
	FindByCriteria(ctx context.Context, criteria filter.Criteria, page filter.Page, eager bool) ([]P, int64, error)
	Count(ctx context.Context, criteria filter.Criteria) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// Registrar регистрирует маршруты ресурса в группе /api.
type Registrar interface {
	Register(api *gin.RouterGroup)
}

// CrudHandler обслуживает /api/<ресурс> для одной сущности.
type CrudHandler[T any, P models.Model[T]] struct {
	svc      CrudService[T, P]
	resource models.Resource
	alerts   response.Alerts
}

// NewCrudHandler создаёт обработчик ресурса.
func NewCrudHandler[T any, P models.Model[T]](svc CrudService[T, P], alerts response.Alerts) *CrudHandler[T, P] {
	return &CrudHandler[T, P]{svc: svc, resource: svc.Resource(), alerts: alerts}
}

// Register вешает маршруты ресурса. PUT и PATCH без id в пути получают 405 от роутера.
func (h *CrudHandler[T, P]) Register(api *gin.RouterGroup) {
	g := api.Group("/" + h.resource.Path)
	id := middleware.IDParam("id", h.resource.Name)

	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/count", h.Count)
	g.GET("/:id", id, h.Get)
	g.PUT("/:id", id, h.Update)
	g.PATCH("/:id", id, h.Patch)
	g.DELETE("/:id", id, h.Delete)
}

// Create обрабатывает POST /api/<ресурс>.
func (h *CrudHandler[T, P]) Create(c *gin.Context) {
	h.debug(c, "REST request to save")

	entity := P(new(T))
	if err := c.ShouldBindJSON(entity); err != nil {
		h.fail(c, h.invalidBody(err))
		return
	}

	saved, err := h.svc.Create(c.Request.Context(), entity)
	if err != nil {
		h.fail(c, err)
		return
	}

	id := *saved.GetID()
	h.alerts.Created(c, h.resource.Name, id)
	response.Created(c, location(h.resource, id), saved)
}

// Update обрабатывает PUT /api/<ресурс>/:id.
func (h *CrudHandler[T, P]) Update(c *gin.Context) {
	h.debug(c, "REST request to update")

	entity := P(new(T))
	if err := c.ShouldBindJSON(entity); err != nil {
		h.fail(c, h.invalidBody(err))
		return
	}

	id := middleware.EntityID(c)
	saved, err := h.svc.Update(c.Request.Context(), id, entity)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.alerts.Updated(c, h.resource.Name, id)
	response.OK(c, saved)
}

// Patch обрабатывает PATCH /api/<ресурс>/:id как JSON merge patch.
func (h *CrudHandler[T, P]) Patch(c *gin.Context) {
	h.debug(c, "REST request to partial update")

	if !isPatchContentType(c.GetHeader("Content-Type")) {
		h.fail(c, apperror.New(apperror.ErrCodeUnsupportedMedia, "ожидается application/json или application/merge-patch+json").
			WithEntity(h.resource.Name, apperror.KeyUnsupportedType))
		return
	}

	patch, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.fail(c, h.invalidBody(err))
		return
	}

	id := middleware.EntityID(c)
	saved, err := h.svc.PartialUpdate(c.Request.Context(), id, patch)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.alerts.Updated(c, h.resource.Name, id)
	response.OK(c, saved)
}

// List обрабатывает GET /api/<ресурс> с фильтрами, пагинацией и eagerload.
func (h *CrudHandler[T, P]) List(c *gin.Context) {
	h.debug(c, "REST request to get by criteria")

	query := c.Request.URL.Query()
	criteria, err := filter.Parse(query, h.resource.Fields)
	if err != nil {
		h.fail(c, h.invalidFilter(err))
		return
	}
	page, err := filter.ParsePage(query, h.resource.Fields)
	if err != nil {
		h.fail(c, h.invalidFilter(err))
		return
	}

	eager := false
	if raw := query.Get("eagerload"); raw != "" {
		if eager, err = strconv.ParseBool(raw); err != nil {
			h.fail(c, h.invalidFilter(err))
			return
		}
	}

	items, total, err := h.svc.FindByCriteria(c.Request.Context(), criteria, page, eager)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Page(c, items, total, page)
}

// Count обрабатывает GET /api/<ресурс>/count.
func (h *CrudHandler[T, P]) Count(c *gin.Context) {
	h.debug(c, "REST request to count by criteria")

	criteria, err := filter.Parse(c.Request.URL.Query(), h.resource.Fields)
	if err != nil {
		h.fail(c, h.invalidFilter(err))
		return
	}

	count, err := h.svc.Count(c.Request.Context(), criteria)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.OK(c, count)
}

// Get обрабатывает GET /api/<ресурс>/:id.
func (h *CrudHandler[T, P]) Get(c *gin.Context) {
	h.debug(c, "REST request to get")

	entity, err := h.svc.FindOne(c.Request.Context(), middleware.EntityID(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.OK(c, entity)
}

// Delete обрабатывает DELETE /api/<ресурс>/:id.
func (h *CrudHandler[T, P]) Delete(c *gin.Context) {
	h.debug(c, "REST request to delete")

	id := middleware.EntityID(c)
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}

	h.alerts.Deleted(c, h.resource.Name, id)
	response.NoContent(c)
}

func (h *CrudHandler[T, P]) debug(c *gin.Context, action string) {
	entry := logger.FromContext(c.Request.Context()).WithField("entity", h.resource.Name)
	if id := c.Param("id"); id != "" {
		entry = entry.WithField("id", id)
	}
	entry.Debug(action)
}

func (h *CrudHandler[T, P]) fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func (h *CrudHandler[T, P]) invalidBody(err error) error {
	return apperror.Wrap(err, apperror.ErrCodeBadRequest, "некорректное тело запроса").
		WithEntity(h.resource.Name, apperror.KeyInvalidBody)
}

func (h *CrudHandler[T, P]) invalidFilter(err error) error {
	msg := "некорректные параметры запроса"
	if errors.Is(err, filter.ErrInvalidFilter) {
		msg = err.Error()
	}
	return apperror.Wrap(err, apperror.ErrCodeBadRequest, msg).
		WithEntity(h.resource.Name, apperror.KeyInvalidFilter)
}

func isPatchContentType(header string) bool {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || mediaType == "application/merge-patch+json"
}
