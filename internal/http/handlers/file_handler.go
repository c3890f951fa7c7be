package handlers

import (
	"context"
	"errors"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-catalog/internal/http/middleware"
	"github.com/ignatzorin/freelance-catalog/internal/http/response"
	"github.com/ignatzorin/freelance-catalog/internal/models"
	"github.com/ignatzorin/freelance-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-catalog/internal/service"
	"github.com/ignatzorin/freelance-catalog/internal/storage"
)

// multipartOverhead — запас на заголовки multipart сверх лимита файла.
const multipartOverhead = 1 << 20

// FileUploader загружает и отдаёт содержимое файлов.
type FileUploader interface {
	Upload(ctx context.Context, in service.Upload) (*models.FileObject, error)
	Open(ctx context.Context, id int64) (*models.FileObject, *storage.Object, error)
}

// FileHandler обслуживает загрузку и скачивание содержимого file-objects.
type FileHandler struct {
	files    FileUploader
	alerts   response.Alerts
	maxBytes int64
}

// NewFileHandler создаёт обработчик файлов.
func NewFileHandler(files FileUploader, alerts response.Alerts, maxUploadMB int64) *FileHandler {
	return &FileHandler{files: files, alerts: alerts, maxBytes: maxUploadMB * 1024 * 1024}
}

// Register вешает маршруты upload и content рядом с CRUD маршрутами file-objects.
func (h *FileHandler) Register(api *gin.RouterGroup) {
	g := api.Group("/" + models.FileObjectResource.Path)
	g.POST("/upload", h.Upload)
	g.GET("/:id/content", middleware.IDParam("id", models.FileObjectResource.Name), h.Content)
}

// Upload обрабатывает POST /api/file-objects/upload (multipart: file, destination).
func (h *FileHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(apperror.Wrap(err, apperror.ErrCodeTooLarge, "размер файла превышает лимит"))
			return
		}
		_ = c.Error(apperror.Wrap(err, apperror.ErrCodeBadRequest, "ожидается multipart поле file").
			WithEntity(models.FileObjectResource.Name, apperror.KeyInvalidBody))
		return
	}

	file, err := header.Open()
	if err != nil {
		_ = c.Error(apperror.Wrap(err, apperror.ErrCodeBadRequest, "не удалось открыть файл").
			WithEntity(models.FileObjectResource.Name, apperror.KeyInvalidBody))
		return
	}
	defer file.Close()

	saved, err := h.files.Upload(c.Request.Context(), service.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Destination: c.PostForm("destination"),
		Body:        file,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.alerts.Created(c, models.FileObjectResource.Name, *saved.ID)
	response.Created(c, location(models.FileObjectResource, *saved.ID), saved)
}

// Content обрабатывает GET /api/file-objects/:id/content.
func (h *FileHandler) Content(c *gin.Context) {
	record, obj, err := h.files.Open(c.Request.Context(), middleware.EntityID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	name := path.Base(*record.ObjectKey)

	c.DataFromReader(http.StatusOK, obj.Size, contentType, obj.Body, map[string]string{
		"Content-Disposition": `inline; filename="` + name + `"`,
	})
}
