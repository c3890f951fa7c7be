package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/ignatzorin/freelance-catalog/internal/logger"
	"github.com/ignatzorin/freelance-catalog/internal/metrics"
	"github.com/ignatzorin/freelance-catalog/internal/models"
	"github.com/ignatzorin/freelance-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-catalog/internal/storage"
	"github.com/ignatzorin/freelance-catalog/internal/validation"
)

const (
	defaultDestination = "files"
	anonymousLogin     = "anonymous"
	defaultContentType = "application/octet-stream"
	defaultExtension   = "bin"
)

// FileObjects — операции над метаданными файлов. Реализуется CrudService ресурса fileObject.
type FileObjects interface {
	Create(ctx context.Context, entity *models.FileObject) (*models.FileObject, error)
	FindOne(ctx context.Context, id int64) (*models.FileObject, error)
}

// Upload — входные данные загрузки.
type Upload struct {
	FileName    string
	ContentType string
	Destination string
	Body        io.Reader
}

// FileService загружает содержимое файлов в хранилище и ведёт записи file_object.
type FileService struct {
	files    FileObjects
	storage  storage.ObjectStorage
	bucket   string
	maxBytes int64
	now      func() time.Time
}

// NewFileService создаёт сервис файлов.
func NewFileService(files FileObjects, objects storage.ObjectStorage, bucket string, maxUploadMB int64) *FileService {
	return &FileService{
		files:    files,
		storage:  objects,
		bucket:   bucket,
		maxBytes: maxUploadMB * 1024 * 1024,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Upload сохраняет файл и создаёт для него запись file_object.
func (s *FileService) Upload(ctx context.Context, in Upload) (*models.FileObject, error) {
	destination := strings.TrimSpace(in.Destination)
	if destination == "" {
		destination = defaultDestination
	}
	if err := validation.ValidatePathSegment("destination", destination); err != nil {
		return nil, apperror.BadRequestAlert(models.FileObjectResource.Name, apperror.KeyInvalidBody, err.Error())
	}
	if err := validation.ValidateLength("имя файла", in.FileName, 0, validation.MaxFileNameLength); err != nil {
		return nil, apperror.BadRequestAlert(models.FileObjectResource.Name, apperror.KeyInvalidBody, err.Error())
	}

	owner := LoginFrom(ctx)
	if owner == "" {
		owner = anonymousLogin
	}
	if err := validation.ValidateLength("логин", owner, 1, validation.MaxLoginLength); err != nil {
		return nil, apperror.BadRequestAlert(models.FileObjectResource.Name, apperror.KeyInvalidBody, err.Error())
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, s.maxBytes+1))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "не удалось прочитать файл").
			WithEntity(models.FileObjectResource.Name, apperror.KeyInvalidBody)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, apperror.New(apperror.ErrCodeTooLarge, fmt.Sprintf("размер файла превышает %d байт", s.maxBytes))
	}
	if len(data) == 0 {
		return nil, apperror.BadRequestAlert(models.FileObjectResource.Name, apperror.KeyInvalidBody, "файл пуст")
	}

	contentType, ext := detectType(data, in.FileName, in.ContentType)
	sum := sha256.Sum256(data)

	name, err := gonanoid.New()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сгенерировать имя файла")
	}

	key := path.Join("users", owner, destination, name+"."+ext)

	if err := s.storage.Put(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, mapStorageError(err)
	}

	now := s.now()
	size := int64(len(data))
	checksum := hex.EncodeToString(sum[:])
	duration := int32(0)
	bucket := s.bucket
	record := &models.FileObject{
		Bucket:          &bucket,
		ObjectKey:       &key,
		ContentType:     &contentType,
		FileSize:        &size,
		Checksum:        &checksum,
		DurationSeconds: &duration,
		Audit:           models.Audit{CreatedDate: &now},
	}

	saved, err := s.files.Create(ctx, record)
	if err != nil {
		if delErr := s.storage.Delete(ctx, s.bucket, key); delErr != nil {
			logger.FromContext(ctx).WithError(delErr).WithField("key", key).
				Warn("не удалось удалить объект после ошибки сохранения записи")
		}
		return nil, err
	}

	metrics.UploadedBytes.Add(float64(size))
	return saved, nil
}

// Open возвращает запись файла и поток его содержимого. Вызывающий закрывает Body.
func (s *FileService) Open(ctx context.Context, id int64) (*models.FileObject, *storage.Object, error) {
	record, err := s.files.FindOne(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if record.Bucket == nil || record.ObjectKey == nil {
		return nil, nil, apperror.NotFound(models.FileObjectResource.Name)
	}

	obj, err := s.storage.Get(ctx, *record.Bucket, *record.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, apperror.NotFound(models.FileObjectResource.Name)
		}
		return nil, nil, mapStorageError(err)
	}

	if obj.ContentType == "" && record.ContentType != nil {
		obj.ContentType = *record.ContentType
	}
	return record, obj, nil
}

// detectType определяет MIME-тип по сигнатуре, затем по расширению и заголовку части.
func detectType(data []byte, fileName, declared string) (string, string) {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value, kind.Extension
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if ext == "" || validation.ValidatePathSegment("extension", ext) != nil {
		ext = defaultExtension
	}

	contentType := strings.TrimSpace(declared)
	if contentType == "" {
		contentType = defaultContentType
	}
	return contentType, ext
}

func mapStorageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		return apperror.Wrap(err, apperror.ErrCodeTooLarge, "размер файла превышает лимит")
	case errors.Is(err, storage.ErrInvalidKey):
		return apperror.Wrap(err, apperror.ErrCodeBadRequest, "недопустимый ключ объекта").
			WithEntity(models.FileObjectResource.Name, apperror.KeyInvalidBody)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return apperror.Wrap(err, apperror.ErrCodeInternal, "ошибка хранилища файлов")
}
