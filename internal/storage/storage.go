// Package storage хранит содержимое файлов. Метаданные лежат в таблице file_object,
// здесь только байты по паре bucket/key.
package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrObjectNotFound = errors.New("storage: объект не найден")
	ErrTooLarge       = errors.New("storage: размер файла превышает лимит")
	ErrInvalidKey     = errors.New("storage: недопустимый ключ объекта")
)

// Object — содержимое объекта и его метаданные.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// ObjectStorage — общий контракт для локального диска и S3-совместимых хранилищ.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context, bucket string) error
	Put(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, bucket, key string) (*Object, error)
	Delete(ctx context.Context, bucket, key string) error
}
