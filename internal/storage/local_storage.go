package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage хранит объекты в каталогах на диске: <root>/<bucket>/<key>.
type LocalStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// NewLocalStorage создаёт файловое хранилище.
func NewLocalStorage(rootPath string, maxUploadMB int64) (*LocalStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &LocalStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// EnsureBucket создаёт каталог бакета.
func (s *LocalStorage) EnsureBucket(ctx context.Context, bucket string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir, err := s.resolve(bucket, "")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: не удалось создать бакет %s: %w", bucket, err)
	}
	return nil
}

// Put сохраняет объект через временный файл, чтобы читатели не видели недописанный файл.
func (s *LocalStorage) Put(ctx context.Context, bucket, key string, body io.Reader, _ int64, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	targetPath, err := s.resolve(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("storage: не удалось создать каталог объекта: %w", err)
	}

	tempPath := targetPath + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limitedReader := io.LimitedReader{R: body, N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return fmt.Errorf("%w: %d байт", ErrTooLarge, s.maxUploadBytes)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}
	return nil
}

// Get открывает объект на чтение. Вызывающий закрывает Body.
func (s *LocalStorage) Get(ctx context.Context, bucket, key string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(bucket, key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("storage: не удалось открыть файл: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("storage: не удалось прочитать атрибуты файла: %w", err)
	}

	return &Object{Body: f, Size: info.Size()}, nil
}

// Delete удаляет объект. Отсутствие объекта ошибкой не считается.
func (s *LocalStorage) Delete(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := s.resolve(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// resolve строит путь внутри rootPath и отклоняет ключи, выходящие за его пределы.
func (s *LocalStorage) resolve(bucket, key string) (string, error) {
	if bucket == "" || sanitizeSegment(bucket) != bucket {
		return "", fmt.Errorf("%w: бакет %q", ErrInvalidKey, bucket)
	}

	parts := []string{s.rootPath, bucket}
	if key != "" {
		for _, segment := range strings.Split(key, "/") {
			if segment == "" || sanitizeSegment(segment) != segment {
				return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
			}
			parts = append(parts, segment)
		}
	}
	return filepath.Join(parts...), nil
}

// sanitizeSegment удаляет потенциально опасные символы.
func sanitizeSegment(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	return name
}
