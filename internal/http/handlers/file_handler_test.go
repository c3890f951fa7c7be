package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-catalog/internal/http/middleware"
	"github.com/ignatzorin/freelance-catalog/internal/http/response"
	"github.com/ignatzorin/freelance-catalog/internal/models"
	"github.com/ignatzorin/freelance-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-catalog/internal/service"
	"github.com/ignatzorin/freelance-catalog/internal/storage"
)

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, in service.Upload) (*models.FileObject, error) {
	data, _ := io.ReadAll(in.Body)
	args := m.Called(ctx, in.FileName, in.Destination, string(data))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FileObject), args.Error(1)
}

func (m *mockUploader) Open(ctx context.Context, id int64) (*models.FileObject, *storage.Object, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.FileObject), args.Get(1).(*storage.Object), args.Error(2)
}

func setupFileRouter(files FileUploader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	alerts := response.NewAlerts("freelanceApp")
	r.Use(middleware.ErrorHandler(alerts))
	NewFileHandler(files, alerts, 1).Register(r.Group("/api"))
	return r
}

func multipartBody(t *testing.T, field, name, content string, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if field != "" {
		part, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range extra {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestFileHandler_Upload(t *testing.T) {
	files := new(mockUploader)
	r := setupFileRouter(files)

	id := int64(12)
	key := "users/anonymous/offers/abc.txt"
	files.On("Upload", mock.Anything, "notes.txt", "offers", "hello").
		Return(&models.FileObject{Identity: models.Identity{ID: &id}, ObjectKey: &key}, nil)

	body, ct := multipartBody(t, "file", "notes.txt", "hello", map[string]string{"destination": "offers"})
	req := httptest.NewRequest(http.MethodPost, "/api/file-objects/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/file-objects/12", w.Header().Get("Location"))
	assert.Equal(t, "freelanceApp.fileObject.created", w.Header().Get("X-freelanceApp-alert"))
	assert.Contains(t, w.Body.String(), key)
}

func TestFileHandler_Upload_MissingFile(t *testing.T) {
	files := new(mockUploader)
	r := setupFileRouter(files)

	body, ct := multipartBody(t, "", "", "", map[string]string{"destination": "offers"})
	req := httptest.NewRequest(http.MethodPost, "/api/file-objects/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	files.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFileHandler_Content(t *testing.T) {
	files := new(mockUploader)
	r := setupFileRouter(files)

	key := "users/admin/files/abc.txt"
	files.On("Open", mock.Anything, int64(3)).Return(
		&models.FileObject{ObjectKey: &key},
		&storage.Object{Body: io.NopCloser(strings.NewReader("hello")), Size: 5, ContentType: "text/plain"},
		nil,
	)
	files.On("Open", mock.Anything, int64(4)).Return(nil, nil, apperror.NotFound("fileObject"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/file-objects/3/content", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
	assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "abc.txt")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/file-objects/4/content", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
