//go:build integration

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ignatzorin/freelance-catalog/internal/config"
	"github.com/ignatzorin/freelance-catalog/internal/db"
	"github.com/ignatzorin/freelance-catalog/internal/http/handlers"
	"github.com/ignatzorin/freelance-catalog/internal/http/response"
	"github.com/ignatzorin/freelance-catalog/internal/http/router"
	"github.com/ignatzorin/freelance-catalog/internal/seed"
	"github.com/ignatzorin/freelance-catalog/internal/storage"
)

type testServer struct {
	engine   *gin.Engine
	services *Services
}

func startServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("catalog"),
		postgres.WithUsername("catalog"),
		postgres.WithPassword("catalog"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("не удалось остановить контейнер: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(dsn))

	conn, err := db.NewPostgres(ctx, dsn, db.DefaultPoolOptions)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	objects, err := storage.NewLocalStorage(t.TempDir(), 1)
	require.NoError(t, err)
	require.NoError(t, objects.EnsureBucket(ctx, "catalog"))

	services := NewServices(conn, Options{Objects: objects, Bucket: "catalog", MaxUploadMB: 1})

	cfg := &config.Config{
		Env:             "test",
		AppName:         "freelanceApp",
		RateLimitLimit:  10000,
		RateLimitPeriod: time.Minute,
	}
	gin.SetMode(gin.TestMode)
	engine := router.SetupRouter(cfg, handlers.NewHealthHandler(conn), nil,
		services.Handlers(response.NewAlerts(cfg.AppName))...)

	return &testServer{engine: engine, services: services}
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
		if method == http.MethodPatch {
			req.Header.Set("Content-Type", "application/merge-patch+json")
		}
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decodeID(t *testing.T, w *httptest.ResponseRecorder) int64 {
	t.Helper()
	var out struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotZero(t, out.ID)
	return out.ID
}

func errorKey(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var out response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotNil(t, out.Error)
	return out.Error.Key
}

func formatInt(id int64) string {
	return strconv.FormatInt(id, 10)
}

const created = `"createdDate":"2024-01-01T00:00:00Z"`

func TestCatalogAPI(t *testing.T) {
	s := startServer(t)

	// Создание и ошибки id.
	w := s.do(t, http.MethodPost, "/api/categories", `{"name":"Development","active":true,`+created+`}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	categoryID := decodeID(t, w)
	assert.Equal(t, "freelanceApp.category.created", w.Header().Get("X-freelanceApp-alert"))
	assert.True(t, strings.HasSuffix(w.Header().Get("Location"), "/api/categories/"+formatInt(categoryID)))

	w = s.do(t, http.MethodPost, "/api/categories", `{"id":5,"name":"Design","active":true,`+created+`}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "idexists", errorKey(t, w))

	w = s.do(t, http.MethodPost, "/api/categories", `{"active":true,`+created+`}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", errorKey(t, w))

	w = s.do(t, http.MethodPost, "/api/categories", `{"name":"Design","active":false,`+created+`}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// Фильтры и пагинация.
	w = s.do(t, http.MethodGet, "/api/categories?name.contains=velop&active.equals=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get(response.TotalCountHeader))
	assert.Contains(t, w.Body.String(), `"Development"`)

	// contains учитывает регистр.
	w = s.do(t, http.MethodGet, "/api/categories/count?name.contains=DEV", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", strings.TrimSpace(w.Body.String()))

	w = s.do(t, http.MethodGet, "/api/categories/count?active.equals=false", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", strings.TrimSpace(w.Body.String()))

	w = s.do(t, http.MethodGet, "/api/categories?page=0&size=1&sort=name,asc", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Design"`)
	assert.Contains(t, w.Header().Get("Link"), `rel="next"`)

	w = s.do(t, http.MethodGet, "/api/categories?bogus.equals=1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Подкатегория и загрузка связей.
	w = s.do(t, http.MethodPost, "/api/subcategories",
		`{"name":"Backend","active":true,"categoryId":`+formatInt(categoryID)+`,`+created+`}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	subID := decodeID(t, w)

	w = s.do(t, http.MethodPost, "/api/subcategories", `{"name":"Ghost","active":true,"categoryId":999999,`+created+`}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "reference", errorKey(t, w))

	w = s.do(t, http.MethodGet, "/api/subcategories?eagerload=true&categoryId.equals="+formatInt(categoryID), "")
	require.Equal(t, http.StatusOK, w.Code)
	var subs []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &subs))
	require.Len(t, subs, 1)
	require.NotNil(t, subs[0]["category"])
	assert.Equal(t, "Development", subs[0]["category"].(map[string]any)["name"])

	// Полное и частичное обновление.
	path := "/api/categories/" + formatInt(categoryID)
	w = s.do(t, http.MethodPut, path, `{"id":999,"name":"X","active":true,`+created+`}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "idinvalid", errorKey(t, w))

	w = s.do(t, http.MethodPut, "/api/categories/999999", `{"id":999999,"name":"X","active":true,`+created+`}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "idnotfound", errorKey(t, w))

	w = s.do(t, http.MethodPatch, path, `{"id":`+formatInt(categoryID)+`,"name":"Software"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"Software"`)
	assert.Contains(t, w.Body.String(), `"active":true`)

	// null в патче не затирает сохранённое значение.
	w = s.do(t, http.MethodPatch, path, `{"id":`+formatInt(categoryID)+`,"name":null,"active":false}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"Software"`)
	assert.Contains(t, w.Body.String(), `"active":false`)

	w = s.do(t, http.MethodPatch, "/api/categories/999999", `{"id":999999,"name":"X"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "idnotfound", errorKey(t, w))

	w = s.do(t, http.MethodPut, "/api/categories", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	// Удаление: ссылка мешает, повторное удаление даёт 404.
	w = s.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "reference", errorKey(t, w))

	subPath := "/api/subcategories/" + formatInt(subID)
	w = s.do(t, http.MethodDelete, subPath, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "freelanceApp.subcategory.deleted", w.Header().Get("X-freelanceApp-alert"))
	w = s.do(t, http.MethodDelete, subPath, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "notfound", errorKey(t, w))
	w = s.do(t, http.MethodGet, subPath, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestFileUpload(t *testing.T) {
	s := startServer(t)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("hello catalog"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("destination", "docs"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/file-objects/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decodeID(t, w)

	w = s.do(t, http.MethodGet, "/api/file-objects/"+formatInt(id)+"/content", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello catalog", w.Body.String())

	w = s.do(t, http.MethodGet, "/api/file-objects/"+formatInt(id), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"durationSeconds":0`)
}

func TestSeeder(t *testing.T) {
	s := startServer(t)

	res, err := s.services.Seeder(7).Run(context.Background(), seed.Counts{
		Categories: 2, SubcategoriesPer: 2, SkillsPer: 1, OfferTypesPer: 1, Tags: 3, Countries: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Subcategories)

	w := s.do(t, http.MethodGet, "/api/offer-types/count", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "4", strings.TrimSpace(w.Body.String()))
}
