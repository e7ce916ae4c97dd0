package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/hypermemo/hypermemo/internal/ai"
	"github.com/hypermemo/hypermemo/internal/middleware"
	"github.com/hypermemo/hypermemo/internal/model"
	appErr "github.com/hypermemo/hypermemo/internal/pkg/errors"
	"github.com/hypermemo/hypermemo/internal/service"
)

type memoryStore struct {
	items map[string]*model.Bookmark
}

func newMemoryStore() *memoryStore {
	return &memoryStore{items: make(map[string]*model.Bookmark)}
}

func (s *memoryStore) Insert(ctx context.Context, userID string, bm *model.Bookmark) error {
	clone := *bm
	s.items[userID+"/"+bm.ID] = &clone
	return nil
}

func (s *memoryStore) Update(ctx context.Context, userID string, bm *model.Bookmark) error {
	if _, ok := s.items[userID+"/"+bm.ID]; !ok {
		return appErr.ErrNotFound
	}
	clone := *bm
	s.items[userID+"/"+bm.ID] = &clone
	return nil
}

func (s *memoryStore) GetByID(ctx context.Context, userID, id string) (*model.Bookmark, error) {
	bm, ok := s.items[userID+"/"+id]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	clone := *bm
	return &clone, nil
}

func (s *memoryStore) ListByUser(ctx context.Context, userID string, limit uint) ([]model.Bookmark, error) {
	var out []model.Bookmark
	for key, bm := range s.items {
		if len(key) > len(bm.ID) && key[:len(key)-len(bm.ID)-1] == userID {
			out = append(out, *bm)
		}
	}
	return out, nil
}

func (s *memoryStore) ListEmbedded(ctx context.Context, userID string) ([]model.Bookmark, error) {
	return s.ListByUser(ctx, userID, 0)
}

type echoProvider struct{}

func (p *echoProvider) Name() string { return "echo" }

func (p *echoProvider) Generate(ctx context.Context, model string, prompt string) (string, error) {
	return "generated", nil
}

func (p *echoProvider) Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func newTestRouter(t *testing.T, store *memoryStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	manager := ai.NewManager(&echoProvider{}, ai.ManagerConfig{GenerateModel: "g", EmbedModel: "e"})
	deps := RouterDeps{
		Bookmarks: NewBookmarkHandler(service.NewBookmarkService(store, service.NewEnricher(manager))),
		AI:        NewAIHandler(manager),
		Ask:       NewAskHandler(service.NewRagService(store, manager)),
		Auth:      middleware.AuthConfig{Required: false, AnonUserID: "u1"},
		AskWindow: time.Duration(0),
	}
	engine := gin.New()
	RegisterRoutes(engine.Group("/api/v1"), deps)
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestSaveBookmarkRejectsMissingTitle(t *testing.T) {
	store := newMemoryStore()
	engine := newTestRouter(t, store)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/bookmarks", map[string]interface{}{
		"url": "https://example.com",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "invalid", resp.Error.Code)
	require.Empty(t, store.items)
}

func TestSaveAndGetBookmark(t *testing.T) {
	store := newMemoryStore()
	engine := newTestRouter(t, store)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/bookmarks", map[string]interface{}{
		"title": "Go Blog",
		"url":   "https://go.dev/blog",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data model.Bookmark `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.ID)
	require.Equal(t, "Go Blog", resp.Data.Title)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/bookmarks/"+resp.Data.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/bookmarks/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAskRejectsShortQuestion(t *testing.T) {
	engine := newTestRouter(t, newMemoryStore())

	w := doJSON(t, engine, http.MethodPost, "/api/v1/ask", map[string]interface{}{
		"question": "hi",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "invalid", err: appErr.ErrInvalid, status: http.StatusBadRequest},
		{name: "unauthorized", err: appErr.ErrUnauthorized, status: http.StatusUnauthorized},
		{name: "not found", err: appErr.ErrNotFound, status: http.StatusNotFound},
		{name: "ai unavailable", err: ai.ErrUnavailable, status: http.StatusServiceUnavailable},
		{name: "internal", err: context.DeadlineExceeded, status: http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
			handleError(c, tc.err)
			require.Equal(t, tc.status, w.Code)
		})
	}
}
