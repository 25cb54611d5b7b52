package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbuddy/campusbuddy-go/internal/chat"
	"github.com/campusbuddy/campusbuddy-go/internal/config"
	"github.com/campusbuddy/campusbuddy-go/internal/docstore"
	"github.com/campusbuddy/campusbuddy-go/internal/extract"
	"github.com/campusbuddy/campusbuddy-go/internal/llm"
	"github.com/campusbuddy/campusbuddy-go/internal/logger"
	"github.com/campusbuddy/campusbuddy-go/internal/metrics"
	"github.com/campusbuddy/campusbuddy-go/internal/modules/attendance"
	"github.com/campusbuddy/campusbuddy-go/internal/modules/timetable"
	"github.com/campusbuddy/campusbuddy-go/internal/ratelimit"
	"github.com/campusbuddy/campusbuddy-go/internal/storage"
	"github.com/campusbuddy/campusbuddy-go/internal/syllabus"
)

type scriptedModel struct {
	replies []string
}

func (s *scriptedModel) Chat(context.Context, *llm.ChatRequest) (*llm.ChatResult, error) {
	if len(s.replies) == 0 {
		return &llm.ChatResult{Content: "ok"}, nil
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return &llm.ChatResult{Content: reply}, nil
}

func (s *scriptedModel) Provider() llm.Provider { return "fake" }
func (s *scriptedModel) Close() error           { return nil }

func newTestRouter(t *testing.T, burst float64, replies ...string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New("error")
	m := metrics.New(prometheus.NewRegistry())

	db, err := storage.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sylPath := filepath.Join(t.TempDir(), "syllabus.txt")
	require.NoError(t, os.WriteFile(sylPath, []byte("Course Title: Networks\nUnit 1: Topologies, layers 4 Hours\n"), 0o644))

	extractor := extract.New(0, log, m)
	store := docstore.New(0, log, m)
	uploader := chat.NewUploader(extractor, store, log, m)
	dispatcher := chat.NewDispatcher(
		attendance.New(db, log),
		timetable.New(db, log),
		syllabus.NewService(sylPath, extractor, syllabus.NewLocator(config.Limits{}, log), log),
		store,
		uploader,
		config.DefaultPromptContentCap,
		log,
		m,
	)
	orch := chat.NewOrchestrator(
		&scriptedModel{replies: replies},
		dispatcher,
		chat.NewReformatClassifier(config.DefaultReformatKeywords),
		log,
		m,
	)

	limiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "chat",
		Burst:         burst,
		RefillRate:    0.0001,
		CleanupPeriod: time.Hour,
		Metrics:       m,
	})
	t.Cleanup(limiter.Stop)

	h := NewHandler(orch, uploader, limiter, log, m)

	router := gin.New()
	router.POST("/api/chat", h.Chat)
	router.POST("/api/upload", h.Upload)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChatReturnsAssistantMessage(t *testing.T) {
	router := newTestRouter(t, 10, "Hello! How can I help?")

	w := postJSON(t, router, "/api/chat", ChatRequest{
		ClientID: "client-1",
		Messages: []ChatMessage{{Role: "user", Content: "hi"}},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "assistant", resp.Message.Role)
	assert.Equal(t, "Hello! How can I help?", resp.Message.Content)
	assert.Empty(t, resp.ToolUsed)
}

func TestChatRejectsEmptyBody(t *testing.T) {
	router := newTestRouter(t, 10)

	w := postJSON(t, router, "/api/chat", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatRejectsUnknownRole(t *testing.T) {
	router := newTestRouter(t, 10)

	w := postJSON(t, router, "/api/chat", ChatRequest{
		Messages: []ChatMessage{{Role: "wizard", Content: "hi"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatRateLimitsPerClient(t *testing.T) {
	router := newTestRouter(t, 1, "first", "second")

	body := ChatRequest{
		ClientID: "chatty",
		Messages: []ChatMessage{{Role: "user", Content: "hi"}},
	}
	assert.Equal(t, http.StatusOK, postJSON(t, router, "/api/chat", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, postJSON(t, router, "/api/chat", body).Code)

	// A different client has its own bucket.
	other := ChatRequest{
		ClientID: "calm",
		Messages: []ChatMessage{{Role: "user", Content: "hi"}},
	}
	assert.Equal(t, http.StatusOK, postJSON(t, router, "/api/chat", other).Code)
}

func TestUploadStoresDocument(t *testing.T) {
	router := newTestRouter(t, 10)

	w := postJSON(t, router, "/api/upload", UploadRequest{
		DocumentID:  "doc-1",
		FileName:    "notes.txt",
		FileContent: base64.StdEncoding.EncodeToString([]byte("operating systems manage processes memory files devices and networking resources together")),
		FileType:    "text",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Stored)
	assert.Equal(t, "assistant", resp.Message.Role)
	assert.Contains(t, resp.Message.Content, "notes.txt")
}

func TestUploadRejectsLowContent(t *testing.T) {
	router := newTestRouter(t, 10)

	w := postJSON(t, router, "/api/upload", UploadRequest{
		DocumentID:  "doc-2",
		FileName:    "scan.txt",
		FileContent: base64.StdEncoding.EncodeToString([]byte("just a scan")),
		FileType:    "text",
	})

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Stored)
	assert.Contains(t, resp.Message.Content, "OCR")
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	router := newTestRouter(t, 10)

	w := postJSON(t, router, "/api/upload", UploadRequest{
		DocumentID:  "doc-3",
		FileName:    "image.png",
		FileContent: base64.StdEncoding.EncodeToString([]byte("binary")),
		FileType:    "png",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUploadRejectsMissingFields(t *testing.T) {
	router := newTestRouter(t, 10)

	w := postJSON(t, router, "/api/upload", map[string]any{"document_id": "doc-4"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
