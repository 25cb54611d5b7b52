// Package api exposes the chat and upload HTTP endpoints.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusbuddy/campusbuddy-go/internal/chat"
	"github.com/campusbuddy/campusbuddy-go/internal/ctxutil"
	domerrors "github.com/campusbuddy/campusbuddy-go/internal/errors"
	"github.com/campusbuddy/campusbuddy-go/internal/llm"
	"github.com/campusbuddy/campusbuddy-go/internal/logger"
	"github.com/campusbuddy/campusbuddy-go/internal/metrics"
	"github.com/campusbuddy/campusbuddy-go/internal/ratelimit"
	"github.com/campusbuddy/campusbuddy-go/internal/sentry"
)

// Handler serves the chat and upload endpoints.
type Handler struct {
	orchestrator *chat.Orchestrator
	uploader     *chat.Uploader
	limiter      *ratelimit.KeyedLimiter
	logger       *logger.Logger
	metrics      *metrics.Metrics
}

// NewHandler creates the API handler.
func NewHandler(orch *chat.Orchestrator, uploader *chat.Uploader, limiter *ratelimit.KeyedLimiter, log *logger.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		orchestrator: orch,
		uploader:     uploader,
		limiter:      limiter,
		logger:       log.WithModule("api"),
		metrics:      m,
	}
}

// ChatMessage is one role-tagged message on the wire.
type ChatMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content"`
}

// ChatRequest is the chat endpoint's request body.
type ChatRequest struct {
	ClientID string        `json:"client_id"`
	Messages []ChatMessage `json:"messages" binding:"required,min=1"`
}

// ChatResponse is the chat endpoint's response body. ToolUsed is set
// only when a tool was invoked.
type ChatResponse struct {
	Message     ChatMessage `json:"message"`
	ToolUsed    string      `json:"tool_used,omitempty"`
	RateLimited bool        `json:"rate_limited,omitempty"`
}

// UploadRequest is the upload endpoint's request body.
type UploadRequest struct {
	DocumentID  string `json:"document_id" binding:"required"`
	FileName    string `json:"file_name" binding:"required"`
	FileContent string `json:"file_content" binding:"required"`
	FileType    string `json:"file_type" binding:"required"`
}

// UploadResponse is the upload endpoint's response body. The message is
// always a well-formed assistant turn, confirmation or rejection alike.
type UploadResponse struct {
	Message ChatMessage `json:"message"`
	Stored  bool        `json:"stored"`
}

// Chat handles POST /api/chat: one assistant message per request.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "messages are required"})
		return
	}

	clientID := req.ClientID
	if clientID == "" {
		clientID = c.ClientIP()
	}
	ctx := ctxutil.WithClientID(c.Request.Context(), clientID)

	if !h.limiter.Allow(clientID) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "You are sending messages too quickly. Please wait a moment and try again.",
		})
		return
	}

	history := make([]llm.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		role, ok := parseRole(m.Role)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown message role: " + m.Role})
			return
		}
		history = append(history, llm.Message{Role: role, Content: m.Content})
	}

	reply, err := h.orchestrator.Respond(ctx, history)
	if err != nil {
		h.logger.WithError(err).Error("chat turn failed")
		sentry.CaptureExceptionWithContext(ctx, err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Sorry, something went wrong while answering. Please try again.",
		})
		return
	}

	resp := ChatResponse{
		Message:     ChatMessage{Role: "assistant", Content: reply.Content},
		ToolUsed:    reply.ToolUsed,
		RateLimited: reply.RateLimited,
	}
	if reply.RateLimited {
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Upload handles POST /api/upload: a direct extraction and store call
// that bypasses tool dispatch entirely.
func (h *Handler) Upload(c *gin.Context) {
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document_id, file_name, file_content and file_type are required"})
		return
	}

	msg, err := h.uploader.Upload(req.DocumentID, req.FileName, req.FileContent, req.FileType)
	resp := UploadResponse{
		Message: ChatMessage{Role: "assistant", Content: msg},
		Stored:  err == nil,
	}

	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case domerrors.IsUserCorrectable(err) || isDecode(err):
		c.JSON(http.StatusUnprocessableEntity, resp)
	default:
		h.logger.WithError(err).Error("upload failed")
		sentry.CaptureExceptionWithContext(c.Request.Context(), err)
		c.JSON(http.StatusInternalServerError, resp)
	}
}

func isDecode(err error) bool {
	var derr *domerrors.DecodeError
	return errors.As(err, &derr)
}

func parseRole(s string) (llm.Role, bool) {
	switch s {
	case "system":
		return llm.RoleSystem, true
	case "user":
		return llm.RoleUser, true
	case "assistant":
		return llm.RoleAssistant, true
	case "tool":
		return llm.RoleTool, true
	default:
		return "", false
	}
}
