package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"propchat/internal/logging"
	"propchat/internal/model"
	"propchat/internal/service"
	"propchat/internal/stream"
)

// FrameStreamer produces the frames of one chat request
type FrameStreamer interface {
	Stream(ctx context.Context, history []model.ConversationMessage) <-chan model.StreamFrame
}

// ChatHandler streams chat replies as NDJSON frames
type ChatHandler struct {
	chat FrameStreamer
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat FrameStreamer) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Stream handles POST /api/chat. The response is always 200: failures are
// reported in-band as frames.
func (h *ChatHandler) Stream(c *gin.Context) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	logger := logging.FromContext(ctx)

	c.Header("Content-Type", stream.ContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	w := stream.NewWriter(c.Writer)

	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid chat request", "error", err)
		_ = w.WriteFrame(model.ErrorFrame(service.InvalidHistoryMessage))
		return
	}

	frames := 0
	for frame := range h.chat.Stream(ctx, req.Messages) {
		if err := w.WriteFrame(frame); err != nil {
			// Cancelling stops generation; the stream then closes on its own
			logger.Info("client disconnected", "frames", frames, "error", err)
			cancel()
			return
		}
		frames++
	}
	logger.Debug("chat stream closed", "frames", frames)
}
