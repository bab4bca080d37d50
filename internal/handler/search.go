package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"propchat/internal/logging"
	"propchat/internal/model"
	"propchat/internal/service"
)

// ToolInvoker runs a searchProperties call
type ToolInvoker interface {
	Invoke(ctx context.Context, call model.ToolCallRequest) (model.ToolCallResult, error)
}

// SearchHandler exposes the search capability without a model in the loop
type SearchHandler struct {
	tool ToolInvoker
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(tool ToolInvoker) *SearchHandler {
	return &SearchHandler{tool: tool}
}

// Search handles POST /api/v1/properties/search. The body uses the same
// criteria object the model sends; an empty body means no filters.
func (h *SearchHandler) Search(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result, err := h.tool.Invoke(c.Request.Context(), model.ToolCallRequest{
		ID:        RequestID(c),
		Name:      model.SearchPropertiesTool,
		Arguments: string(body),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidArguments) {
			c.JSON(http.StatusBadRequest, result)
			return
		}
		logging.FromContext(c.Request.Context()).Error("search failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	if result.Failed() {
		c.JSON(http.StatusServiceUnavailable, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
