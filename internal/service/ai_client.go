package service

import (
	"context"
	"fmt"
	"log/slog"

	"propchat/internal/config"
	"propchat/internal/model"
)

// ChatModel is the interface for generation providers.
// StreamTurn runs one model turn: text deltas are passed to onDelta as they
// arrive, tool calls are returned once the turn is complete. An error from
// onDelta aborts the turn and is returned unchanged.
type ChatModel interface {
	StreamTurn(ctx context.Context, req TurnRequest, onDelta func(text string) error) (*TurnResult, error)
}

// ToolDefinition describes a capability the model may call
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON schema object
}

// TurnRequest is the input of one model turn
type TurnRequest struct {
	System   string
	Messages []model.ConversationMessage
	Tools    []ToolDefinition
}

// TurnResult is what a model turn produced
type TurnResult struct {
	Content      string
	ToolCalls    []model.ToolCallRequest
	FinishReason string
}

// StreamChunk represents a generic streaming response chunk
type StreamChunk struct {
	// Regular content
	Content string

	// Thinking/reasoning content (provider-specific, e.g., DeepSeek). Never forwarded to clients.
	ThinkingContent string

	// Role (assistant, user, system)
	Role string

	// Partial tool calls, merged by Index
	ToolCalls []ToolCallDelta

	FinishReason string

	// Whether this is the final chunk
	Done bool
}

// ToolCallDelta is a fragment of a streamed tool call
type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// NewChatModel builds the configured provider. It returns an error when the
// provider is unknown or has no credentials.
func NewChatModel(cfg *config.LLMConfig, logger *slog.Logger) (ChatModel, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("LLM provider %q is not enabled (missing API key)", cfg.Provider)
	}

	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg, logger), nil
	case "langchain":
		m, err := NewLangChainModel(cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// Ensure the providers implement ChatModel
var (
	_ ChatModel = (*OpenAIClient)(nil)
	_ ChatModel = (*LangChainModel)(nil)
)
