package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"propchat/internal/config"
	"propchat/internal/model"
)

// StreamChunkParser is the interface for provider-specific chunk parsing
type StreamChunkParser interface {
	ParseChunk(data []byte) (*StreamChunk, error)
}

// OpenAIClient handles OpenAI-compatible chat completion APIs with tool calling
type OpenAIClient struct {
	config      *config.LLMConfig
	httpClient  *http.Client
	chunkParser StreamChunkParser // Provider-specific chunk parser
	extraBody   map[string]any
	logger      *slog.Logger
}

// NewOpenAIClient creates a new OpenAI-compatible client with auto-detection of provider
func NewOpenAIClient(cfg *config.LLMConfig, logger *slog.Logger) *OpenAIClient {
	if logger == nil {
		logger = slog.Default()
	}

	// Auto-detect provider based on base URL
	var parser StreamChunkParser
	if IsNVIDIAProvider(cfg.APIBase) {
		parser = &NVIDIAStreamChunkParser{}
		logger.Info("detected NVIDIA API provider (supports reasoning)", "base", cfg.APIBase)
	} else if IsOpenAIProvider(cfg.APIBase) {
		parser = &OpenAIStreamChunkParser{}
		logger.Info("detected OpenAI API provider", "base", cfg.APIBase)
	} else {
		// Default to OpenAI format for unknown providers
		parser = &OpenAIStreamChunkParser{}
		logger.Info("using standard OpenAI format", "base", cfg.APIBase)
	}

	var extraBody map[string]any
	if cfg.ExtraBody != "" {
		if err := json.Unmarshal([]byte(cfg.ExtraBody), &extraBody); err != nil {
			logger.Warn("ignoring invalid OPENAI_CHAT_EXTRA_BODY", "error", err)
			extraBody = nil
		}
	}

	return &OpenAIClient{
		config:      cfg,
		chunkParser: parser,
		extraBody:   extraBody,
		logger:      logger,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// ChatCompletionRequest represents a streaming chat completion request
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Tools       []ChatTool    `json:"tools,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	TopP        float64       `json:"top_p,omitempty"` // For DeepSeek/NVIDIA API
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []ChatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

// ChatTool advertises a function the model may call
type ChatTool struct {
	Type     string       `json:"type"`
	Function ChatFunction `json:"function"`
}

// ChatFunction is the function part of ChatTool
type ChatFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
}

// ChatToolCall is a tool call carried by an assistant message
type ChatToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// StreamCallback is called for each chunk in streaming mode
type StreamCallback func(chunk *StreamChunk) error

// StreamTurn performs one streaming chat completion and collects its tool calls
func (c *OpenAIClient) StreamTurn(ctx context.Context, req TurnRequest, onDelta func(text string) error) (*TurnResult, error) {
	completion := ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    toChatMessages(req.System, req.Messages),
		Tools:       toChatTools(req.Tools),
		Temperature: c.config.Temperature,
		TopP:        c.config.TopP,
		MaxTokens:   c.config.MaxTokens,
	}

	var content strings.Builder
	calls := newToolCallAccumulator()
	result := &TurnResult{}

	err := c.ChatCompletionStream(ctx, completion, func(chunk *StreamChunk) error {
		if chunk.ThinkingContent != "" {
			c.logger.Debug("model reasoning chunk", "chars", len(chunk.ThinkingContent))
		}
		if chunk.Content != "" {
			content.WriteString(chunk.Content)
			if err := onDelta(chunk.Content); err != nil {
				return err
			}
		}
		calls.add(chunk.ToolCalls)
		if chunk.FinishReason != "" {
			result.FinishReason = chunk.FinishReason
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Content = content.String()
	result.ToolCalls = calls.calls()
	return result, nil
}

// ChatCompletionStream performs a streaming chat completion request.
// Transport and API failures wrap ErrUpstreamGeneration; callback errors are
// returned as they are.
func (c *OpenAIClient) ChatCompletionStream(ctx context.Context, req ChatCompletionRequest, callback StreamCallback) error {
	if !c.config.Enabled {
		return fmt.Errorf("%w: OpenAI API is not enabled (missing API key)", ErrUpstreamGeneration)
	}

	// Use configured model if not specified
	if req.Model == "" {
		req.Model = c.config.Model
	}

	// Enable streaming
	req.Stream = true

	reqBody, err := c.marshalRequest(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(c.config.APIBase, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: failed to send request: %v", ErrUpstreamGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: API request failed with status %d: %s", ErrUpstreamGeneration, resp.StatusCode, string(body))
	}

	// Process streaming response
	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("%w: failed to read stream: %v", ErrUpstreamGeneration, err)
		}
		eof := err != nil

		// Parse SSE format: "data: {...}"
		line = bytes.TrimSpace(line)
		if data, ok := bytes.CutPrefix(line, []byte("data:")); ok {
			data = bytes.TrimSpace(data)

			// Check for [DONE] marker
			if bytes.Equal(data, []byte("[DONE]")) {
				return nil
			}

			chunk, perr := c.chunkParser.ParseChunk(data)
			if perr != nil {
				c.logger.Warn("failed to parse stream chunk", "error", perr)
			} else if cbErr := callback(chunk); cbErr != nil {
				return cbErr
			}
		}

		if eof {
			return nil
		}
	}
}

// marshalRequest encodes req and merges the configured extra body keys at
// the top level, where OpenAI-compatible servers look for them
func (c *OpenAIClient) marshalRequest(req ChatCompletionRequest) ([]byte, error) {
	if len(c.extraBody) == 0 {
		return json.Marshal(req)
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, err
	}
	for k, v := range c.extraBody {
		if _, reserved := body[k]; !reserved {
			body[k] = v
		}
	}
	return json.Marshal(body)
}

func toChatMessages(system string, history []model.ConversationMessage) []ChatMessage {
	messages := make([]ChatMessage, 0, len(history)+1)
	if system != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: system})
	}
	for _, m := range history {
		msg := ChatMessage{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID}
		for _, call := range m.ToolCalls {
			tc := ChatToolCall{ID: call.ID, Type: "function"}
			tc.Function.Name = call.Name
			tc.Function.Arguments = call.Arguments
			msg.ToolCalls = append(msg.ToolCalls, tc)
		}
		messages = append(messages, msg)
	}
	return messages
}

func toChatTools(tools []ToolDefinition) []ChatTool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]ChatTool, 0, len(tools))
	for _, t := range tools {
		out = append(out, ChatTool{
			Type: "function",
			Function: ChatFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

// toolCallAccumulator merges streamed tool call fragments by index
type toolCallAccumulator struct {
	byIndex map[int]*model.ToolCallRequest
	args    map[int]*strings.Builder
}

func newToolCallAccumulator() *toolCallAccumulator {
	return &toolCallAccumulator{
		byIndex: map[int]*model.ToolCallRequest{},
		args:    map[int]*strings.Builder{},
	}
}

func (a *toolCallAccumulator) add(deltas []ToolCallDelta) {
	for _, d := range deltas {
		call, ok := a.byIndex[d.Index]
		if !ok {
			call = &model.ToolCallRequest{}
			a.byIndex[d.Index] = call
			a.args[d.Index] = &strings.Builder{}
		}
		if d.ID != "" {
			call.ID = d.ID
		}
		if d.Name != "" {
			call.Name = d.Name
		}
		a.args[d.Index].WriteString(d.Arguments)
	}
}

func (a *toolCallAccumulator) calls() []model.ToolCallRequest {
	if len(a.byIndex) == 0 {
		return nil
	}

	indexes := make([]int, 0, len(a.byIndex))
	for i := range a.byIndex {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	calls := make([]model.ToolCallRequest, 0, len(indexes))
	for _, i := range indexes {
		call := *a.byIndex[i]
		call.Arguments = a.args[i].String()
		if call.ID == "" {
			call.ID = "call_" + uuid.NewString()
		}
		calls = append(calls, call)
	}
	return calls
}
