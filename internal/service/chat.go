package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"propchat/internal/config"
	"propchat/internal/logging"
	"propchat/internal/model"
)

// Messages of the terminal and fallback frames
const (
	TimeoutMessage         = "Disculpa, hubo un problema, intenta de nuevo."
	UpstreamFailureMessage = "Disculpa, tuve un problema. ¿Podrías intentarlo de nuevo?"
	InvalidHistoryMessage  = "Disculpa, no pude leer la conversación. ¿Podrías escribir tu mensaje de nuevo?"
	InvalidSearchMessage   = "Disculpa, no pude entender los criterios de búsqueda."
)

// oneSearchPerTurn is the tool result given to extra calls in the same turn
const oneSearchPerTurn = "only one search per turn; use the result of the first call"

// ChatService drives one chat request: model turns, the search capability,
// the deadline race and the outbound frame sequence
type ChatService struct {
	model    ChatModel
	tool     SearchTool
	system   string
	timeout  time.Duration
	maxTurns int
}

// NewChatService creates a chat service. chatModel may be nil when no
// provider is configured; requests then fail with an error frame.
func NewChatService(chatModel ChatModel, tool SearchTool, cfg config.ChatConfig) *ChatService {
	maxTurns := min(max(cfg.MaxTurns, 1), config.MaxChatTurns)
	return &ChatService{
		model:    chatModel,
		tool:     tool,
		system:   SystemPrompt(cfg.SystemPrompt),
		timeout:  cfg.Timeout,
		maxTurns: maxTurns,
	}
}

// Stream runs the conversation and returns its frames. The channel is closed
// exactly once, after the terminal frame. Cancelling ctx stops generation;
// no frame is sent after that.
func (s *ChatService) Stream(ctx context.Context, history []model.ConversationMessage) <-chan model.StreamFrame {
	out := make(chan model.StreamFrame)

	go func() {
		defer close(out)

		logger := logging.FromContext(ctx)
		start := time.Now()
		if err := s.run(ctx, history, out); err != nil {
			logger.Warn("chat finished with error", "error", err, "took_ms", time.Since(start).Milliseconds())
			return
		}
		logger.Info("chat completed", "took_ms", time.Since(start).Milliseconds())
	}()

	return out
}

// run owns the deadline race. It returns the terminal cause, nil on completion.
func (s *ChatService) run(ctx context.Context, history []model.ConversationMessage, out chan<- model.StreamFrame) error {
	if err := ValidateHistory(history); err != nil {
		_ = send(ctx, out, model.ErrorFrame(InvalidHistoryMessage))
		return err
	}
	if s.model == nil {
		_ = send(ctx, out, model.ErrorFrame(UpstreamFailureMessage))
		return fmt.Errorf("%w: no language model configured", ErrUpstreamGeneration)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	frames := make(chan model.StreamFrame)
	done := make(chan error, 1)
	go func() {
		done <- s.generate(genCtx, history, frames)
	}()

	for {
		select {
		case frame := <-frames:
			if genCtx.Err() != nil {
				return s.interrupted(ctx, out)
			}
			if err := send(ctx, out, frame); err != nil {
				return err
			}
		case err := <-done:
			if err == nil {
				return nil
			}
			if genCtx.Err() != nil {
				return s.interrupted(ctx, out)
			}
			_ = send(ctx, out, model.ErrorFrame(UpstreamFailureMessage))
			return err
		case <-genCtx.Done():
			return s.interrupted(ctx, out)
		}
	}
}

// interrupted ends a request whose generation context is done: silently when
// the caller went away, with the timeout frame when the deadline fired
func (s *ChatService) interrupted(ctx context.Context, out chan<- model.StreamFrame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_ = send(ctx, out, model.TextFrame(TimeoutMessage))
	return fmt.Errorf("%w after %s", ErrDeadlineExceeded, s.timeout)
}

// generate runs the turn loop, sending frames until the model answers
// without a tool call or the turn budget is spent
func (s *ChatService) generate(ctx context.Context, history []model.ConversationMessage, frames chan<- model.StreamFrame) error {
	logger := logging.FromContext(ctx)

	messages := slices.Clone(history)
	var tools []ToolDefinition
	if s.tool != nil {
		tools = []ToolDefinition{s.tool.Definition()}
	}

	var lastSearch []model.PropertySummary
	searched := false

	for turn := 1; turn <= s.maxTurns; turn++ {
		result, err := s.model.StreamTurn(ctx, TurnRequest{
			System:   s.system,
			Messages: messages,
			Tools:    tools,
		}, func(text string) error {
			return send(ctx, frames, model.TextFrame(text))
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if !errors.Is(err, ErrUpstreamGeneration) {
				err = fmt.Errorf("%w: %v", ErrUpstreamGeneration, err)
			}
			return err
		}

		logger.Debug("model turn finished", "turn", turn, "tool_calls", len(result.ToolCalls), "finish_reason", result.FinishReason)
		if len(result.ToolCalls) == 0 {
			break
		}

		messages = append(messages, model.ConversationMessage{
			Role:      model.RoleAssistant,
			Content:   result.Content,
			ToolCalls: result.ToolCalls,
		})

		for i, call := range result.ToolCalls {
			toolResult := model.FailedToolCallResult(oneSearchPerTurn)
			if i == 0 {
				toolResult, err = s.invoke(ctx, call)
				if ctxErr := ctx.Err(); ctxErr != nil {
					// Output of a search that outlived the request is never used
					return ctxErr
				}
				if err != nil {
					logger.Warn("rejected tool call", "tool", call.Name, "error", err)
					if err := send(ctx, frames, model.ErrorFrame(InvalidSearchMessage)); err != nil {
						return err
					}
				} else if !toolResult.Failed() {
					lastSearch = toolResult.Properties
					searched = true
				}
			}

			content, err := json.Marshal(toolResult)
			if err != nil {
				return fmt.Errorf("encode tool result: %w", err)
			}
			messages = append(messages, model.ConversationMessage{
				Role:       model.RoleTool,
				Content:    string(content),
				ToolCallID: call.ID,
			})
		}

		if turn == s.maxTurns {
			logger.Warn("turn budget exhausted", "max_turns", s.maxTurns)
		}
	}

	if searched {
		return send(ctx, frames, model.PropertiesFrame(lastSearch))
	}
	return nil
}

func (s *ChatService) invoke(ctx context.Context, call model.ToolCallRequest) (model.ToolCallResult, error) {
	if s.tool == nil {
		err := fmt.Errorf("%w: no tools available", ErrInvalidArguments)
		return model.FailedToolCallResult(err.Error()), err
	}
	return s.tool.Invoke(ctx, call)
}

// ValidateHistory rejects histories the gateway cannot hand to a model
func ValidateHistory(history []model.ConversationMessage) error {
	if len(history) == 0 {
		return fmt.Errorf("%w: no messages", ErrInvalidHistory)
	}

	for i, msg := range history {
		switch msg.Role {
		case model.RoleUser, model.RoleAssistant:
		case model.RoleTool:
			if msg.ToolCallID == "" {
				return fmt.Errorf("%w: message %d: tool message without tool_call_id", ErrInvalidHistory, i)
			}
		default:
			return fmt.Errorf("%w: message %d: unsupported role %q", ErrInvalidHistory, i, msg.Role)
		}
		if msg.Role != model.RoleAssistant && len(msg.ToolCalls) > 0 {
			return fmt.Errorf("%w: message %d: only assistant messages carry tool calls", ErrInvalidHistory, i)
		}
	}

	last := history[len(history)-1]
	if last.Role == model.RoleUser && strings.TrimSpace(last.Content) == "" {
		return fmt.Errorf("%w: last user message is empty", ErrInvalidHistory)
	}
	return nil
}

// send delivers frame unless ctx is done first
func send(ctx context.Context, ch chan<- model.StreamFrame, frame model.StreamFrame) error {
	select {
	case ch <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
