package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/tmc/langchaingo/llms"
	lcanthropic "github.com/tmc/langchaingo/llms/anthropic"
	lcopenai "github.com/tmc/langchaingo/llms/openai"

	"propchat/internal/config"
	"propchat/internal/model"
)

// LangChainModel runs turns through a langchaingo llms.Model. Turns are not
// streamed: the whole reply is handed to onDelta once the turn completes.
type LangChainModel struct {
	llm         llms.Model
	temperature float64
	topP        float64
	maxTokens   int
}

// NewLangChainModel builds the configured langchaingo backend
func NewLangChainModel(cfg *config.LLMConfig) (*LangChainModel, error) {
	var (
		llm llms.Model
		err error
	)
	switch cfg.Backend {
	case "anthropic":
		llm, err = lcanthropic.New(
			lcanthropic.WithToken(cfg.APIKey),
			lcanthropic.WithModel(cfg.Model),
		)
	case "openai", "":
		llm, err = lcopenai.New(
			lcopenai.WithToken(cfg.APIKey),
			lcopenai.WithModel(cfg.Model),
			lcopenai.WithBaseURL(cfg.APIBase),
		)
	default:
		return nil, fmt.Errorf("unknown langchain backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s LLM: %w", cfg.Backend, err)
	}

	return NewLangChainModelFromLLM(llm, cfg), nil
}

// NewLangChainModelFromLLM wraps an existing llms.Model
func NewLangChainModelFromLLM(llm llms.Model, cfg *config.LLMConfig) *LangChainModel {
	return &LangChainModel{
		llm:         llm,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		maxTokens:   cfg.MaxTokens,
	}
}

// StreamTurn generates one turn
func (m *LangChainModel) StreamTurn(ctx context.Context, req TurnRequest, onDelta func(text string) error) (*TurnResult, error) {
	options := []llms.CallOption{
		llms.WithTemperature(m.temperature),
	}
	if m.topP > 0 {
		options = append(options, llms.WithTopP(m.topP))
	}
	if m.maxTokens > 0 {
		options = append(options, llms.WithMaxTokens(m.maxTokens))
	}
	if len(req.Tools) > 0 {
		options = append(options, llms.WithTools(lo.Map(req.Tools, func(t ToolDefinition, _ int) llms.Tool {
			return llms.Tool{
				Type: "function",
				Function: &llms.FunctionDefinition{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				},
			}
		})))
	}

	resp, err := m.llm.GenerateContent(ctx, toMessageContents(req.System, req.Messages), options...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrUpstreamGeneration)
	}

	choice := resp.Choices[0]
	if choice.Content != "" {
		if err := onDelta(choice.Content); err != nil {
			return nil, err
		}
	}

	calls := lo.FilterMap(choice.ToolCalls, func(tc llms.ToolCall, _ int) (model.ToolCallRequest, bool) {
		if tc.FunctionCall == nil {
			return model.ToolCallRequest{}, false
		}
		return model.ToolCallRequest{
			ID:        tc.ID,
			Name:      tc.FunctionCall.Name,
			Arguments: tc.FunctionCall.Arguments,
		}, true
	})

	return &TurnResult{
		Content:      choice.Content,
		ToolCalls:    calls,
		FinishReason: choice.StopReason,
	}, nil
}

func toMessageContents(system string, history []model.ConversationMessage) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history)+1)
	if system != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, system))
	}

	return append(messages, lo.Map(history, func(msg model.ConversationMessage, _ int) llms.MessageContent {
		switch msg.Role {
		case model.RoleAssistant:
			content := llms.MessageContent{Role: llms.ChatMessageTypeAI}
			if msg.Content != "" {
				content.Parts = append(content.Parts, llms.TextContent{Text: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				content.Parts = append(content.Parts, llms.ToolCall{
					ID:   call.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				})
			}
			return content
		case model.RoleTool:
			return llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: msg.ToolCallID,
					Name:       model.SearchPropertiesTool,
					Content:    msg.Content,
				}},
			}
		default:
			return llms.TextParts(llms.ChatMessageTypeHuman, msg.Content)
		}
	})...)
}
