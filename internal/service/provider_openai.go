package service

import (
	"encoding/json"
	"strings"
)

// openAIChunk is the standard chat.completion.chunk payload
type openAIChunk struct {
	Choices []struct {
		Delta struct {
			Role             string          `json:"role,omitempty"`
			Content          string          `json:"content,omitempty"`
			ReasoningContent *string         `json:"reasoning_content,omitempty"`
			ToolCalls        []toolCallChunk `json:"tool_calls,omitempty"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason,omitempty"`
	} `json:"choices"`
}

type toolCallChunk struct {
	Index    int    `json:"index"`
	ID       string `json:"id,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	} `json:"function"`
}

// OpenAIStreamChunkParser parses standard OpenAI-format streaming chunks
type OpenAIStreamChunkParser struct{}

// ParseChunk converts standard OpenAI chunk to generic StreamChunk
func (p *OpenAIStreamChunkParser) ParseChunk(data []byte) (*StreamChunk, error) {
	var raw openAIChunk
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw.toStreamChunk(false), nil
}

func (c *openAIChunk) toStreamChunk(withReasoning bool) *StreamChunk {
	chunk := &StreamChunk{}
	if len(c.Choices) == 0 {
		return chunk
	}

	choice := c.Choices[0]
	chunk.Role = choice.Delta.Role
	chunk.Content = choice.Delta.Content
	if withReasoning && choice.Delta.ReasoningContent != nil {
		chunk.ThinkingContent = *choice.Delta.ReasoningContent
	}
	for _, tc := range choice.Delta.ToolCalls {
		chunk.ToolCalls = append(chunk.ToolCalls, ToolCallDelta{
			Index:     tc.Index,
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	chunk.FinishReason = choice.FinishReason
	chunk.Done = choice.FinishReason != ""
	return chunk
}

// IsOpenAIProvider checks if the base URL is official OpenAI API
func IsOpenAIProvider(baseURL string) bool {
	return strings.Contains(baseURL, "api.openai.com")
}
