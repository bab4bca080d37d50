package model

// Conversation roles accepted from the caller
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ConversationMessage is one entry of the caller-supplied history
type ConversationMessage struct {
	Role       string            `json:"role" binding:"required,oneof=user assistant tool"`
	Content    string            `json:"content"`
	ToolCalls  []ToolCallRequest `json:"tool_calls,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Messages []ConversationMessage `json:"messages" binding:"required,min=1,dive"`
}
