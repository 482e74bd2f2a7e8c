package ports

import "context"

// CompletionRequest is a single-shot prompt. When JSONSchema is set the model
// is asked to answer with JSON matching it.
type CompletionRequest struct {
	System     string
	Prompt     string
	JSONSchema map[string]any
}

// ToolDefinition describes a function the model may call.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// LLMMessage is one entry of a chat history. Role is "user" or "model";
// tool traffic uses ToolCall on model messages and ToolName, ToolCallID and
// Content on the matching response.
type LLMMessage struct {
	Role       string
	Content    string
	ToolCall   *ToolCall
	ToolName   string
	ToolCallID string
}

// ChatRequest is a multi-turn conversation with optional tools.
type ChatRequest struct {
	System  string
	History []LLMMessage
	Tools   []ToolDefinition
}

// ChatReply is the model's answer. Either Text or ToolCalls is set.
type ChatReply struct {
	Text      string
	ToolCalls []ToolCall
}

// LLMClient is the generation backend.
type LLMClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Chat(ctx context.Context, req ChatRequest) (*ChatReply, error)
}
