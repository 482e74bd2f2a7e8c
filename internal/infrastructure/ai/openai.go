package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/detailiq/dashboard-system/internal/core/ports"
)

const (
	DefaultModel = openai.GPT4oMini

	defaultTimeout = 30 * time.Second
	schemaName     = "structured_output"
)

// ErrNoAPIKey is returned by every call when no key is configured.
var ErrNoAPIKey = errors.New("openai: api key not configured")

// Config configures OpenAIClient. BaseURL overrides the API endpoint for
// compatible gateways.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// OpenAIClient implements ports.LLMClient over the chat completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
	hasKey bool
}

// NewOpenAIClient builds the adapter, filling in defaults for empty fields.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.Model,
		hasKey: cfg.APIKey != "",
	}
}

var _ ports.LLMClient = (*OpenAIClient)(nil)

// jsonSchema hands a prebuilt schema map to the SDK.
type jsonSchema map[string]any

func (s jsonSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any(s))
}

// Complete sends a single user prompt. A JSON schema switches the response to
// structured output constrained by that schema.
func (c *OpenAIClient) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	body := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: withSystem(req.System, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt}),
	}
	if req.JSONSchema != nil {
		body.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: jsonSchema(req.JSONSchema),
			},
		}
	}

	msg, err := c.create(ctx, body)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

// Chat sends the conversation and returns either text or the tool calls the
// model asked for.
func (c *OpenAIClient) Chat(ctx context.Context, req ports.ChatRequest) (*ports.ChatReply, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.History))
	for _, m := range req.History {
		msgs = append(msgs, toMessage(m))
	}
	body := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: withSystem(req.System, msgs...),
	}
	for _, t := range req.Tools {
		body.Tools = append(body.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  jsonSchema(t.Parameters),
			},
		})
	}

	msg, err := c.create(ctx, body)
	if err != nil {
		return nil, err
	}

	reply := &ports.ChatReply{Text: msg.Content}
	for _, tc := range msg.ToolCalls {
		var args map[string]any
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("openai: tool %s arguments: %w", tc.Function.Name, err)
			}
		}
		reply.ToolCalls = append(reply.ToolCalls, ports.ToolCall{ID: tc.ID, Name: tc.Function.Name, Args: args})
	}
	return reply, nil
}

func (c *OpenAIClient) create(ctx context.Context, body openai.ChatCompletionRequest) (*openai.ChatCompletionMessage, error) {
	if !c.hasKey {
		return nil, ErrNoAPIKey
	}
	resp, err := c.client.CreateChatCompletion(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: empty response")
	}
	return &resp.Choices[0].Message, nil
}

func withSystem(system string, msgs ...openai.ChatCompletionMessage) []openai.ChatCompletionMessage {
	if system == "" {
		return msgs
	}
	return append([]openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: system}}, msgs...)
}

// toMessage maps a history entry. Model turns become assistant messages and
// tool results become tool messages tied to the originating call.
func toMessage(m ports.LLMMessage) openai.ChatCompletionMessage {
	switch {
	case m.ToolCall != nil:
		args, _ := json.Marshal(m.ToolCall.Args)
		return openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleAssistant,
			ToolCalls: []openai.ToolCall{{
				ID:       m.ToolCall.ID,
				Type:     openai.ToolTypeFunction,
				Function: openai.FunctionCall{Name: m.ToolCall.Name, Arguments: string(args)},
			}},
		}
	case m.ToolName != "":
		return openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			Name:       m.ToolName,
			ToolCallID: m.ToolCallID,
			Content:    m.Content,
		}
	case m.Role == "model" || m.Role == openai.ChatMessageRoleAssistant:
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: m.Content}
	default:
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: m.Content}
	}
}
