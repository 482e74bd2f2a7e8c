package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
	"github.com/detailiq/dashboard-system/internal/pkg/metrics"
)

const (
	searchToolName = "searchKnowledgeBase"
	maxToolRounds  = 3
)

var searchTool = ports.ToolDefinition{
	Name:        searchToolName,
	Description: "Search the organization's knowledge base for relevant articles to answer a user's question.",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "What to look for."},
		},
		"required": []string{"query"},
	},
}

// ChatWorker answers queued chat turns. It is driven by the chat dispatcher,
// which guarantees turns of one thread never run concurrently.
type ChatWorker struct {
	threads   ports.ThreadRepository
	knowledge ports.KnowledgeRepository
	llm       ports.LLMClient
	context   *contextBuilder
	log       zerolog.Logger
	now       func() time.Time
}

// NewChatWorker returns a ChatWorker.
func NewChatWorker(
	threads ports.ThreadRepository,
	goals ports.GoalRepository,
	jobs ports.JobRepository,
	knowledge ports.KnowledgeRepository,
	llm ports.LLMClient,
	log zerolog.Logger,
) *ChatWorker {
	w := &ChatWorker{
		threads:   threads,
		knowledge: knowledge,
		llm:       llm,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
	w.context = &contextBuilder{goals: goals, jobs: jobs, now: func() time.Time { return w.now() }}
	return w
}

var _ ports.ChatTurnProcessor = (*ChatWorker)(nil)

// ProcessTurn generates and stores the model reply for the thread's latest
// messages. Upstream failures are stored as a degraded reply.
func (w *ChatWorker) ProcessTurn(ctx context.Context, turn ports.ChatTurn) error {
	start := time.Now()
	defer func() { metrics.ChatTurnDuration.Observe(time.Since(start).Seconds()) }()

	t, err := w.threads.FindByID(ctx, turn.ThreadID)
	if err != nil {
		metrics.ChatTurnsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("process turn: %w", err)
	}
	history, err := w.threads.ListMessages(ctx, t.ID)
	if err != nil {
		metrics.ChatTurnsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("process turn: %w", err)
	}

	outcome := "ok"
	reply, err := w.reply(ctx, t, history)
	if err != nil {
		outcome = "degraded"
		w.log.Warn().Err(err).Str("thread_id", t.ID).Str("message_id", turn.MessageID).Msg("chat generation failed")
		reply = degradedReply
	}

	msg := &domain.Message{
		ID:        uuid.NewString(),
		ThreadID:  t.ID,
		Role:      domain.MessageRoleModel,
		Content:   reply,
		CreatedAt: w.now(),
	}
	if err := w.threads.AppendMessage(ctx, msg); err != nil {
		metrics.ChatTurnsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("process turn: %w", err)
	}
	metrics.ChatTurnsTotal.WithLabelValues(outcome).Inc()
	w.log.Debug().Str("thread_id", t.ID).Str("outcome", outcome).Msg("chat turn processed")
	return nil
}

// reply runs the tool loop: the model may search the knowledge base up to
// maxToolRounds times before it must answer in text.
func (w *ChatWorker) reply(ctx context.Context, t *domain.Thread, history []*domain.Message) (string, error) {
	block, err := w.context.build(ctx, t.OrgID)
	if err != nil {
		return "", err
	}

	req := ports.ChatRequest{
		System:  advisorSystemPrompt + "\n\n" + block,
		History: make([]ports.LLMMessage, 0, len(history)),
		Tools:   []ports.ToolDefinition{searchTool},
	}
	for _, m := range history {
		req.History = append(req.History, ports.LLMMessage{Role: string(m.Role), Content: m.Content})
	}

	for round := 0; ; round++ {
		if round == maxToolRounds {
			req.Tools = nil
		}
		out, err := w.llm.Chat(ctx, req)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrUpstreamGeneration, err)
		}
		if len(out.ToolCalls) == 0 || req.Tools == nil {
			text := strings.TrimSpace(out.Text)
			if text == "" {
				return "", fmt.Errorf("%w: empty reply", domain.ErrUpstreamGeneration)
			}
			return text, nil
		}

		for _, call := range out.ToolCalls {
			result := w.runTool(ctx, t.OrgID, call)
			req.History = append(req.History,
				ports.LLMMessage{Role: string(domain.MessageRoleModel), ToolCall: &call},
				ports.LLMMessage{Role: string(domain.MessageRoleUser), ToolName: call.Name, ToolCallID: call.ID, Content: result},
			)
		}
	}
}

func (w *ChatWorker) runTool(ctx context.Context, orgID string, call ports.ToolCall) string {
	if call.Name != searchToolName {
		return fmt.Sprintf("Unknown tool %q.", call.Name)
	}
	query, _ := call.Args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return noArticlesFound
	}
	results, err := w.knowledge.Search(ctx, orgID, query, domain.KnowledgeSearchLimit)
	if err != nil {
		w.log.Warn().Err(err).Str("org_id", orgID).Msg("knowledge search failed")
		return noArticlesFound
	}
	return formatSearchResults(results)
}
