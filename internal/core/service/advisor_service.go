package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
)

const (
	defaultThreadTitle  = "New conversation"
	degradedReply       = "There was an error generating a response. Please try again."
	degradedSuggestion  = "Could not generate a suggestion."
	suggestionPromptFmt = "You are a sharp, proactive AI business consultant for a car detailer. Your task is to suggest one single, highly insightful follow-up question for the user to ask based on their business data. Your question should guide the user to discover a hidden opportunity, a potential risk, or a critical connection. Return ONLY the question as a single line of plain text.\n\n**BUSINESS DATA:**\n%s"
)

// AdvisorService implements the request side of the advisory chat: threads,
// the message feed and next-question suggestions. Replies are produced by
// ChatWorker.
type AdvisorService struct {
	access  ports.AccessChecker
	threads ports.ThreadRepository
	queue   ports.ChatQueue
	llm     ports.LLMClient
	context *contextBuilder
	log     zerolog.Logger
	now     func() time.Time
}

// NewAdvisorService returns an AdvisorService.
func NewAdvisorService(
	access ports.AccessChecker,
	threads ports.ThreadRepository,
	goals ports.GoalRepository,
	jobs ports.JobRepository,
	queue ports.ChatQueue,
	llm ports.LLMClient,
	log zerolog.Logger,
) *AdvisorService {
	s := &AdvisorService{
		access:  access,
		threads: threads,
		queue:   queue,
		llm:     llm,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
	s.context = &contextBuilder{goals: goals, jobs: jobs, now: func() time.Time { return s.now() }}
	return s
}

var _ ports.AdvisorService = (*AdvisorService)(nil)

// CreateThread opens a conversation bound to orgID.
func (s *AdvisorService) CreateThread(ctx context.Context, id ports.Identity, orgID, title string) (*domain.Thread, error) {
	a, err := s.access.ResolveAccess(ctx, id, orgID)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultThreadTitle
	}

	t := &domain.Thread{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		CreatedBy: a.User.ID,
		Title:     title,
		CreatedAt: s.now(),
	}
	if err := s.threads.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}
	s.log.Info().Str("thread_id", t.ID).Str("org_id", orgID).Msg("thread created")
	return t, nil
}

// SendMessage stores the user's message and queues the reply.
func (s *AdvisorService) SendMessage(ctx context.Context, id ports.Identity, threadID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.InvalidInput("message must not be empty")
	}
	t, err := s.authorizeThread(ctx, id, threadID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:        uuid.NewString(),
		ThreadID:  t.ID,
		Role:      domain.MessageRoleUser,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.threads.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	if err := s.queue.Enqueue(ports.ChatTurn{ThreadID: t.ID, OrgID: t.OrgID, MessageID: msg.ID}); err != nil {
		s.log.Error().Err(err).Str("thread_id", t.ID).Msg("failed to queue chat turn")
		reply := &domain.Message{
			ID:        uuid.NewString(),
			ThreadID:  t.ID,
			Role:      domain.MessageRoleModel,
			Content:   degradedReply,
			CreatedAt: s.now(),
		}
		if err := s.threads.AppendMessage(ctx, reply); err != nil {
			return nil, fmt.Errorf("send message: %w", err)
		}
	}
	return msg, nil
}

// ListMessages returns the thread's feed, oldest first.
func (s *AdvisorService) ListMessages(ctx context.Context, id ports.Identity, threadID string) ([]*domain.Message, error) {
	t, err := s.authorizeThread(ctx, id, threadID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.threads.ListMessages(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// SuggestNextQuestion returns one plain-text follow-up question. Upstream
// failures degrade to a fixed message rather than an error.
func (s *AdvisorService) SuggestNextQuestion(ctx context.Context, id ports.Identity, threadID string) (string, error) {
	t, err := s.authorizeThread(ctx, id, threadID)
	if err != nil {
		return "", err
	}
	block, err := s.context.build(ctx, t.OrgID)
	if err != nil {
		return "", err
	}

	raw, err := s.llm.Complete(ctx, ports.CompletionRequest{Prompt: fmt.Sprintf(suggestionPromptFmt, block)})
	if err != nil {
		s.log.Warn().Err(err).Str("thread_id", t.ID).Msg("suggestion generation failed")
		return degradedSuggestion, nil
	}
	q := plainLine(raw)
	if q == "" {
		return degradedSuggestion, nil
	}
	return q, nil
}

func (s *AdvisorService) authorizeThread(ctx context.Context, id ports.Identity, threadID string) (*domain.Thread, error) {
	t, err := s.threads.FindByID(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("thread: %w", err)
	}
	if _, err := s.access.ResolveAccess(ctx, id, t.OrgID); err != nil {
		return nil, err
	}
	return t, nil
}

var (
	listMarker   = regexp.MustCompile(`^\s*(?:[-*+>]|\d+[.)])\s+`)
	markdownMark = regexp.MustCompile("[*_`#]+")
)

// plainLine reduces model output to its first non-empty line without
// markdown emphasis, list markers or surrounding quotes.
func plainLine(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = listMarker.ReplaceAllString(line, "")
		line = markdownMark.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		line = strings.Trim(line, "\"'“”‘’")
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
