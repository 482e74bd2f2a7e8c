package ports

import (
	"context"

	"github.com/detailiq/dashboard-system/internal/core/domain"
)

// ChatTurn asks a worker to answer the latest user message of a thread.
type ChatTurn struct {
	ThreadID  string
	OrgID     string
	MessageID string
}

// ChatQueue hands chat turns to background workers. Turns of the same
// thread are processed in order.
type ChatQueue interface {
	Enqueue(turn ChatTurn) error
}

// ChatTurnProcessor answers a queued turn.
type ChatTurnProcessor interface {
	ProcessTurn(ctx context.Context, turn ChatTurn) error
}

// AdvisorService defines the advisory chat use cases.
type AdvisorService interface {
	CreateThread(ctx context.Context, id Identity, orgID, title string) (*domain.Thread, error)
	// SendMessage stores the user message and queues the reply; the reply
	// appears in the thread's message feed.
	SendMessage(ctx context.Context, id Identity, threadID, content string) (*domain.Message, error)
	ListMessages(ctx context.Context, id Identity, threadID string) ([]*domain.Message, error)
	SuggestNextQuestion(ctx context.Context, id Identity, threadID string) (string, error)
}

// CreateArticleInput carries a new knowledge-base article.
type CreateArticleInput struct {
	OrgID string
	Title string
	Text  string
}

// KnowledgeService manages the knowledge base.
type KnowledgeService interface {
	AddArticle(ctx context.Context, id Identity, in CreateArticleInput) (*domain.Article, error)
	ListArticles(ctx context.Context, id Identity, orgID string) ([]*domain.Article, error)
	Search(ctx context.Context, id Identity, orgID, query string) ([]domain.SearchResult, error)
}

// WebhookOutcome reports what a verified webhook delivery did.
type WebhookOutcome string

const (
	WebhookApplied WebhookOutcome = "applied"
	WebhookIgnored WebhookOutcome = "ignored"
)

// WebhookService applies verified provider events. Malformed payloads fail
// with a validation error; unknown event types are ignored.
type WebhookService interface {
	HandleIdentityEvent(ctx context.Context, payload []byte) (WebhookOutcome, error)
	HandleBillingEvent(ctx context.Context, payload []byte) (WebhookOutcome, error)
}
