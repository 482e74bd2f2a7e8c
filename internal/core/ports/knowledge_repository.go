package ports

import (
	"context"

	"github.com/detailiq/dashboard-system/internal/core/domain"
)

// KnowledgeRepository stores knowledge-base articles.
type KnowledgeRepository interface {
	Create(ctx context.Context, a *domain.Article) error
	// ListByOrg returns articles newest first.
	ListByOrg(ctx context.Context, orgID string) ([]*domain.Article, error)
	// Search returns at most limit articles of orgID ranked by relevance to query.
	Search(ctx context.Context, orgID, query string, limit int) ([]domain.SearchResult, error)
}

// ThreadRepository stores advisory threads and their messages.
type ThreadRepository interface {
	Create(ctx context.Context, t *domain.Thread) error
	FindByID(ctx context.Context, id string) (*domain.Thread, error)
	AppendMessage(ctx context.Context, m *domain.Message) error
	// ListMessages returns the thread's messages oldest first.
	ListMessages(ctx context.Context, threadID string) ([]*domain.Message, error)
}
