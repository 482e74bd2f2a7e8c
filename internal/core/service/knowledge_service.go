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
)

const noArticlesFound = "No relevant articles found in the knowledge base."

// KnowledgeService manages an organization's knowledge base.
type KnowledgeService struct {
	access ports.AccessChecker
	repo   ports.KnowledgeRepository
	log    zerolog.Logger
	now    func() time.Time
}

// NewKnowledgeService returns a KnowledgeService.
func NewKnowledgeService(access ports.AccessChecker, repo ports.KnowledgeRepository, log zerolog.Logger) *KnowledgeService {
	return &KnowledgeService{
		access: access,
		repo:   repo,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var _ ports.KnowledgeService = (*KnowledgeService)(nil)

// AddArticle stores a new article. Admin only.
func (s *KnowledgeService) AddArticle(ctx context.Context, id ports.Identity, in ports.CreateArticleInput) (*domain.Article, error) {
	a, err := s.access.ResolveAccess(ctx, id, in.OrgID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(a, domain.RoleAdmin); err != nil {
		return nil, err
	}

	title, text := strings.TrimSpace(in.Title), strings.TrimSpace(in.Text)
	if title == "" || text == "" {
		return nil, domain.InvalidInput("article title and text must not be empty")
	}

	art := &domain.Article{
		ID:        uuid.NewString(),
		OrgID:     in.OrgID,
		Title:     title,
		Text:      text,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, art); err != nil {
		return nil, fmt.Errorf("add article: %w", err)
	}
	s.log.Info().Str("article_id", art.ID).Str("org_id", art.OrgID).Msg("article added")
	return art, nil
}

// ListArticles returns the organization's articles, newest first.
func (s *KnowledgeService) ListArticles(ctx context.Context, id ports.Identity, orgID string) ([]*domain.Article, error) {
	a, err := s.access.ResolveAccess(ctx, id, orgID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(a, domain.RoleAdmin, domain.RoleMember); err != nil {
		return nil, err
	}
	arts, err := s.repo.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return arts, nil
}

// Search returns the top matches for query within the organization.
func (s *KnowledgeService) Search(ctx context.Context, id ports.Identity, orgID, query string) ([]domain.SearchResult, error) {
	a, err := s.access.ResolveAccess(ctx, id, orgID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(a, domain.RoleAdmin, domain.RoleMember); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.InvalidInput("search query must not be empty")
	}

	results, err := s.repo.Search(ctx, orgID, query, domain.KnowledgeSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search knowledge base: %w", err)
	}
	return results, nil
}

// formatSearchResults renders results as the knowledge-base tool response.
func formatSearchResults(results []domain.SearchResult) string {
	if len(results) == 0 {
		return noArticlesFound
	}
	var b strings.Builder
	b.WriteString("Found relevant articles:\n")
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Article: %s (relevance %.2f)\nContent: %s\n---", r.Title, r.Score, r.Text)
	}
	return b.String()
}
