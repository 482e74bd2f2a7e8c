package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
)

func newKnowledgeSvc(f *fixture, repo *stubKnowledgeRepo) *KnowledgeService {
	return NewKnowledgeService(newOrgSvc(f), repo, zerolog.Nop())
}

func TestAddArticle(t *testing.T) {
	f := newFixture(domain.PlanSolo)
	repo := &stubKnowledgeRepo{}
	svc := newKnowledgeSvc(f, repo)
	ctx := context.Background()

	art, err := svc.AddArticle(ctx, asAdmin, ports.CreateArticleInput{OrgID: testOrgID, Title: " Winter upsells ", Text: "Offer undercarriage washes."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art.Title != "Winter upsells" || art.OrgID != testOrgID || art.ID == "" {
		t.Errorf("unexpected article: %+v", art)
	}

	if _, err := svc.AddArticle(ctx, asMember, ports.CreateArticleInput{OrgID: testOrgID, Title: "x", Text: "y"}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("member: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.AddArticle(ctx, asAdmin, ports.CreateArticleInput{OrgID: testOrgID, Title: "x", Text: "  "}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty text: expected ErrValidation, got %v", err)
	}
	if len(repo.articles) != 1 {
		t.Errorf("expected exactly one stored article, got %d", len(repo.articles))
	}
}

func TestKnowledgeSearch(t *testing.T) {
	f := newFixture(domain.PlanSolo)
	repo := &stubKnowledgeRepo{articles: []*domain.Article{
		{OrgID: testOrgID, Title: "Ceramic pricing", Text: "Charge by vehicle size."},
		{OrgID: testOrgID, Title: "Ceramic prep", Text: "Decontaminate first."},
		{OrgID: testOrgID, Title: "Ceramic aftercare", Text: "No washing for a week."},
		{OrgID: testOrgID, Title: "Ceramic warranties", Text: "Offer annual inspections."},
		{OrgID: "org_other", Title: "Ceramic", Text: "Other tenant."},
	}}
	svc := newKnowledgeSvc(f, repo)
	ctx := context.Background()

	results, err := svc.Search(ctx, asMember, testOrgID, "  ceramic ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != domain.KnowledgeSearchLimit {
		t.Errorf("expected %d results, got %d", domain.KnowledgeSearchLimit, len(results))
	}
	for _, r := range results {
		if r.Text == "Other tenant." {
			t.Error("search leaked another organization's article")
		}
	}
	if repo.queries[0] != "ceramic" {
		t.Errorf("expected trimmed query, got %q", repo.queries[0])
	}

	if _, err := svc.Search(ctx, asMember, testOrgID, " "); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty query: expected ErrValidation, got %v", err)
	}
	if _, err := svc.Search(ctx, asOutsider, testOrgID, "ceramic"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("outsider: expected ErrForbidden, got %v", err)
	}
}

func TestFormatSearchResults(t *testing.T) {
	if got := formatSearchResults(nil); got != noArticlesFound {
		t.Errorf("empty: got %q", got)
	}
	got := formatSearchResults([]domain.SearchResult{
		{Title: "A", Text: "one", Score: 1.75},
		{Title: "B", Text: "two", Score: 0.5},
	})
	want := "Found relevant articles:\nArticle: A (relevance 1.75)\nContent: one\n---\nArticle: B (relevance 0.50)\nContent: two\n---"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
