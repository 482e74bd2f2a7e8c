package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
)

// KnowledgeRepository stores articles and ranks them with the collection's
// text index on title and text.
type KnowledgeRepository struct {
	col *mongo.Collection
}

func NewKnowledgeRepository(db *mongo.Database) *KnowledgeRepository {
	return &KnowledgeRepository{col: db.Collection(collectionArticles)}
}

var _ ports.KnowledgeRepository = (*KnowledgeRepository)(nil)

func (r *KnowledgeRepository) Create(ctx context.Context, a *domain.Article) error {
	if err := insert(ctx, r.col, a); err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

func (r *KnowledgeRepository) ListByOrg(ctx context.Context, orgID string) ([]*domain.Article, error) {
	arts, err := findAll[*domain.Article](ctx, r.col, bson.M{"org_id": orgID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return arts, nil
}

func (r *KnowledgeRepository) Search(ctx context.Context, orgID, query string, limit int) ([]domain.SearchResult, error) {
	score := bson.M{"$meta": "textScore"}
	opts := options.Find().
		SetProjection(bson.M{"title": 1, "text": 1, "score": score}).
		SetSort(bson.D{{Key: "score", Value: score}}).
		SetLimit(int64(limit))

	filter := bson.M{"org_id": orgID, "$text": bson.M{"$search": query}}
	results, err := findAll[domain.SearchResult](ctx, r.col, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	return results, nil
}
