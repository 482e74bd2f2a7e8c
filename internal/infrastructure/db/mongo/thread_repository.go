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

type ThreadRepository struct {
	threads  *mongo.Collection
	messages *mongo.Collection
}

func NewThreadRepository(db *mongo.Database) *ThreadRepository {
	return &ThreadRepository{
		threads:  db.Collection(collectionThreads),
		messages: db.Collection(collectionMessages),
	}
}

var _ ports.ThreadRepository = (*ThreadRepository)(nil)

func (r *ThreadRepository) Create(ctx context.Context, t *domain.Thread) error {
	if err := insert(ctx, r.threads, t); err != nil {
		return fmt.Errorf("insert thread: %w", err)
	}
	return nil
}

func (r *ThreadRepository) FindByID(ctx context.Context, id string) (*domain.Thread, error) {
	var t domain.Thread
	if err := findOne(ctx, r.threads, bson.M{"_id": id}, &t, domain.ErrThreadNotFound); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ThreadRepository) AppendMessage(ctx context.Context, m *domain.Message) error {
	if err := insert(ctx, r.messages, m); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *ThreadRepository) ListMessages(ctx context.Context, threadID string) ([]*domain.Message, error) {
	msgs, err := findAll[*domain.Message](ctx, r.messages, bson.M{"thread_id": threadID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}
