package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultTimeout = 10 * time.Second
	indexTimeout   = 30 * time.Second
)

const (
	collectionUsers         = "users"
	collectionOrganizations = "organizations"
	collectionMemberships   = "memberships"
	collectionGoals         = "goals"
	collectionJobs          = "jobs"
	collectionMetrics       = "metric_records"
	collectionArticles      = "knowledge_articles"
	collectionThreads       = "threads"
	collectionMessages      = "messages"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// EnsureIndexes creates the indexes every repository relies on, including the
// unique constraints that back idempotent writes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		collectionUsers: {
			{Keys: bson.D{{Key: "token_identifier", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collectionOrganizations: {
			{Keys: bson.D{{Key: "billing_ref", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
		collectionMemberships: {
			{Keys: bson.D{{Key: "org_id", Value: 1}, {Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		collectionGoals: {
			{Keys: bson.D{{Key: "org_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		collectionJobs: {
			{Keys: bson.D{{Key: "org_id", Value: 1}, {Key: "date", Value: 1}}},
		},
		collectionMetrics: {
			{Keys: bson.D{{Key: "org_id", Value: 1}, {Key: "date", Value: 1}}},
		},
		collectionArticles: {
			{Keys: bson.D{{Key: "org_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "text", Value: "text"}}},
		},
		collectionThreads: {
			{Keys: bson.D{{Key: "org_id", Value: 1}}},
		},
		collectionMessages: {
			{Keys: bson.D{{Key: "thread_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
	}

	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", name, err)
		}
	}
	return nil
}

// findOne decodes the single document matching filter into out, returning
// notFound when there is none.
func findOne(ctx context.Context, col *mongo.Collection, filter any, out any, notFound error) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := col.FindOne(ctx, filter).Decode(out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return notFound
		}
		return err
	}
	return nil
}

// findAll decodes every document matching filter.
func findAll[T any](ctx context.Context, col *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func insert(ctx context.Context, col *mongo.Collection, doc any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := col.InsertOne(ctx, doc)
	return err
}

// findOneAndSet applies update and decodes the updated document into out.
func findOneAndSet(ctx context.Context, col *mongo.Collection, filter, update, out any, notFound error) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res := col.FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetReturnDocument(options.After))
	if err := res.Decode(out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return notFound
		}
		return err
	}
	return nil
}
