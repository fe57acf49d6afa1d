package watermark

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultMongoDatabase   = "hubspot_executor"
	DefaultMongoCollection = "watermarks"
)

type watermarkDocument struct {
	Key              string    `bson:"_id"`
	LastFetchEpochMS int64     `bson:"last_fetch_epoch_ms"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type MongoStoreDependencies struct {
	Context        context.Context
	URI            string
	DatabaseName   string
	CollectionName string
}

func NewMongoStore(deps MongoStoreDependencies) (*MongoStore, error) {
	client, err := mongo.Connect(deps.Context, options.Client().ApplyURI(deps.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	databaseName := deps.DatabaseName
	if databaseName == "" {
		databaseName = DefaultMongoDatabase
	}

	collectionName := deps.CollectionName
	if collectionName == "" {
		collectionName = DefaultMongoCollection
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(databaseName).Collection(collectionName),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, key domain.WatermarkKey) (int64, bool, error) {
	var doc watermarkDocument

	err := s.collection.FindOne(ctx, bson.M{"_id": key.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get watermark %s: %w", key, err)
	}

	return doc.LastFetchEpochMS, true, nil
}

func (s *MongoStore) Put(ctx context.Context, key domain.WatermarkKey, value int64) error {
	update := bson.M{
		"$max": bson.M{"last_fetch_epoch_ms": value},
		"$set": bson.M{"updated_at": time.Now()},
	}

	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": key.String()}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to put watermark %s: %w", key, err)
	}

	return nil
}

func (s *MongoStore) Delete(ctx context.Context, key domain.WatermarkKey) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": key.String()}); err != nil {
		return fmt.Errorf("failed to delete watermark %s: %w", key, err)
	}

	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
