// server/internal/database/mongo.go
package database

import (
	"context"
	"fmt"
	"time"

	"garden-application-api-server/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Connect opens a client for cfg.URI, checks it with a ping and returns the
// configured database.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client.Database(cfg.DBName), nil
}

// EnsureIndexes creates the indexes the API's queries rely on. Creating an
// index that already exists is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users.email index: %w", err)
	}

	_, err = db.Collection("pins").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdBy", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create pins.createdBy index: %w", err)
	}

	logger.Info("Mongo indexes ensured", zap.String("db", db.Name()))
	return nil
}
