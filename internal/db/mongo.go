package db

import (
	"context"
	"fmt"
	"time"

	"github.com/heritage-nest/server/internal/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect initializes the database connection and returns the database
// handle. The handle is passed explicitly to the stores, never held as a
// package global.
func Connect(uri, dbName string) *mongo.Database {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		logger.Fatal("MongoDB connection failed", map[string]any{"error": err.Error()})
	}

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal("MongoDB ping failed", map[string]any{"error": err.Error()})
	}

	fmt.Println("✅ Connected to MongoDB")
	return client.Database(dbName)
}

// EnsureIndexes creates the indexes the API depends on: a unique index on
// user email so registration uniqueness holds under concurrent inserts, and
// a text index over the listing text fields for search.
func EnsureIndexes(database *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := database.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create user email index: %w", err)
	}

	_, err = database.Collection("properties").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "title", Value: "text"},
			{Key: "description", Value: "text"},
			{Key: "location", Value: "text"},
		},
	})
	if err != nil {
		return fmt.Errorf("create property text index: %w", err)
	}

	return nil
}
