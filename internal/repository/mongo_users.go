package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/heritage-nest/server/internal/apperrors"
	"github.com/heritage-nest/server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoUserStore persists users in the "users" collection.
type MongoUserStore struct {
	collection *mongo.Collection
}

func NewMongoUserStore(database *mongo.Database) *MongoUserStore {
	return &MongoUserStore{collection: database.Collection("users")}
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

// Insert relies on the unique email index: a concurrent duplicate insert is
// rejected by the store itself, not by a prior existence check.
func (s *MongoUserStore) Insert(ctx context.Context, user models.User) error {
	_, err := s.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrDuplicateAccount
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}
