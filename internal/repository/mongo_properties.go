package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/heritage-nest/server/internal/apperrors"
	"github.com/heritage-nest/server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPropertyStore persists listings in the "properties" collection.
type MongoPropertyStore struct {
	collection *mongo.Collection
}

func NewMongoPropertyStore(database *mongo.Database) *MongoPropertyStore {
	return &MongoPropertyStore{collection: database.Collection("properties")}
}

func (s *MongoPropertyStore) FindAll(ctx context.Context) ([]models.Property, error) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find properties: %w", err)
	}
	defer cursor.Close(ctx)

	var properties []models.Property
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}
	return properties, nil
}

// Search builds an aggregation pipeline, one $match stage per supplied
// filter. The $text stage has to come first for the query planner.
func (s *MongoPropertyStore) Search(ctx context.Context, filter SearchFilter) ([]models.Property, error) {
	pipeline := mongo.Pipeline{}

	if filter.SearchText != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{
			"$text": bson.M{"$search": filter.SearchText},
		}}})
	}
	if filter.Budget != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{
			"price": bson.M{"$lte": *filter.Budget},
		}}})
	}
	if filter.PropertyType != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{
			"property_type": filter.PropertyType,
		}}})
	}
	if filter.Location != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{
			"location": filter.Location,
		}}})
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("search properties: %w", err)
	}
	defer cursor.Close(ctx)

	var properties []models.Property
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	return properties, nil
}

func (s *MongoPropertyStore) FindByID(ctx context.Context, id string) (models.Property, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Property{}, apperrors.ErrInvalidPropertyID
	}

	var property models.Property
	err = s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&property)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Property{}, apperrors.ErrPropertyNotFound
	}
	if err != nil {
		return models.Property{}, fmt.Errorf("find property %s: %w", id, err)
	}
	return property, nil
}

func (s *MongoPropertyStore) Insert(ctx context.Context, property models.Property) (string, error) {
	result, err := s.collection.InsertOne(ctx, property)
	if err != nil {
		return "", fmt.Errorf("insert property: %w", err)
	}
	objID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert property: unexpected inserted id type %T", result.InsertedID)
	}
	return objID.Hex(), nil
}

// UpdateFields merges only the supplied fields into the document. The
// server-side updated_at is set last so a caller-supplied value never wins.
func (s *MongoPropertyStore) UpdateFields(ctx context.Context, id string, fields map[string]any, updatedAt time.Time) (UpdateResult, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return UpdateResult{}, apperrors.ErrInvalidPropertyID
	}

	set := bson.M{}
	for key, value := range fields {
		set[key] = value
	}
	set["updated_at"] = updatedAt

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		return UpdateResult{}, fmt.Errorf("update property %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return UpdateResult{}, apperrors.ErrPropertyNotFound
	}
	return UpdateResult{MatchedCount: result.MatchedCount, ModifiedCount: result.ModifiedCount}, nil
}

func (s *MongoPropertyStore) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.ErrInvalidPropertyID
	}

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("delete property %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return apperrors.ErrPropertyNotFound
	}
	return nil
}

// ApplyBid is a single conditional write: the filter carries the bid
// monotonicity predicate, so two concurrent bids can never both succeed
// against the same stale current_bid. The update is a pipeline so that a
// missing bidder id can fall back to the previous bidder's id in-store.
func (s *MongoPropertyStore) ApplyBid(ctx context.Context, id string, bid Bid) (models.Property, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Property{}, apperrors.ErrInvalidPropertyID
	}

	filter := bson.M{
		"_id":          objID,
		"starting_bid": bson.M{"$lt": bid.Amount},
		"$or": bson.A{
			bson.M{"current_bid": bson.M{"$lt": bid.Amount}},
			bson.M{"current_bid": bson.M{"$exists": false}},
		},
	}

	// Every string in a pipeline $set is evaluated as an expression, so
	// caller-supplied values are wrapped in $literal: only the bidder-id
	// fallback may resolve as a field path.
	var bidderID any = bson.M{"$literal": bid.BidderID}
	if bid.BidderID == "" {
		bidderID = bson.M{"$ifNull": bson.A{"$bidder.bidder_id", nil}}
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "current_bid", Value: bid.Amount},
			{Key: "bid_time", Value: bid.Time},
			{Key: "bidder", Value: bson.D{
				{Key: "bidder_id", Value: bidderID},
				{Key: "name", Value: bson.M{"$literal": bid.Name}},
				{Key: "email", Value: bson.M{"$literal": bid.Email}},
				{Key: "phone", Value: bson.M{"$literal": bid.Phone}},
			}},
		}}},
	}

	var property models.Property
	err = s.collection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&property)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Predicate failed: distinguish a missing property from a losing bid.
		if _, findErr := s.FindByID(ctx, id); findErr != nil {
			return models.Property{}, findErr
		}
		return models.Property{}, apperrors.ErrInvalidBid
	}
	if err != nil {
		return models.Property{}, fmt.Errorf("apply bid to property %s: %w", id, err)
	}
	return property, nil
}

func (s *MongoPropertyStore) AddPhoto(ctx context.Context, id string, object string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.ErrInvalidPropertyID
	}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": objID},
		bson.M{"$push": bson.M{"photos": object}})
	if err != nil {
		return fmt.Errorf("add photo to property %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrPropertyNotFound
	}
	return nil
}
