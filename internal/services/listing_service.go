package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/heritage-nest/server/internal/apperrors"
	"github.com/heritage-nest/server/internal/models"
	"github.com/heritage-nest/server/internal/repository"
)

// PhotoStorage is the object store behind listing photos.
type PhotoStorage interface {
	Put(ctx context.Context, object string, reader io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, object string, expiry time.Duration) (string, error)
}

// PhotoURLExpiry bounds how long a presigned photo link stays valid.
const PhotoURLExpiry = 10 * time.Minute

// ListingService handles property CRUD, filtered search and bidding.
type ListingService struct {
	properties repository.PropertyStore
	photos     PhotoStorage
}

func NewListingService(properties repository.PropertyStore, photos PhotoStorage) *ListingService {
	return &ListingService{properties: properties, photos: photos}
}

func (s *ListingService) ListAll(ctx context.Context) ([]models.Property, error) {
	return s.properties.FindAll(ctx)
}

// SearchParams carries raw query-string filters; empty strings impose no
// constraint.
type SearchParams struct {
	Budget       string
	PropertyType string
	Location     string
	SearchText   string
}

// Search narrows the listing set by every supplied filter. A non-numeric
// budget is rejected up front instead of corrupting the price predicate.
func (s *ListingService) Search(ctx context.Context, params SearchParams) ([]models.Property, error) {
	filter := repository.SearchFilter{
		PropertyType: params.PropertyType,
		Location:     params.Location,
		SearchText:   params.SearchText,
	}
	if params.Budget != "" {
		budget, err := strconv.ParseFloat(params.Budget, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: budget must be numeric", apperrors.ErrInvalidQuery)
		}
		filter.Budget = &budget
	}
	return s.properties.Search(ctx, filter)
}

func (s *ListingService) GetByID(ctx context.Context, id string) (models.Property, error) {
	return s.properties.FindByID(ctx, id)
}

// updatableFields are the typed listing fields a caller may set directly.
// Anything else lands in the bounded extra map; auction state and
// timestamps are only ever written server-side.
var updatableFields = map[string]bool{
	"title":         true,
	"description":   true,
	"location":      true,
	"property_type": true,
	"price":         true,
	"starting_bid":  true,
}

var protectedFields = map[string]bool{
	"_id":         true,
	"id":          true,
	"current_bid": true,
	"bidder":      true,
	"bid_time":    true,
	"photos":      true,
	"created_at":  true,
	"updated_at":  true,
}

// Create inserts a new listing with created_at and updated_at stamped to the
// same instant.
func (s *ListingService) Create(ctx context.Context, fields map[string]any) (string, error) {
	property, err := buildProperty(fields)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	property.CreatedAt = now
	property.UpdatedAt = now
	return s.properties.Insert(ctx, property)
}

func buildProperty(fields map[string]any) (models.Property, error) {
	var property models.Property
	for key, value := range fields {
		if protectedFields[key] {
			continue
		}
		switch key {
		case "title":
			property.Title = asString(value)
		case "description":
			property.Description = asString(value)
		case "location":
			property.Location = asString(value)
		case "property_type":
			property.PropertyType = asString(value)
		case "price":
			number, err := asNumber(value)
			if err != nil {
				return models.Property{}, fmt.Errorf("%w: price must be numeric", apperrors.ErrInvalidQuery)
			}
			property.Price = number
		case "starting_bid":
			number, err := asNumber(value)
			if err != nil {
				return models.Property{}, fmt.Errorf("%w: starting_bid must be numeric", apperrors.ErrInvalidQuery)
			}
			property.StartingBid = number
		default:
			if property.Extra == nil {
				property.Extra = make(map[string]any)
			}
			if len(property.Extra) >= models.MaxExtraFields {
				return models.Property{}, fmt.Errorf("%w: too many extra fields", apperrors.ErrInvalidQuery)
			}
			property.Extra[key] = value
		}
	}
	return property, nil
}

// Update merges only the supplied fields into the listing. updated_at is
// re-stamped server-side regardless of what the caller sent.
func (s *ListingService) Update(ctx context.Context, id string, fields map[string]any) (repository.UpdateResult, error) {
	set := make(map[string]any)
	extras := 0
	for key, value := range fields {
		if protectedFields[key] {
			continue
		}
		if updatableFields[key] {
			if key == "price" || key == "starting_bid" {
				number, err := asNumber(value)
				if err != nil {
					return repository.UpdateResult{}, fmt.Errorf("%w: %s must be numeric", apperrors.ErrInvalidQuery, key)
				}
				set[key] = number
				continue
			}
			set[key] = value
			continue
		}
		extras++
		if extras > models.MaxExtraFields {
			return repository.UpdateResult{}, fmt.Errorf("%w: too many extra fields", apperrors.ErrInvalidQuery)
		}
		set["extra."+key] = value
	}

	return s.properties.UpdateFields(ctx, id, set, time.Now().UTC())
}

func (s *ListingService) Delete(ctx context.Context, id string) error {
	return s.properties.Delete(ctx, id)
}

// BidRequest is a candidate bid on a listing.
type BidRequest struct {
	Amount   float64
	BidderID string
	Name     string
	Email    string
	Phone    string
}

// PlaceBid applies a bid through the store's conditional write: it is
// accepted only if the amount strictly exceeds both the floor and the
// current high bid at write time. The store also validates the id and the
// property's existence, so a losing amount never shadows a 404.
func (s *ListingService) PlaceBid(ctx context.Context, id string, req BidRequest) (models.Property, error) {
	bid := repository.Bid{
		Amount:   req.Amount,
		BidderID: req.BidderID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Time:     time.Now().UTC(),
	}
	return s.properties.ApplyBid(ctx, id, bid)
}

// UploadPhoto stores the photo object and records its name on the listing.
func (s *ListingService) UploadPhoto(ctx context.Context, id, filename, contentType string, reader io.Reader, size int64) (string, error) {
	if _, err := s.properties.FindByID(ctx, id); err != nil {
		return "", err
	}

	object := fmt.Sprintf("%s/%s_%s", id, uuid.NewString(), filename)
	if err := s.photos.Put(ctx, object, reader, size, contentType); err != nil {
		return "", fmt.Errorf("store photo: %w", err)
	}
	if err := s.properties.AddPhoto(ctx, id, object); err != nil {
		return "", err
	}
	return object, nil
}

// PhotoURL returns a short-lived presigned link for a photo recorded on the
// listing.
func (s *ListingService) PhotoURL(ctx context.Context, id, object string) (string, error) {
	property, err := s.properties.FindByID(ctx, id)
	if err != nil {
		return "", err
	}

	recorded := false
	for _, photo := range property.Photos {
		if photo == object {
			recorded = true
			break
		}
	}
	if !recorded {
		return "", apperrors.ErrPhotoNotFound
	}

	return s.photos.PresignedURL(ctx, object, PhotoURLExpiry)
}

func asString(value any) string {
	s, _ := value.(string)
	return s
}

func asNumber(value any) (float64, error) {
	switch n := value.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("not a number: %v", value)
	}
}
