package repository

import (
	"context"
	"time"

	"github.com/heritage-nest/server/internal/models"
)

// SearchFilter narrows the listing set; nil/empty members impose no
// constraint. Filters combine with logical AND.
type SearchFilter struct {
	Budget       *float64
	PropertyType string
	Location     string
	SearchText   string
}

// Bid is an accepted-bid candidate to be applied to a property.
type Bid struct {
	Amount   float64
	BidderID string
	Name     string
	Email    string
	Phone    string
	Time     time.Time
}

// UpdateResult reports how many documents a partial update touched.
type UpdateResult struct {
	MatchedCount  int64 `json:"matched_count"`
	ModifiedCount int64 `json:"modified_count"`
}

// UserStore is the credential store consumed by the account service.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Insert(ctx context.Context, user models.User) error
}

// PropertyStore is the document store consumed by the listing service.
// ApplyBid must be a single conditional write: the bid is accepted only if
// the store-level predicate amount > starting_bid AND amount > current_bid
// holds at write time.
type PropertyStore interface {
	FindAll(ctx context.Context) ([]models.Property, error)
	Search(ctx context.Context, filter SearchFilter) ([]models.Property, error)
	FindByID(ctx context.Context, id string) (models.Property, error)
	Insert(ctx context.Context, property models.Property) (string, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any, updatedAt time.Time) (UpdateResult, error)
	Delete(ctx context.Context, id string) error
	ApplyBid(ctx context.Context, id string, bid Bid) (models.Property, error)
	AddPhoto(ctx context.Context, id string, object string) error
}
