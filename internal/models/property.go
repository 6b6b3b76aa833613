package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxExtraFields bounds the open-ended attribute map on a listing.
const MaxExtraFields = 16

// Bidder identifies the holder of the current high bid.
type Bidder struct {
	BidderID string `bson:"bidder_id,omitempty" json:"bidder_id,omitempty"`
	Name     string `bson:"name,omitempty" json:"name,omitempty"`
	Email    string `bson:"email,omitempty" json:"email,omitempty"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// Property is a listing under auction. StartingBid is the floor fixed at
// creation; CurrentBid only ever moves strictly upward.
type Property struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Location     string             `bson:"location,omitempty" json:"location,omitempty"`
	PropertyType string             `bson:"property_type,omitempty" json:"property_type,omitempty"`
	Price        float64            `bson:"price" json:"price"`
	StartingBid  float64            `bson:"starting_bid" json:"starting_bid"`
	CurrentBid   float64            `bson:"current_bid,omitempty" json:"current_bid,omitempty"`
	Bidder       *Bidder            `bson:"bidder,omitempty" json:"bidder,omitempty"`
	BidTime      *time.Time         `bson:"bid_time,omitempty" json:"bid_time,omitempty"`
	Photos       []string           `bson:"photos,omitempty" json:"photos,omitempty"`
	Extra        map[string]any     `bson:"extra,omitempty" json:"extra,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
