package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/heritage-nest/server/internal/apperrors"
	"github.com/heritage-nest/server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUserStore is a concurrency-safe in-memory UserStore used by tests.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]models.User // key: email
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]models.User)}
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[email]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (s *MemoryUserStore) Insert(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Email]; exists {
		return apperrors.ErrDuplicateAccount
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.Email] = user
	return nil
}

// MemoryPropertyStore is a concurrency-safe in-memory PropertyStore used by
// tests. Its ApplyBid checks the monotonicity predicate under the same lock
// as the write, mirroring the conditional-write semantics of the Mongo store.
type MemoryPropertyStore struct {
	mu         sync.RWMutex
	properties map[string]models.Property // key: hex id
	order      []string
}

func NewMemoryPropertyStore() *MemoryPropertyStore {
	return &MemoryPropertyStore{properties: make(map[string]models.Property)}
}

func (s *MemoryPropertyStore) FindAll(_ context.Context) ([]models.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	properties := make([]models.Property, 0, len(s.order))
	for _, id := range s.order {
		properties = append(properties, s.properties[id])
	}
	return properties, nil
}

func (s *MemoryPropertyStore) Search(_ context.Context, filter SearchFilter) ([]models.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.Property, 0)
	for _, id := range s.order {
		p := s.properties[id]
		if filter.SearchText != "" && !matchesText(p, filter.SearchText) {
			continue
		}
		if filter.Budget != nil && p.Price > *filter.Budget {
			continue
		}
		if filter.PropertyType != "" && p.PropertyType != filter.PropertyType {
			continue
		}
		if filter.Location != "" && p.Location != filter.Location {
			continue
		}
		matched = append(matched, p)
	}
	return matched, nil
}

func matchesText(p models.Property, text string) bool {
	needle := strings.ToLower(text)
	for _, field := range []string{p.Title, p.Description, p.Location} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (s *MemoryPropertyStore) FindByID(_ context.Context, id string) (models.Property, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return models.Property{}, apperrors.ErrInvalidPropertyID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	property, ok := s.properties[id]
	if !ok {
		return models.Property{}, apperrors.ErrPropertyNotFound
	}
	return property, nil
}

func (s *MemoryPropertyStore) Insert(_ context.Context, property models.Property) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if property.ID.IsZero() {
		property.ID = primitive.NewObjectID()
	}
	id := property.ID.Hex()
	s.properties[id] = property
	s.order = append(s.order, id)
	return id, nil
}

func (s *MemoryPropertyStore) UpdateFields(_ context.Context, id string, fields map[string]any, updatedAt time.Time) (UpdateResult, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return UpdateResult{}, apperrors.ErrInvalidPropertyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	property, ok := s.properties[id]
	if !ok {
		return UpdateResult{}, apperrors.ErrPropertyNotFound
	}

	for key, value := range fields {
		applyField(&property, key, value)
	}
	property.UpdatedAt = updatedAt
	s.properties[id] = property
	return UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func applyField(p *models.Property, key string, value any) {
	if rest, ok := strings.CutPrefix(key, "extra."); ok {
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[rest] = value
		return
	}
	switch key {
	case "title":
		p.Title, _ = value.(string)
	case "description":
		p.Description, _ = value.(string)
	case "location":
		p.Location, _ = value.(string)
	case "property_type":
		p.PropertyType, _ = value.(string)
	case "price":
		p.Price, _ = value.(float64)
	case "starting_bid":
		p.StartingBid, _ = value.(float64)
	}
}

func (s *MemoryPropertyStore) Delete(_ context.Context, id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return apperrors.ErrInvalidPropertyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.properties[id]; !ok {
		return apperrors.ErrPropertyNotFound
	}
	delete(s.properties, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryPropertyStore) ApplyBid(_ context.Context, id string, bid Bid) (models.Property, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return models.Property{}, apperrors.ErrInvalidPropertyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	property, ok := s.properties[id]
	if !ok {
		return models.Property{}, apperrors.ErrPropertyNotFound
	}
	if bid.Amount <= property.StartingBid || bid.Amount <= property.CurrentBid {
		return models.Property{}, apperrors.ErrInvalidBid
	}

	bidderID := bid.BidderID
	if bidderID == "" && property.Bidder != nil {
		bidderID = property.Bidder.BidderID
	}
	property.CurrentBid = bid.Amount
	bidTime := bid.Time
	property.BidTime = &bidTime
	property.Bidder = &models.Bidder{
		BidderID: bidderID,
		Name:     bid.Name,
		Email:    bid.Email,
		Phone:    bid.Phone,
	}
	s.properties[id] = property
	return property, nil
}

func (s *MemoryPropertyStore) AddPhoto(_ context.Context, id string, object string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return apperrors.ErrInvalidPropertyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	property, ok := s.properties[id]
	if !ok {
		return apperrors.ErrPropertyNotFound
	}
	property.Photos = append(property.Photos, object)
	s.properties[id] = property
	return nil
}
