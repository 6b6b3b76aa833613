package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/heritage-nest/server/internal/apperrors"
	"github.com/heritage-nest/server/internal/repository"
	"github.com/stretchr/testify/require"
)

// fakePhotoStorage keeps photo objects in a map.
type fakePhotoStorage struct {
	objects map[string][]byte
}

func newFakePhotoStorage() *fakePhotoStorage {
	return &fakePhotoStorage{objects: make(map[string][]byte)}
}

func (f *fakePhotoStorage) Put(_ context.Context, object string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.objects[object] = data
	return nil
}

func (f *fakePhotoStorage) PresignedURL(_ context.Context, object string, expiry time.Duration) (string, error) {
	if _, ok := f.objects[object]; !ok {
		return "", fmt.Errorf("object %s not stored", object)
	}
	return fmt.Sprintf("http://photos.local/%s?expires=%s", object, expiry), nil
}

func newListingService() (*ListingService, *repository.MemoryPropertyStore, *fakePhotoStorage) {
	store := repository.NewMemoryPropertyStore()
	photos := newFakePhotoStorage()
	return NewListingService(store, photos), store, photos
}

func createListing(t *testing.T, service *ListingService, fields map[string]any) string {
	t.Helper()
	id, err := service.Create(context.Background(), fields)
	require.NoError(t, err)
	return id
}

func TestListingService_CreateStampsTimestamps(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newListingService()

	before := time.Now().UTC()
	id := createListing(t, service, map[string]any{
		"title":        "Colonial villa",
		"location":     "Savannah",
		"price":        350000.0,
		"starting_bid": 100.0,
		"garden":       true,
	})

	property, err := service.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Colonial villa", property.Title)
	require.Equal(t, property.CreatedAt, property.UpdatedAt)
	require.False(t, property.CreatedAt.Before(before))
	require.Equal(t, true, property.Extra["garden"], "unknown fields land in extra")
}

func TestListingService_CreateRejectsNonNumericPrice(t *testing.T) {
	service, _, _ := newListingService()

	_, err := service.Create(context.Background(), map[string]any{
		"title": "Bad listing",
		"price": "cheap",
	})
	require.ErrorIs(t, err, apperrors.ErrInvalidQuery)
}

func TestListingService_CreateBoundsExtraFields(t *testing.T) {
	service, _, _ := newListingService()

	fields := map[string]any{"title": "Overstuffed"}
	for i := 0; i < 20; i++ {
		fields[fmt.Sprintf("attr_%d", i)] = i
	}

	_, err := service.Create(context.Background(), fields)
	require.ErrorIs(t, err, apperrors.ErrInvalidQuery)
}

func TestListingService_BidScenario(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newListingService()

	id := createListing(t, service, map[string]any{
		"title":        "Auction house",
		"starting_bid": 100.0,
	})

	steps := []struct {
		amount   float64
		accepted bool
		want     float64
	}{
		{amount: 100, accepted: false},
		{amount: 150, accepted: true, want: 150},
		{amount: 120, accepted: false, want: 150},
		{amount: 200, accepted: true, want: 200},
	}

	var lastBidTime time.Time
	for _, step := range steps {
		property, err := service.PlaceBid(ctx, id, BidRequest{
			Amount:   step.amount,
			BidderID: "bidder-1",
			Name:     "Alice",
			Email:    "alice@example.com",
		})
		if !step.accepted {
			require.ErrorIs(t, err, apperrors.ErrInvalidBid, "bid of %v must be rejected", step.amount)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, step.want, property.CurrentBid)
		require.NotNil(t, property.BidTime)
		require.False(t, property.BidTime.Before(lastBidTime), "bid_time must advance")
		lastBidTime = *property.BidTime
	}

	final, err := service.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 200.0, final.CurrentBid)
}

func TestListingService_BidKeepsPreviousBidderIDWhenMissing(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newListingService()

	id := createListing(t, service, map[string]any{"starting_bid": 50.0})

	_, err := service.PlaceBid(ctx, id, BidRequest{Amount: 100, BidderID: "bidder-1", Name: "Alice"})
	require.NoError(t, err)

	property, err := service.PlaceBid(ctx, id, BidRequest{Amount: 150, Name: "Bob"})
	require.NoError(t, err)
	require.Equal(t, "bidder-1", property.Bidder.BidderID)
	require.Equal(t, "Bob", property.Bidder.Name)
}

func TestListingService_BidderFieldsStoredVerbatim(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newListingService()

	id := createListing(t, service, map[string]any{"starting_bid": 50.0, "price": 90000.0})

	// Dollar-prefixed input must land as the exact supplied bytes, never be
	// resolved against the document's own fields.
	property, err := service.PlaceBid(ctx, id, BidRequest{
		Amount:   100,
		BidderID: "$$ROOT",
		Name:     "$price",
		Email:    "$bidder.email",
		Phone:    "$0123",
	})
	require.NoError(t, err)
	require.Equal(t, "$$ROOT", property.Bidder.BidderID)
	require.Equal(t, "$price", property.Bidder.Name)
	require.Equal(t, "$bidder.email", property.Bidder.Email)
	require.Equal(t, "$0123", property.Bidder.Phone)
}

func TestListingService_BidErrors(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newListingService()

	id := createListing(t, service, map[string]any{"starting_bid": 50.0})

	tests := []struct {
		name    string
		id      string
		amount  float64
		wantErr error
	}{
		{name: "non_positive_amount", id: id, amount: 0, wantErr: apperrors.ErrInvalidBid},
		{name: "missing_property", id: "64b000000000000000000000", amount: 100, wantErr: apperrors.ErrPropertyNotFound},
		{name: "malformed_id", id: "not-hex", amount: 100, wantErr: apperrors.ErrInvalidPropertyID},
		// A losing amount must not shadow the id checks.
		{name: "non_positive_amount_missing_property", id: "64b000000000000000000000", amount: 0, wantErr: apperrors.ErrPropertyNotFound},
		{name: "non_positive_amount_malformed_id", id: "not-hex", amount: 0, wantErr: apperrors.ErrInvalidPropertyID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.PlaceBid(ctx, tt.id, BidRequest{Amount: tt.amount})
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestListingService_UpdateMergesOnlySuppliedFields(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newListingService()

	id := createListing(t, service, map[string]any{
		"title":        "Townhouse",
		"description":  "Two floors",
		"location":     "Boston",
		"price":        200000.0,
		"starting_bid": 100.0,
	})

	created, err := service.GetByID(ctx, id)
	require.NoError(t, err)

	result, err := service.Update(ctx, id, map[string]any{
		"price":      180000.0,
		"updated_at": "1999-01-01T00:00:00Z", // client value must not win
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), result.MatchedCount)

	updated, err := service.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 180000.0, updated.Price)
	require.Equal(t, "Townhouse", updated.Title, "unmentioned fields keep prior values")
	require.Equal(t, "Two floors", updated.Description)
	require.False(t, updated.UpdatedAt.Before(created.UpdatedAt), "updated_at must reflect the server clock")
	require.WithinDuration(t, time.Now().UTC(), updated.UpdatedAt, time.Minute)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestListingService_UpdateCannotTouchAuctionState(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newListingService()

	id := createListing(t, service, map[string]any{"starting_bid": 100.0})
	_, err := service.PlaceBid(ctx, id, BidRequest{Amount: 150, BidderID: "bidder-1"})
	require.NoError(t, err)

	_, err = service.Update(ctx, id, map[string]any{"current_bid": 1.0, "title": "Renamed"})
	require.NoError(t, err)

	property, err := service.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 150.0, property.CurrentBid)
	require.Equal(t, "Renamed", property.Title)
}

func TestListingService_UpdateMissingProperty(t *testing.T) {
	service, _, _ := newListingService()

	_, err := service.Update(context.Background(), "64b000000000000000000000", map[string]any{"title": "x"})
	require.ErrorIs(t, err, apperrors.ErrPropertyNotFound)
}

func TestListingService_DeleteIsIdempotentFailure(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newListingService()

	id := createListing(t, service, map[string]any{"title": "Short-lived"})
	require.NoError(t, service.Delete(ctx, id))
	require.ErrorIs(t, service.Delete(ctx, id), apperrors.ErrPropertyNotFound)
	require.ErrorIs(t, service.Delete(ctx, id), apperrors.ErrPropertyNotFound)
}

func TestListingService_Search(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newListingService()

	createListing(t, service, map[string]any{
		"title": "Beach bungalow", "location": "Miami", "property_type": "bungalow", "price": 150000.0,
	})
	createListing(t, service, map[string]any{
		"title": "City flat", "location": "Boston", "property_type": "apartment", "price": 300000.0,
	})
	createListing(t, service, map[string]any{
		"title": "Country cottage", "location": "Boston", "property_type": "cottage", "price": 120000.0,
	})

	t.Run("no_filters_matches_list_all", func(t *testing.T) {
		all, err := service.ListAll(ctx)
		require.NoError(t, err)
		found, err := service.Search(ctx, SearchParams{})
		require.NoError(t, err)
		require.Equal(t, all, found)
	})

	t.Run("budget_upper_bound", func(t *testing.T) {
		found, err := service.Search(ctx, SearchParams{Budget: "160000"})
		require.NoError(t, err)
		require.Len(t, found, 2)
	})

	t.Run("filters_combine_with_and", func(t *testing.T) {
		found, err := service.Search(ctx, SearchParams{Budget: "160000", Location: "Boston"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		require.Equal(t, "Country cottage", found[0].Title)
	})

	t.Run("property_type_exact_match", func(t *testing.T) {
		found, err := service.Search(ctx, SearchParams{PropertyType: "apartment"})
		require.NoError(t, err)
		require.Len(t, found, 1)
	})

	t.Run("text_search", func(t *testing.T) {
		found, err := service.Search(ctx, SearchParams{SearchText: "cottage"})
		require.NoError(t, err)
		require.Len(t, found, 1)
	})

	t.Run("empty_result_is_not_an_error", func(t *testing.T) {
		found, err := service.Search(ctx, SearchParams{PropertyType: "castle"})
		require.NoError(t, err)
		require.Empty(t, found)
	})

	t.Run("non_numeric_budget", func(t *testing.T) {
		_, err := service.Search(ctx, SearchParams{Budget: "cheap"})
		require.ErrorIs(t, err, apperrors.ErrInvalidQuery)
	})
}

func TestListingService_Photos(t *testing.T) {
	ctx := context.Background()
	service, _, photos := newListingService()

	id := createListing(t, service, map[string]any{"title": "Photogenic"})

	object, err := service.UploadPhoto(ctx, id, "front.jpg", "image/jpeg",
		bytes.NewReader([]byte("jpeg-bytes")), 10)
	require.NoError(t, err)
	require.Contains(t, photos.objects, object)

	url, err := service.PhotoURL(ctx, id, object)
	require.NoError(t, err)
	require.NotEmpty(t, url)

	_, err = service.PhotoURL(ctx, id, id+"/unknown.jpg")
	require.ErrorIs(t, err, apperrors.ErrPhotoNotFound)

	_, err = service.UploadPhoto(ctx, "64b000000000000000000000", "x.jpg", "image/jpeg",
		bytes.NewReader(nil), 0)
	require.ErrorIs(t, err, apperrors.ErrPropertyNotFound)
}
