package domain

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// BookingClient fetches one raw booking-info response per (hotel, date).
type BookingClient interface {
	FetchBookingInfo(ctx context.Context, hotelID, checkIn, checkOut string) (map[string]any, error)
}

// RateRepository is the persistence boundary for the normalized tables and
// the document-mode snapshot table.
type RateRepository interface {
	// Write paths
	UpsertHotel(ctx context.Context, h HotelRecord) error
	UpsertDailyRate(ctx context.Context, d DailyRateRecord) error
	InsertRoomTypes(ctx context.Context, rts []RoomTypeRecord) error
	RoomTypeIDs(ctx context.Context, hotelID string, roomIDs []string) (map[string]int64, error)
	ReplaceRoomRates(ctx context.Context, hotelID, checkInDate string, rows []ResolvedRoomRate) error
	ExistingImageKeys(ctx context.Context, hotelID string) (map[string]struct{}, error)
	InsertImages(ctx context.Context, rows []ResolvedImage) error
	UpsertSnapshot(ctx context.Context, hotelID, checkInDate string, doc []byte) error
	LogMiss(ctx context.Context, hotelID, checkInDate string, status int, reason string) error
	RecomputeHotelAggregates(ctx context.Context, hotelID string) error

	// Read paths
	GetHotel(ctx context.Context, hotelID string) (HotelRecord, error)
	ListDailyRates(ctx context.Context, hotelID string, limit int) ([]DailyRateRecord, error)
	ListRoomRates(ctx context.Context, hotelID, checkInDate string) ([]RoomRateView, error)

	// Maintenance paths
	ListHotelsMissingChain(ctx context.Context) ([]HotelRef, error)
	UpdateChainName(ctx context.Context, hotelID, chainName string) error
	ListAllImages(ctx context.Context) ([]StoredImage, error)
	DeleteImages(ctx context.Context, ids []int64) error
}

// ResolvedRoomRate is a RoomRateRecord whose natural room_id has been
// resolved to the storage-assigned room_types surrogate id.
type ResolvedRoomRate struct {
	HotelID      string
	RoomTypeID   int64
	CheckInDate  string
	RateID       string
	BaseRate     float64
	FinalRate    float64
	Currency     string
	BoardBasis   *string
	IsRefundable bool
}

// ResolvedImage is an ImageRecord with the surrogate id attached
// (nil for hotel-level photos).
type ResolvedImage struct {
	HotelID    string
	RoomTypeID *int64
	ImageURL   string
	ImageOrder int
}

// RoomRateView is a room-rate row joined with its room type for API reads.
type RoomRateView struct {
	RoomID       string
	RoomName     string
	RateID       string
	BaseRate     float64
	FinalRate    float64
	Currency     string
	BoardBasis   *string
	IsRefundable bool
}

// HotelRef identifies a stored hotel when listing backfill candidates.
type HotelRef struct {
	HotelID string
	Name    string
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ArtifactStore keeps the per-(hotel,date) compact-record JSON files that
// form the local audit trail.
type ArtifactStore interface {
	Write(hotelID, checkInDate string, v any) error
}
