package domain

import "strconv"

// NormalizedSet is the fan-out of one compact record plus its check-in date
// into the five relational record collections.
type NormalizedSet struct {
	Hotel     HotelRecord
	DailyRate DailyRateRecord
	RoomTypes []RoomTypeRecord
	RoomRates []RoomRateRecord
	Images    []ImageRecord
}

// HotelRecord is one logical row per hotel, keyed by hotel_id alone.
// MinPrice/MaxPrice/Currency are recomputed per date; how they land on the
// shared row is decided by the sink's aggregate policy.
type HotelRecord struct {
	HotelID         string
	Name            string
	AddressLine1    *string
	City            *string
	Country         *string
	Latitude        *string
	Longitude       *string
	ChainName       *string
	StarRating      *string
	MinPrice        *float64
	MaxPrice        *float64
	Currency        *string
	PrimaryImageURL *string
}

// DailyRateRecord is keyed by (hotel_id, check_in_date).
type DailyRateRecord struct {
	HotelID        string
	CheckInDate    string
	MinRate        *float64
	MaxRate        *float64
	Currency       *string
	RoomTypesCount int
}

// RoomTypeRecord is keyed by (hotel_id, room_id); created once, never
// overwritten. Storage assigns the surrogate id that rates/images reference.
type RoomTypeRecord struct {
	HotelID string
	RoomID  string
	Name    string
}

// RoomRateRecord is scoped to (hotel_id, check_in_date); the whole scope is
// replaced on every run so stale rates never survive a refresh.
type RoomRateRecord struct {
	HotelID      string
	RoomID       string
	CheckInDate  string
	RateID       string
	BaseRate     float64
	FinalRate    float64
	Currency     string
	BoardBasis   *string
	IsRefundable bool
}

// ImageRecord is append-only. RoomID is nil for hotel-level photos;
// ImageOrder is 0-based and restarts per room.
type ImageRecord struct {
	HotelID    string
	RoomID     *string
	ImageURL   string
	ImageOrder int
}

// StoredImage is an image row as read back from storage, used by the
// duplicate cleanup pass.
type StoredImage struct {
	ID         int64
	HotelID    string
	RoomTypeID *int64
	ImageURL   string
}

// ImageKey is the client-side uniqueness key for hotel_images rows:
// (hotel_id, room_type_id, image_url), with an empty segment for
// hotel-level photos.
func ImageKey(hotelID string, roomTypeID *int64, url string) string {
	id := ""
	if roomTypeID != nil {
		id = strconv.FormatInt(*roomTypeID, 10)
	}
	return hotelID + "|" + id + "|" + url
}
