package domain

// CompactHotel is the bounded summary of one booking-info response:
// hotel identity/location, up to 10 photos, up to 5 room types each
// carrying 1-2 applicable rates and up to 3 images. It has no persisted
// identity; a fresh value is produced per (hotel, date) fetch.
type CompactHotel struct {
	HotelID    string            `json:"hotelId"`
	Name       string            `json:"name"`
	StarRating *string           `json:"starRating,omitempty"`
	ChainName  *string           `json:"chainName,omitempty"`
	Location   Location          `json:"location"`
	Photos     []string          `json:"photos"`
	RoomTypes  []CompactRoomType `json:"roomTypes"`
}

type Location struct {
	Address *string  `json:"address,omitempty"`
	City    *string  `json:"city,omitempty"`
	Country *string  `json:"country,omitempty"`
	GeoCode *GeoCode `json:"geoCode,omitempty"`
}

type GeoCode struct {
	Lat  string `json:"lat"`
	Long string `json:"long"`
}

type CompactRoomType struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Rates  []CompactRate `json:"rates"`
	Images []string      `json:"images,omitempty"`
}

type CompactRate struct {
	ID         string  `json:"id"`
	BaseRate   float64 `json:"baseRate"`
	FinalRate  float64 `json:"finalRate"`
	Currency   string  `json:"currency"`
	Refundable bool    `json:"refundable"`
	BoardBasis *string `json:"boardBasis,omitempty"`
}
