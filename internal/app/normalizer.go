package app

import (
	"travclan_rates/internal/domain"
)

// Normalize fans a compact record out into the five relational record sets
// for one check-in date. Pure: no IO, no side effects; callers may run it
// concurrently for different (hotel, date) pairs.
func Normalize(c domain.CompactHotel, checkInDate string) domain.NormalizedSet {
	hotel := domain.HotelRecord{
		HotelID:      c.HotelID,
		Name:         c.Name,
		StarRating:   c.StarRating,
		ChainName:    c.ChainName,
		AddressLine1: c.Location.Address,
		City:         c.Location.City,
		Country:      c.Location.Country,
	}
	if c.Location.GeoCode != nil {
		lat, long := c.Location.GeoCode.Lat, c.Location.GeoCode.Long
		hotel.Latitude = &lat
		hotel.Longitude = &long
	}
	if len(c.Photos) > 0 {
		hotel.PrimaryImageURL = &c.Photos[0]
	}

	// Min/max over every final rate. Currency is "last rate observed":
	// a mixed-currency payload yields a single arbitrary label. Known
	// simplification carried over from the source feed's behavior.
	var minRate, maxRate *float64
	var currency *string
	for _, room := range c.RoomTypes {
		for i := range room.Rates {
			rate := &room.Rates[i]
			if minRate == nil || rate.FinalRate < *minRate {
				v := rate.FinalRate
				minRate = &v
			}
			if maxRate == nil || rate.FinalRate > *maxRate {
				v := rate.FinalRate
				maxRate = &v
			}
			cur := rate.Currency
			currency = &cur
		}
	}

	daily := domain.DailyRateRecord{
		HotelID:        c.HotelID,
		CheckInDate:    checkInDate,
		MinRate:        minRate,
		MaxRate:        maxRate,
		Currency:       currency,
		RoomTypesCount: len(c.RoomTypes),
	}

	hotel.MinPrice = minRate
	hotel.MaxPrice = maxRate
	hotel.Currency = currency

	roomTypes := make([]domain.RoomTypeRecord, 0, len(c.RoomTypes))
	for _, room := range c.RoomTypes {
		roomTypes = append(roomTypes, domain.RoomTypeRecord{
			HotelID: c.HotelID,
			RoomID:  room.ID,
			Name:    room.Name,
		})
	}

	var roomRates []domain.RoomRateRecord
	for _, room := range c.RoomTypes {
		for _, rate := range room.Rates {
			roomRates = append(roomRates, domain.RoomRateRecord{
				HotelID:      c.HotelID,
				RoomID:       room.ID,
				CheckInDate:  checkInDate,
				RateID:       rate.ID,
				BaseRate:     rate.BaseRate,
				FinalRate:    rate.FinalRate,
				Currency:     rate.Currency,
				BoardBasis:   rate.BoardBasis,
				IsRefundable: rate.Refundable,
			})
		}
	}

	// Hotel-level photos first with a contiguous 0-based order, then each
	// room's images with the order restarting at 0 per room.
	var images []domain.ImageRecord
	for i, url := range c.Photos {
		images = append(images, domain.ImageRecord{
			HotelID:    c.HotelID,
			ImageURL:   url,
			ImageOrder: i,
		})
	}
	for _, room := range c.RoomTypes {
		roomID := room.ID
		for i, url := range room.Images {
			images = append(images, domain.ImageRecord{
				HotelID:    c.HotelID,
				RoomID:     &roomID,
				ImageURL:   url,
				ImageOrder: i,
			})
		}
	}

	return domain.NormalizedSet{
		Hotel:     hotel,
		DailyRate: daily,
		RoomTypes: roomTypes,
		RoomRates: roomRates,
		Images:    images,
	}
}
