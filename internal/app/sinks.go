package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"travclan_rates/internal/domain"
)

// Sink stores one compact record for one (hotel, date). Two implementations:
// the normalized multi-table layout and the single JSON-column document mode.
type Sink interface {
	Store(ctx context.Context, hotelID, checkInDate string, c *domain.CompactHotel) error
}

// AggregatePolicy decides how per-date min/max/currency land on the shared
// hotel row.
type AggregatePolicy int

const (
	// LastDateWins upserts the hotel row with this date's aggregates: the
	// most recently processed date overwrites whatever was there. Matches
	// the upstream feed's original behavior.
	LastDateWins AggregatePolicy = iota
	// AcrossDates recomputes the hotel row's min/max from every stored
	// daily rate after the daily upsert.
	AcrossDates
)

func ParseAggregatePolicy(s string) AggregatePolicy {
	if s == "across_dates" {
		return AcrossDates
	}
	return LastDateWins
}

type NormalizedSink struct {
	repo   domain.RateRepository
	policy AggregatePolicy
}

func NewNormalizedSink(repo domain.RateRepository, policy AggregatePolicy) *NormalizedSink {
	return &NormalizedSink{repo: repo, policy: policy}
}

// Store writes the five record sets in dependency order: hotel, daily rate
// and room types first, then room rates and images, which need the room-type
// surrogate ids to exist. A failure on a required table aborts the unit
// naming the table; a rate or image whose room type cannot be resolved is
// skipped with a warning; an image insert failure is logged but never fails
// the unit.
func (s *NormalizedSink) Store(ctx context.Context, hotelID, checkInDate string, c *domain.CompactHotel) error {
	set := Normalize(*c, checkInDate)

	if err := s.repo.UpsertHotel(ctx, set.Hotel); err != nil {
		return fmt.Errorf("upsert hotels: %w", err)
	}
	if err := s.repo.UpsertDailyRate(ctx, set.DailyRate); err != nil {
		return fmt.Errorf("upsert hotel_daily_rates: %w", err)
	}
	if len(set.RoomTypes) > 0 {
		if err := s.repo.InsertRoomTypes(ctx, set.RoomTypes); err != nil {
			return fmt.Errorf("insert room_types: %w", err)
		}
	}

	if s.policy == AcrossDates {
		if err := s.repo.RecomputeHotelAggregates(ctx, hotelID); err != nil {
			return fmt.Errorf("recompute hotel aggregates: %w", err)
		}
	}

	roomIDs := make([]string, 0, len(set.RoomTypes))
	for _, rt := range set.RoomTypes {
		roomIDs = append(roomIDs, rt.RoomID)
	}
	typeIDs := map[string]int64{}
	if len(roomIDs) > 0 {
		var err error
		typeIDs, err = s.repo.RoomTypeIDs(ctx, hotelID, roomIDs)
		if err != nil {
			return fmt.Errorf("resolve room type ids: %w", err)
		}
	}

	rates := make([]domain.ResolvedRoomRate, 0, len(set.RoomRates))
	for _, rr := range set.RoomRates {
		typeID, ok := typeIDs[rr.RoomID]
		if !ok {
			log.Warn().Str("hotel", hotelID).Str("room", rr.RoomID).Str("rate", rr.RateID).
				Msg("room type not found, skipping rate")
			continue
		}
		rates = append(rates, domain.ResolvedRoomRate{
			HotelID:      rr.HotelID,
			RoomTypeID:   typeID,
			CheckInDate:  rr.CheckInDate,
			RateID:       rr.RateID,
			BaseRate:     rr.BaseRate,
			FinalRate:    rr.FinalRate,
			Currency:     rr.Currency,
			BoardBasis:   rr.BoardBasis,
			IsRefundable: rr.IsRefundable,
		})
	}
	// Replace even when empty: stale rates for this date must never survive.
	if err := s.repo.ReplaceRoomRates(ctx, hotelID, checkInDate, rates); err != nil {
		return fmt.Errorf("replace room_rates: %w", err)
	}

	if len(set.Images) > 0 {
		if err := s.storeImages(ctx, hotelID, set.Images, typeIDs); err != nil {
			// Images are best-effort.
			log.Warn().Err(err).Str("hotel", hotelID).Msg("image insert failed")
		}
	}
	return nil
}

func (s *NormalizedSink) storeImages(ctx context.Context, hotelID string, images []domain.ImageRecord, typeIDs map[string]int64) error {
	existing, err := s.repo.ExistingImageKeys(ctx, hotelID)
	if err != nil {
		return fmt.Errorf("fetch existing image keys: %w", err)
	}

	rows := make([]domain.ResolvedImage, 0, len(images))
	for _, img := range images {
		var typeID *int64
		if img.RoomID != nil {
			id, ok := typeIDs[*img.RoomID]
			if !ok {
				log.Warn().Str("hotel", hotelID).Str("room", *img.RoomID).
					Msg("room type not found, skipping image")
				continue
			}
			typeID = &id
		}
		if _, dup := existing[domain.ImageKey(hotelID, typeID, img.ImageURL)]; dup {
			continue
		}
		rows = append(rows, domain.ResolvedImage{
			HotelID:    img.HotelID,
			RoomTypeID: typeID,
			ImageURL:   img.ImageURL,
			ImageOrder: img.ImageOrder,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return s.repo.InsertImages(ctx, rows)
}

// DocumentSink persists the compact record as one JSON column per
// (hotel, date). The normalized sink supersedes it; it stays as an alternate
// output mode.
type DocumentSink struct {
	repo domain.RateRepository
}

func NewDocumentSink(repo domain.RateRepository) *DocumentSink {
	return &DocumentSink{repo: repo}
}

func (s *DocumentSink) Store(ctx context.Context, hotelID, checkInDate string, c *domain.CompactHotel) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal compact record: %w", err)
	}
	if err := s.repo.UpsertSnapshot(ctx, hotelID, checkInDate, doc); err != nil {
		return fmt.Errorf("upsert hotel_snapshots: %w", err)
	}
	return nil
}
