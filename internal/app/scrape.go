package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"travclan_rates/internal/adapters/observability"
	"travclan_rates/internal/domain"
)

type ScrapeService struct {
	client    domain.BookingClient
	sink      Sink
	repo      domain.RateRepository
	artifacts domain.ArtifactStore
	cache     domain.Cache
}

func NewScrapeService(client domain.BookingClient, sink Sink, repo domain.RateRepository, artifacts domain.ArtifactStore, cache domain.Cache) *ScrapeService {
	return &ScrapeService{client: client, sink: sink, repo: repo, artifacts: artifacts, cache: cache}
}

// ErrSkipped marks a date whose payload compacted to nothing. Counted and
// logged distinctly from hard failures; never aborts sibling dates.
var ErrSkipped = errors.New("no usable payload")

// ScrapeDate runs the full pipeline for one (hotel, check-in date) unit:
// fetch, compact, write the file artifact, store via the configured sink.
func (s *ScrapeService) ScrapeDate(ctx context.Context, hotelID, checkIn, checkOut string) error {
	raw, err := s.client.FetchBookingInfo(ctx, hotelID, checkIn, checkOut)
	if err != nil {
		observability.ObserveScrape("error")
		return fmt.Errorf("fetch %s/%s: %w", hotelID, checkIn, err)
	}

	compacted := Compact(raw)
	if compacted == nil {
		observability.ObserveScrape("skipped")
		log.Info().Str("hotel", hotelID).Str("check_in", checkIn).Msg("no valid data, skipping")
		if s.repo != nil {
			_ = s.repo.LogMiss(ctx, hotelID, checkIn, 200, "empty payload")
		}
		return ErrSkipped
	}

	if s.artifacts != nil {
		if err := s.artifacts.Write(hotelID, checkIn, compacted); err != nil {
			// The local audit file is best-effort; the sink write decides
			// the unit's fate.
			log.Warn().Err(err).Str("hotel", hotelID).Str("check_in", checkIn).Msg("artifact write failed")
		}
	}

	if err := s.sink.Store(ctx, hotelID, checkIn, compacted); err != nil {
		observability.ObserveScrape("error")
		return fmt.Errorf("store %s/%s: %w", hotelID, checkIn, err)
	}

	if s.cache != nil {
		s.invalidateHotel(ctx, hotelID, checkIn)
	}

	observability.ObserveScrape("ok")
	return nil
}

func (s *ScrapeService) invalidateHotel(ctx context.Context, hotelID, checkIn string) {
	_ = s.cache.Del(ctx, fmt.Sprintf("hotel:%s", hotelID))
	_ = s.cache.Del(ctx, fmt.Sprintf("daily:%s:%d", hotelID, defaultDailyLimit))
	_ = s.cache.Del(ctx, fmt.Sprintf("rates:%s:%s", hotelID, checkIn))
}
