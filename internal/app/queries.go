package app

import (
	"context"
	"fmt"
	"time"

	"travclan_rates/internal/domain"
)

// defaultDailyLimit is the API's default page size for daily rates; the
// scraper invalidates this variant after each store.
const defaultDailyLimit = 60

type QueryService struct {
	repo     domain.RateRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.RateRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetHotel(ctx context.Context, hotelID string) (domain.HotelRecord, error) {
	key := fmt.Sprintf("hotel:%s", hotelID)
	var h domain.HotelRecord
	if ok, _ := s.cache.Get(ctx, key, &h); ok {
		return h, nil
	}
	h, err := s.repo.GetHotel(ctx, hotelID)
	if err != nil {
		return domain.HotelRecord{}, err
	}
	_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	return h, nil
}

func (s *QueryService) ListDailyRates(ctx context.Context, hotelID string, limit int) ([]domain.DailyRateRecord, error) {
	if limit <= 0 {
		limit = defaultDailyLimit
	}
	key := fmt.Sprintf("daily:%s:%d", hotelID, limit)
	var out []domain.DailyRateRecord
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	rows, err := s.repo.ListDailyRates(ctx, hotelID, limit)
	if err != nil {
		return nil, err
	}
	// copy before caching so callers can't mutate the cached slice
	cp := make([]domain.DailyRateRecord, len(rows))
	copy(cp, rows)
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}

func (s *QueryService) ListRoomRates(ctx context.Context, hotelID, checkInDate string) ([]domain.RoomRateView, error) {
	key := fmt.Sprintf("rates:%s:%s", hotelID, checkInDate)
	var out []domain.RoomRateView
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	rows, err := s.repo.ListRoomRates(ctx, hotelID, checkInDate)
	if err != nil {
		return nil, err
	}
	cp := make([]domain.RoomRateView, len(rows))
	copy(cp, rows)
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}
