package app_test

import (
	"context"
	"encoding/json"
	"fmt"

	"travclan_rates/internal/domain"
)

// fakeRepo records every write in order and serves canned reads. Individual
// operations can be forced to fail via the err* fields.
type fakeRepo struct {
	calls []string

	hotels     []domain.HotelRecord
	dailies    []domain.DailyRateRecord
	roomTypes  []domain.RoomTypeRecord
	roomRates  []domain.ResolvedRoomRate
	images     []domain.ResolvedImage
	snapshots  map[string][]byte
	misses     []string
	chainNames map[string]string
	deletedIDs []int64

	typeIDs      map[string]int64
	existingKeys map[string]struct{}
	hotelByID    map[string]domain.HotelRecord
	dailyRows    []domain.DailyRateRecord
	rateViews    []domain.RoomRateView
	missingChain []domain.HotelRef
	allImages    []domain.StoredImage

	errUpsertHotel  error
	errDaily        error
	errRoomTypes    error
	errTypeIDs      error
	errReplace      error
	errImageKeys    error
	errInsertImages error
	errSnapshot     error
	errDelete       error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		snapshots:    map[string][]byte{},
		chainNames:   map[string]string{},
		typeIDs:      map[string]int64{},
		existingKeys: map[string]struct{}{},
		hotelByID:    map[string]domain.HotelRecord{},
	}
}

func (f *fakeRepo) record(op string) { f.calls = append(f.calls, op) }

func (f *fakeRepo) UpsertHotel(_ context.Context, h domain.HotelRecord) error {
	f.record("UpsertHotel")
	if f.errUpsertHotel != nil {
		return f.errUpsertHotel
	}
	f.hotels = append(f.hotels, h)
	return nil
}

func (f *fakeRepo) UpsertDailyRate(_ context.Context, d domain.DailyRateRecord) error {
	f.record("UpsertDailyRate")
	if f.errDaily != nil {
		return f.errDaily
	}
	f.dailies = append(f.dailies, d)
	return nil
}

func (f *fakeRepo) InsertRoomTypes(_ context.Context, rts []domain.RoomTypeRecord) error {
	f.record("InsertRoomTypes")
	if f.errRoomTypes != nil {
		return f.errRoomTypes
	}
	f.roomTypes = append(f.roomTypes, rts...)
	return nil
}

func (f *fakeRepo) RoomTypeIDs(_ context.Context, _ string, _ []string) (map[string]int64, error) {
	f.record("RoomTypeIDs")
	if f.errTypeIDs != nil {
		return nil, f.errTypeIDs
	}
	return f.typeIDs, nil
}

func (f *fakeRepo) ReplaceRoomRates(_ context.Context, _, _ string, rows []domain.ResolvedRoomRate) error {
	f.record("ReplaceRoomRates")
	if f.errReplace != nil {
		return f.errReplace
	}
	f.roomRates = append(f.roomRates, rows...)
	return nil
}

func (f *fakeRepo) ExistingImageKeys(_ context.Context, _ string) (map[string]struct{}, error) {
	f.record("ExistingImageKeys")
	if f.errImageKeys != nil {
		return nil, f.errImageKeys
	}
	return f.existingKeys, nil
}

func (f *fakeRepo) InsertImages(_ context.Context, rows []domain.ResolvedImage) error {
	f.record("InsertImages")
	if f.errInsertImages != nil {
		return f.errInsertImages
	}
	f.images = append(f.images, rows...)
	return nil
}

func (f *fakeRepo) UpsertSnapshot(_ context.Context, hotelID, checkInDate string, doc []byte) error {
	f.record("UpsertSnapshot")
	if f.errSnapshot != nil {
		return f.errSnapshot
	}
	f.snapshots[hotelID+"/"+checkInDate] = doc
	return nil
}

func (f *fakeRepo) LogMiss(_ context.Context, hotelID, checkInDate string, status int, reason string) error {
	f.record("LogMiss")
	f.misses = append(f.misses, fmt.Sprintf("%s/%s/%d/%s", hotelID, checkInDate, status, reason))
	return nil
}

func (f *fakeRepo) RecomputeHotelAggregates(_ context.Context, _ string) error {
	f.record("RecomputeHotelAggregates")
	return nil
}

func (f *fakeRepo) GetHotel(_ context.Context, hotelID string) (domain.HotelRecord, error) {
	f.record("GetHotel")
	h, ok := f.hotelByID[hotelID]
	if !ok {
		return domain.HotelRecord{}, domain.ErrNotFound
	}
	return h, nil
}

func (f *fakeRepo) ListDailyRates(_ context.Context, _ string, _ int) ([]domain.DailyRateRecord, error) {
	f.record("ListDailyRates")
	return f.dailyRows, nil
}

func (f *fakeRepo) ListRoomRates(_ context.Context, _, _ string) ([]domain.RoomRateView, error) {
	f.record("ListRoomRates")
	return f.rateViews, nil
}

func (f *fakeRepo) ListHotelsMissingChain(_ context.Context) ([]domain.HotelRef, error) {
	f.record("ListHotelsMissingChain")
	return f.missingChain, nil
}

func (f *fakeRepo) UpdateChainName(_ context.Context, hotelID, chainName string) error {
	f.record("UpdateChainName")
	f.chainNames[hotelID] = chainName
	return nil
}

func (f *fakeRepo) ListAllImages(_ context.Context) ([]domain.StoredImage, error) {
	f.record("ListAllImages")
	return f.allImages, nil
}

func (f *fakeRepo) DeleteImages(_ context.Context, ids []int64) error {
	f.record("DeleteImages")
	if f.errDelete != nil {
		return f.errDelete
	}
	f.deletedIDs = append(f.deletedIDs, ids...)
	return nil
}

// fakeCache is an in-memory Cache with JSON round-trip semantics matching the
// redis adapter.
type fakeCache struct {
	data map[string][]byte
	gets int
	sets int
	dels []string
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (f *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) {
	f.gets++
	b, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (f *fakeCache) Set(_ context.Context, key string, v any, _ int) error {
	f.sets++
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.data[key] = b
	return nil
}

func (f *fakeCache) Del(_ context.Context, key string) error {
	f.dels = append(f.dels, key)
	delete(f.data, key)
	return nil
}

// fakeClient serves booking responses keyed by hotel id.
type fakeClient struct {
	responses map[string]map[string]any
	err       error
	fetched   []string
}

func (f *fakeClient) FetchBookingInfo(_ context.Context, hotelID, checkIn, _ string) (map[string]any, error) {
	f.fetched = append(f.fetched, hotelID+"/"+checkIn)
	if f.err != nil {
		return nil, f.err
	}
	return f.responses[hotelID], nil
}

type fakeArtifacts struct {
	writes []string
	err    error
}

func (f *fakeArtifacts) Write(hotelID, checkInDate string, _ any) error {
	f.writes = append(f.writes, hotelID+"/"+checkInDate)
	return f.err
}

type fakeSink struct {
	stored []string
	err    error
}

func (f *fakeSink) Store(_ context.Context, hotelID, checkInDate string, _ *domain.CompactHotel) error {
	f.stored = append(f.stored, hotelID+"/"+checkInDate)
	return f.err
}
