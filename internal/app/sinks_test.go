package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"travclan_rates/internal/app"
	"travclan_rates/internal/domain"
)

func TestNormalizedSink_WriteOrder(t *testing.T) {
	repo := newFakeRepo()
	repo.typeIDs = map[string]int64{"R1": 11, "R2": 22}

	sink := app.NewNormalizedSink(repo, app.LastDateWins)
	c := compactFixture()
	if err := sink.Store(context.Background(), "H1", "2026-09-10", &c); err != nil {
		t.Fatalf("store: %v", err)
	}

	want := []string{
		"UpsertHotel", "UpsertDailyRate", "InsertRoomTypes",
		"RoomTypeIDs", "ReplaceRoomRates", "ExistingImageKeys", "InsertImages",
	}
	if got := strings.Join(repo.calls, ","); got != strings.Join(want, ",") {
		t.Fatalf("call order:\n got %s\nwant %s", got, strings.Join(want, ","))
	}

	if len(repo.roomRates) != 3 {
		t.Fatalf("room rates: %d", len(repo.roomRates))
	}
	for _, rr := range repo.roomRates {
		if rr.RoomTypeID != 11 && rr.RoomTypeID != 22 {
			t.Fatalf("unresolved surrogate id: %+v", rr)
		}
	}
	if len(repo.images) != 5 {
		t.Fatalf("images: %d", len(repo.images))
	}
}

func TestNormalizedSink_AcrossDatesRecomputes(t *testing.T) {
	repo := newFakeRepo()
	repo.typeIDs = map[string]int64{"R1": 1, "R2": 2}

	sink := app.NewNormalizedSink(repo, app.AcrossDates)
	c := compactFixture()
	if err := sink.Store(context.Background(), "H1", "2026-09-10", &c); err != nil {
		t.Fatalf("store: %v", err)
	}

	found := false
	for i, call := range repo.calls {
		if call == "RecomputeHotelAggregates" {
			found = true
			// must run after the daily upsert, before rate resolution
			if repo.calls[i-1] != "InsertRoomTypes" {
				t.Fatalf("recompute position: %v", repo.calls)
			}
		}
	}
	if !found {
		t.Fatalf("recompute never called: %v", repo.calls)
	}
}

func TestNormalizedSink_SkipsRatesForUnresolvedRoom(t *testing.T) {
	repo := newFakeRepo()
	// only R1 resolves; R2's rate and image must be skipped, not fail the unit
	repo.typeIDs = map[string]int64{"R1": 11}

	sink := app.NewNormalizedSink(repo, app.LastDateWins)
	c := compactFixture()
	if err := sink.Store(context.Background(), "H1", "2026-09-10", &c); err != nil {
		t.Fatalf("store: %v", err)
	}

	if len(repo.roomRates) != 2 {
		t.Fatalf("expected R1's two rates only, got %d", len(repo.roomRates))
	}
	for _, rr := range repo.roomRates {
		if rr.RoomTypeID != 11 {
			t.Fatalf("unexpected rate row: %+v", rr)
		}
	}
	// 2 hotel photos + 2 R1 images; the R2 image is dropped
	if len(repo.images) != 4 {
		t.Fatalf("images: %d", len(repo.images))
	}
}

func TestNormalizedSink_ReplacesRatesEvenWhenEmpty(t *testing.T) {
	repo := newFakeRepo()
	sink := app.NewNormalizedSink(repo, app.LastDateWins)

	c := domain.CompactHotel{HotelID: "H9", Name: "Bare"}
	if err := sink.Store(context.Background(), "H9", "2026-09-10", &c); err != nil {
		t.Fatalf("store: %v", err)
	}

	replaced := false
	for _, call := range repo.calls {
		if call == "ReplaceRoomRates" {
			replaced = true
		}
	}
	if !replaced {
		t.Fatalf("stale rates would survive: %v", repo.calls)
	}
}

func TestNormalizedSink_ImageFailureIsNotFatal(t *testing.T) {
	repo := newFakeRepo()
	repo.typeIDs = map[string]int64{"R1": 1, "R2": 2}
	repo.errInsertImages = errors.New("disk full")

	sink := app.NewNormalizedSink(repo, app.LastDateWins)
	c := compactFixture()
	if err := sink.Store(context.Background(), "H1", "2026-09-10", &c); err != nil {
		t.Fatalf("image failure must not fail the unit: %v", err)
	}
}

func TestNormalizedSink_RequiredTableFailureNamesTable(t *testing.T) {
	repo := newFakeRepo()
	repo.errDaily = errors.New("deadlock")

	sink := app.NewNormalizedSink(repo, app.LastDateWins)
	c := compactFixture()
	err := sink.Store(context.Background(), "H1", "2026-09-10", &c)
	if err == nil || !strings.Contains(err.Error(), "hotel_daily_rates") {
		t.Fatalf("error should name the table: %v", err)
	}
}

func TestNormalizedSink_DeduplicatesExistingImages(t *testing.T) {
	repo := newFakeRepo()
	repo.typeIDs = map[string]int64{"R1": 11, "R2": 22}

	sink := app.NewNormalizedSink(repo, app.LastDateWins)
	c := compactFixture()
	if err := sink.Store(context.Background(), "H1", "2026-09-10", &c); err != nil {
		t.Fatalf("first store: %v", err)
	}
	firstCount := len(repo.images)

	// second run: everything written the first time is now "existing"
	for _, img := range repo.images {
		repo.existingKeys[domain.ImageKey("H1", img.RoomTypeID, img.ImageURL)] = struct{}{}
	}
	if err := sink.Store(context.Background(), "H1", "2026-09-10", &c); err != nil {
		t.Fatalf("second store: %v", err)
	}
	if len(repo.images) != firstCount {
		t.Fatalf("re-run inserted duplicates: %d -> %d", firstCount, len(repo.images))
	}
}

func TestDocumentSink_StoresCompactJSON(t *testing.T) {
	repo := newFakeRepo()
	sink := app.NewDocumentSink(repo)

	c := compactFixture()
	if err := sink.Store(context.Background(), "H1", "2026-09-10", &c); err != nil {
		t.Fatalf("store: %v", err)
	}

	doc, ok := repo.snapshots["H1/2026-09-10"]
	if !ok {
		t.Fatalf("snapshot missing: %v", repo.snapshots)
	}
	var got domain.CompactHotel
	if err := json.Unmarshal(doc, &got); err != nil {
		t.Fatalf("snapshot not valid JSON: %v", err)
	}
	if got.HotelID != "H1" || len(got.RoomTypes) != 2 {
		t.Fatalf("snapshot content: %+v", got)
	}
}
