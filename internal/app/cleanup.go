package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"travclan_rates/internal/domain"
)

// DuplicateImageIDs returns the ids of every image row after the first
// occurrence of its (hotel_id, room_type_id, image_url) key, preserving the
// input order. Running it on an already-deduplicated set yields nothing, so
// the cleanup pass is idempotent.
func DuplicateImageIDs(rows []domain.StoredImage) []int64 {
	seen := make(map[string]struct{}, len(rows))
	var dups []int64
	for _, img := range rows {
		key := domain.ImageKey(img.HotelID, img.RoomTypeID, img.ImageURL)
		if _, ok := seen[key]; ok {
			dups = append(dups, img.ID)
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

// CleanupDuplicateImages removes duplicate hotel_images rows, keeping the
// first row per key in storage order. Deletes in batches so a single failed
// batch doesn't discard the whole pass. Returns the number deleted.
func CleanupDuplicateImages(ctx context.Context, repo domain.RateRepository, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}
	rows, err := repo.ListAllImages(ctx)
	if err != nil {
		return 0, fmt.Errorf("list images: %w", err)
	}
	dups := DuplicateImageIDs(rows)
	if len(dups) == 0 {
		return 0, nil
	}

	deleted := 0
	for i := 0; i < len(dups); i += batchSize {
		end := i + batchSize
		if end > len(dups) {
			end = len(dups)
		}
		batch := dups[i:end]
		if err := repo.DeleteImages(ctx, batch); err != nil {
			log.Error().Err(err).Int("batch_start", i).Msg("delete image batch failed")
			continue
		}
		deleted += len(batch)
	}
	log.Info().Int("total", len(rows)).Int("deleted", deleted).Msg("image cleanup done")
	return deleted, nil
}
