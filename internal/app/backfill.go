package app

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"travclan_rates/internal/domain"
)

// BackfillChainNames re-fetches one near-term date for every stored hotel
// whose chain_name is NULL and fills the column from the fresh payload.
// Per-hotel failures are logged and counted, never fatal; a rate-limit
// signal pauses well beyond the normal inter-request delay.
func BackfillChainNames(ctx context.Context, client domain.BookingClient, repo domain.RateRepository, delay time.Duration) error {
	hotels, err := repo.ListHotelsMissingChain(ctx)
	if err != nil {
		return err
	}
	if len(hotels) == 0 {
		log.Info().Msg("all hotels already have chain names")
		return nil
	}
	log.Info().Int("count", len(hotels)).Msg("backfilling chain names")

	checkIn := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	checkOut := time.Now().AddDate(0, 0, 2).Format("2006-01-02")

	var updated, missing, failed int
	for _, h := range hotels {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		raw, err := client.FetchBookingInfo(ctx, h.HotelID, checkIn, checkOut)
		if err != nil {
			failed++
			log.Warn().Err(err).Str("hotel", h.HotelID).Msg("backfill fetch failed")
			if isRateLimited(err) {
				sleepCtx(ctx, 10*time.Second)
			}
			continue
		}

		c := Compact(raw)
		if c == nil || c.ChainName == nil {
			missing++
			log.Info().Str("hotel", h.HotelID).Msg("no chain name in response")
		} else if err := repo.UpdateChainName(ctx, h.HotelID, *c.ChainName); err != nil {
			failed++
			log.Warn().Err(err).Str("hotel", h.HotelID).Msg("chain name update failed")
		} else {
			updated++
			log.Info().Str("hotel", h.HotelID).Str("chain", *c.ChainName).Msg("chain name updated")
		}

		sleepCtx(ctx, delay)
	}

	log.Info().Int("updated", updated).Int("no_chain", missing).Int("failed", failed).
		Msg("chain name backfill done")
	return nil
}

func isRateLimited(err error) bool {
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "429") || strings.Contains(low, "too many")
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
