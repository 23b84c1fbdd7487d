// sqlgen walks the local artifact tree and emits a migration.sql of
// hotel_snapshots upserts, one statement per (hotel, check-in date) file.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"travclan_rates/internal/adapters/observability"
	"travclan_rates/internal/shared"
	"travclan_rates/internal/storage/files"
)

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	store := files.New(cfg.OutputDir)
	hotels, err := store.ListHotels()
	if err != nil {
		log.Fatal().Err(err).Msg("list artifact hotels failed")
	}
	if len(hotels) == 0 {
		log.Info().Str("dir", cfg.OutputDir).Msg("no artifacts found, nothing to generate")
		return
	}

	var b strings.Builder
	b.WriteString("-- Generated upserts for hotel snapshot data\n")
	b.WriteString("START TRANSACTION;\n")

	total := 0
	for _, hotelID := range hotels {
		dates, err := store.ListDates(hotelID)
		if err != nil {
			log.Warn().Err(err).Str("hotel", hotelID).Msg("list dates failed")
			continue
		}
		count := 0
		for _, date := range dates {
			raw, err := store.Read(hotelID, date)
			if err != nil {
				log.Warn().Err(err).Str("hotel", hotelID).Str("date", date).Msg("read artifact failed")
				continue
			}
			// re-marshal to compact form and validate in one step
			var doc any
			if err := json.Unmarshal(raw, &doc); err != nil {
				log.Warn().Err(err).Str("hotel", hotelID).Str("date", date).Msg("invalid artifact json")
				continue
			}
			compactJSON, err := json.Marshal(doc)
			if err != nil {
				continue
			}
			if count == 0 {
				fmt.Fprintf(&b, "\n-- Hotel %s\n", hotelID)
			}
			fmt.Fprintf(&b,
				"INSERT INTO hotel_snapshots (hotel_id, check_in_date, data)\nVALUES ('%s', '%s', '%s')\nON DUPLICATE KEY UPDATE data = VALUES(data), updated_at = CURRENT_TIMESTAMP;\n",
				hotelID, date, strings.ReplaceAll(string(compactJSON), "'", "''"))
			count++
		}
		total += count
		log.Info().Str("hotel", hotelID).Int("statements", count).Msg("hotel processed")
	}

	b.WriteString("\nCOMMIT;\n")

	out := "migration.sql"
	if err := os.WriteFile(out, []byte(b.String()), 0o644); err != nil {
		log.Fatal().Err(err).Msg("write migration.sql failed")
	}
	log.Info().Int("statements", total).Str("file", out).Msg("sql generation complete")
}
