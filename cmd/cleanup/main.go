// cleanup removes duplicate hotel_images rows, keeping the first row per
// (hotel_id, room_type_id, image_url).
package main

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"travclan_rates/internal/adapters/observability"
	"travclan_rates/internal/app"
	"travclan_rates/internal/shared"
	mysqlrepo "travclan_rates/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}

	deleted, err := app.CleanupDuplicateImages(ctx, mysqlrepo.New(db), 1000)
	if err != nil {
		log.Fatal().Err(err).Msg("cleanup failed")
	}
	log.Info().Int("deleted", deleted).Msg("duplicate image cleanup finished")
}
