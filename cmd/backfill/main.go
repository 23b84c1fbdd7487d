// backfill fills missing chain_name values on stored hotels by re-fetching
// one near-term date per hotel.
package main

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"travclan_rates/internal/adapters/observability"
	"travclan_rates/internal/adapters/travclan"
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

	repo := mysqlrepo.New(db)
	client, err := travclan.New(cfg.TravclanBase, cfg.TravclanToken, travclan.Options{
		OrgCode:     cfg.OrgCode,
		Nationality: cfg.Nationality,
		Currency:    cfg.Currency,
		RPS:         cfg.ClientRPS,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize travclan client")
	}

	if err := app.BackfillChainNames(ctx, client, repo, 1500*time.Millisecond); err != nil {
		log.Fatal().Err(err).Msg("backfill failed")
	}
}
