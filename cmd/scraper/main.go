package main

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"travclan_rates/internal/adapters/observability"
	redisad "travclan_rates/internal/adapters/redis"
	"travclan_rates/internal/adapters/travclan"
	"travclan_rates/internal/app"
	"travclan_rates/internal/shared"
	"travclan_rates/internal/storage/files"
	mysqlrepo "travclan_rates/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.Serve()

	log.Info().
		Str("base", cfg.TravclanBase).
		Str("sink", cfg.SinkMode).
		Int("hotels", len(cfg.HotelIDs)).
		Int("workers", cfg.Workers).
		Int("start_offset", cfg.StartOffset).
		Int("end_offset", cfg.EndOffset).
		Msg("scraper starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

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

	var sink app.Sink
	switch cfg.SinkMode {
	case "document":
		sink = app.NewDocumentSink(repo)
	default:
		sink = app.NewNormalizedSink(repo, app.ParseAggregatePolicy(cfg.AggMode))
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	artifacts := files.New(cfg.OutputDir)
	svc := app.NewScrapeService(client, sink, repo, artifacts, cache)

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	tomorrow := time.Now().AddDate(0, 0, 1)

	for _, hotelID := range cfg.HotelIDs {
		var wg sync.WaitGroup

		for offset := cfg.StartOffset; offset <= cfg.EndOffset; offset++ {
			checkIn := tomorrow.AddDate(0, 0, offset).Format("2006-01-02")
			checkOut := tomorrow.AddDate(0, 0, offset+1).Format("2006-01-02")

			// acquire before launching the goroutine; release inside it
			if err := sem.Acquire(ctx, 1); err != nil {
				log.Fatal().Err(err).Msg("semaphore acquire failed")
			}

			wg.Add(1)
			go func(hotelID, checkIn, checkOut string) {
				defer wg.Done()
				defer sem.Release(1)

				err := svc.ScrapeDate(ctx, hotelID, checkIn, checkOut)
				switch {
				case err == nil:
					log.Info().Str("hotel", hotelID).Str("check_in", checkIn).Msg("scrape ok")
				case errors.Is(err, app.ErrSkipped):
					// already logged and counted by the service
				default:
					log.Warn().Str("hotel", hotelID).Str("check_in", checkIn).Err(err).Msg("scrape failed")
				}
			}(hotelID, checkIn, checkOut)
		}

		wg.Wait()
		log.Info().Str("hotel", hotelID).Msg("hotel completed")

		// fixed pause between hotels to stay under upstream limits
		time.Sleep(cfg.HotelDelay)
	}

	log.Info().Msg("scrape completed")
}
