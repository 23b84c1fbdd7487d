package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	TravclanBase  string
	TravclanToken string
	OrgCode       string
	Nationality   string
	Currency      string
	ClientRPS     int

	HotelIDs    []string
	Workers     int           // concurrent dates per hotel
	StartOffset int           // first check-in date, days from tomorrow
	EndOffset   int           // last check-in date, days from tomorrow
	HotelDelay  time.Duration // pause between hotels

	OutputDir string
	SinkMode  string // normalized|document
	AggMode   string // last_date_wins|across_dates
	CacheTTL  time.Duration
}

// DefaultHotelIDs is the built-in scrape set, overridable via HOTEL_IDS.
var DefaultHotelIDs = []string{
	"39713834",
	"39712626",
	"39722313",
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/travclan?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),

		TravclanBase:  env("TRAVCLAN_BASE_URL", "https://hotels-v1.travclan.com"),
		TravclanToken: env("TRAVCLAN_AUTH_TOKEN", ""),
		OrgCode:       env("TRAVCLAN_ORG_CODE", "orfov6"),
		Nationality:   env("TRAVCLAN_NATIONALITY", "IN"),
		Currency:      env("TRAVCLAN_CURRENCY", "INR"),
		ClientRPS:     atoi("TRAVCLAN_RPS", 2),

		HotelIDs:    hotelIDs(),
		Workers:     atoi("SCRAPE_WORKERS", 8),
		StartOffset: atoi("SCRAPE_START_OFFSET", 10),
		EndOffset:   atoi("SCRAPE_END_OFFSET", 60),
		HotelDelay:  time.Duration(atoi("SCRAPE_HOTEL_DELAY_MS", 2000)) * time.Millisecond,

		OutputDir: env("OUTPUT_DIR", "output"),
		SinkMode:  env("SINK_MODE", "normalized"),
		AggMode:   env("AGGREGATE_MODE", "last_date_wins"),
		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.TravclanToken == "" {
		log.Warn().Msg("TRAVCLAN_AUTH_TOKEN is empty")
	}
	return c
}

func hotelIDs() []string {
	v := os.Getenv("HOTEL_IDS")
	if v == "" {
		return DefaultHotelIDs
	}
	var out []string
	for _, id := range strings.Split(v, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return DefaultHotelIDs
	}
	return out
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
