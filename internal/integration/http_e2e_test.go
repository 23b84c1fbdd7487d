//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	httpserver "travclan_rates/internal/adapters/http_server"
	redisad "travclan_rates/internal/adapters/redis"
	"travclan_rates/internal/app"
	"travclan_rates/internal/domain"
	mysqlrepo "travclan_rates/internal/storage/mysql"
)

// ---------- helpers ----------
func pstr(s string) *string { return &s }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// ---------- the test ----------
func TestHTTP_EndToEnd_HotelAndRates(t *testing.T) {
	// Start isolated MySQL container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=travclan",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "travclan")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	// Apply the real migrations
	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Seed through the normalized sink, exactly as the scraper does.
	compact := &domain.CompactHotel{
		HotelID:    "39713834",
		Name:       "E2E Hotel",
		StarRating: pstr("5"),
		Location:   domain.Location{City: pstr("Goa")},
		Photos:     []string{"https://x/a.jpg"},
		RoomTypes: []domain.CompactRoomType{{
			ID: "R1", Name: "Deluxe",
			Rates: []domain.CompactRate{{
				ID: "RT1", BaseRate: 100, FinalRate: 120, Currency: "INR",
			}},
		}},
	}
	sink := app.NewNormalizedSink(repo, app.LastDateWins)
	if err := sink.Store(ctx, "39713834", "2026-09-10", compact); err != nil {
		t.Fatalf("sink store: %v", err)
	}

	// Real cache behind the query service
	redisSrv := miniredis.RunT(t)
	cache := redisad.New(redisSrv.Addr(), "", 0)

	q := app.NewQueryService(repo, cache, time.Minute)
	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{Q: q})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// Hotel endpoint
	res, err := http.Get(ts.URL + "/v1/hotels/39713834")
	if err != nil {
		t.Fatalf("GET hotel: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("hotel status %d", res.StatusCode)
	}
	etag := res.Header.Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}
	var hotel struct {
		HotelID  string   `json:"hotel_id"`
		Name     string   `json:"name"`
		City     *string  `json:"city"`
		MinPrice *float64 `json:"min_price"`
	}
	if err := json.NewDecoder(res.Body).Decode(&hotel); err != nil {
		t.Fatalf("decode hotel: %v", err)
	}
	if hotel.HotelID != "39713834" || hotel.Name != "E2E Hotel" || hotel.City == nil || *hotel.City != "Goa" {
		t.Fatalf("hotel body: %+v", hotel)
	}
	if hotel.MinPrice == nil || *hotel.MinPrice != 120 {
		t.Fatalf("min price: %v", hotel.MinPrice)
	}

	// Conditional request with the ETag short-circuits
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/hotels/39713834", nil)
	req.Header.Set("If-None-Match", etag)
	res2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("conditional GET: %v", err)
	}
	res2.Body.Close()
	if res2.StatusCode != http.StatusNotModified {
		t.Fatalf("conditional status %d", res2.StatusCode)
	}

	// Room rates endpoint
	res3, err := http.Get(ts.URL + "/v1/hotels/39713834/rates?date=2026-09-10")
	if err != nil {
		t.Fatalf("GET rates: %v", err)
	}
	defer res3.Body.Close()
	if res3.StatusCode != http.StatusOK {
		t.Fatalf("rates status %d", res3.StatusCode)
	}
	var rates struct {
		HotelID string `json:"hotel_id"`
		Rates   []struct {
			RoomID    string  `json:"room_id"`
			RateID    string  `json:"rate_id"`
			FinalRate float64 `json:"final_rate"`
		} `json:"rates"`
	}
	if err := json.NewDecoder(res3.Body).Decode(&rates); err != nil {
		t.Fatalf("decode rates: %v", err)
	}
	if len(rates.Rates) != 1 || rates.Rates[0].RoomID != "R1" || rates.Rates[0].FinalRate != 120 {
		t.Fatalf("rates body: %+v", rates)
	}

	// Validation errors surface as problem+json
	res4, err := http.Get(ts.URL + "/v1/hotels/39713834/rates?date=not-a-date")
	if err != nil {
		t.Fatalf("GET bad date: %v", err)
	}
	res4.Body.Close()
	if res4.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad date status %d", res4.StatusCode)
	}
	res5, err := http.Get(ts.URL + "/v1/hotels/unknown-hotel")
	if err != nil {
		t.Fatalf("GET missing hotel: %v", err)
	}
	res5.Body.Close()
	if res5.StatusCode != http.StatusNotFound {
		t.Fatalf("missing hotel status %d", res5.StatusCode)
	}
}
