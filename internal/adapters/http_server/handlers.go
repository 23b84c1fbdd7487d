// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"travclan_rates/internal/app"
	"travclan_rates/internal/domain"
)

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/hotels/{id}", h.getHotel)
	s.mux.Get("/v1/hotels/{id}/daily-rates", h.listDailyRates)
	s.mux.Get("/v1/hotels/{id}/rates", h.listRoomRates)
}

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

type hotelResponse struct {
	HotelID         string   `json:"hotel_id"`
	Name            string   `json:"name"`
	AddressLine1    *string  `json:"address_line1,omitempty"`
	City            *string  `json:"city,omitempty"`
	Country         *string  `json:"country,omitempty"`
	Latitude        *string  `json:"latitude,omitempty"`
	Longitude       *string  `json:"longitude,omitempty"`
	ChainName       *string  `json:"chain_name,omitempty"`
	StarRating      *string  `json:"star_rating,omitempty"`
	MinPrice        *float64 `json:"min_price,omitempty"`
	MaxPrice        *float64 `json:"max_price,omitempty"`
	Currency        *string  `json:"currency,omitempty"`
	PrimaryImageURL *string  `json:"primary_image_url,omitempty"`
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.Q.GetHotel(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	writeJSON(w, r, hotelResponse{
		HotelID:         rec.HotelID,
		Name:            rec.Name,
		AddressLine1:    rec.AddressLine1,
		City:            rec.City,
		Country:         rec.Country,
		Latitude:        rec.Latitude,
		Longitude:       rec.Longitude,
		ChainName:       rec.ChainName,
		StarRating:      rec.StarRating,
		MinPrice:        rec.MinPrice,
		MaxPrice:        rec.MaxPrice,
		Currency:        rec.Currency,
		PrimaryImageURL: rec.PrimaryImageURL,
	})
}

type dailyRateResponse struct {
	CheckInDate    string   `json:"check_in_date"`
	MinRate        *float64 `json:"min_rate,omitempty"`
	MaxRate        *float64 `json:"max_rate,omitempty"`
	Currency       *string  `json:"currency,omitempty"`
	RoomTypesCount int      `json:"room_types_count"`
}

func (h *Handlers) listDailyRates(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	limit := 0
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 365 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 365")
			return
		}
		limit = l
	}

	rows, err := h.Q.ListDailyRates(r.Context(), id, limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]dailyRateResponse, 0, len(rows))
	for _, d := range rows {
		out = append(out, dailyRateResponse{
			CheckInDate:    d.CheckInDate,
			MinRate:        d.MinRate,
			MaxRate:        d.MaxRate,
			Currency:       d.Currency,
			RoomTypesCount: d.RoomTypesCount,
		})
	}
	writeJSON(w, r, map[string]any{"hotel_id": id, "daily_rates": out})
}

type roomRateResponse struct {
	RoomID       string  `json:"room_id"`
	RoomName     string  `json:"room_name"`
	RateID       string  `json:"rate_id"`
	BaseRate     float64 `json:"base_rate"`
	FinalRate    float64 `json:"final_rate"`
	Currency     string  `json:"currency"`
	BoardBasis   *string `json:"board_basis,omitempty"`
	IsRefundable bool    `json:"is_refundable"`
}

func (h *Handlers) listRoomRates(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	date := r.URL.Query().Get("date")
	if !dateRe.MatchString(date) {
		writeProblem(w, http.StatusBadRequest, "Invalid date", "date must be YYYY-MM-DD")
		return
	}

	rows, err := h.Q.ListRoomRates(r.Context(), id, date)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]roomRateResponse, 0, len(rows))
	for _, v := range rows {
		out = append(out, roomRateResponse{
			RoomID:       v.RoomID,
			RoomName:     v.RoomName,
			RateID:       v.RateID,
			BaseRate:     v.BaseRate,
			FinalRate:    v.FinalRate,
			Currency:     v.Currency,
			BoardBasis:   v.BoardBasis,
			IsRefundable: v.IsRefundable,
		})
	}
	writeJSON(w, r, map[string]any{"hotel_id": id, "check_in_date": date, "rates": out})
}
