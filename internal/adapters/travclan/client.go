// internal/adapters/travclan/client.go
package travclan

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

type Client struct {
	base        string
	hc          *http.Client
	token       string
	orgCode     string
	nationality string
	currency    string
	rl          *rate.Limiter
}

type Options struct {
	OrgCode     string
	Nationality string
	Currency    string
	RPS         int
}

func New(base, token string, opts Options) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("auth token is required")
	}
	if opts.RPS <= 0 {
		opts.RPS = 2
	}
	if opts.Nationality == "" {
		opts.Nationality = "IN"
	}
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	return &Client{
		base:        strings.TrimRight(base, "/"),
		hc:          &http.Client{Timeout: 30 * time.Second},
		token:       token,
		orgCode:     opts.OrgCode,
		nationality: opts.Nationality,
		currency:    opts.Currency,
		rl:          rate.NewLimiter(rate.Limit(opts.RPS), opts.RPS),
	}, nil
}

var (
	ErrNotFound     = errors.New("travclan: not found")
	ErrUnauthorized = errors.New("travclan: unauthorized")
	ErrForbidden    = errors.New("travclan: forbidden")
	// ErrAPIError marks a 2xx response carrying an explicit error envelope.
	ErrAPIError = errors.New("travclan: api error")
)

type bookingRequest struct {
	HotelID          string      `json:"hotelId"`
	OrganizationCode string      `json:"organizationCode,omitempty"`
	CheckIn          string      `json:"checkIn"`
	CheckOut         string      `json:"checkOut"`
	Occupancies      []occupancy `json:"occupancies"`
	Nationality      string      `json:"nationality"`
	Currency         string      `json:"currency"`
}

type occupancy struct {
	NumOfAdults int   `json:"numOfAdults"`
	ChildAges   []int `json:"childAges"`
}

// FetchBookingInfo requests availability/pricing for one (hotel, date) pair
// and returns the decoded body as-is. Envelope handling belongs to the
// compaction pass; this layer only rejects explicit error envelopes.
func (c *Client) FetchBookingInfo(ctx context.Context, hotelID, checkIn, checkOut string) (map[string]any, error) {
	body := bookingRequest{
		HotelID:          hotelID,
		OrganizationCode: c.orgCode,
		CheckIn:          checkIn,
		CheckOut:         checkOut,
		Occupancies:      []occupancy{{NumOfAdults: 2, ChildAges: []int{}}},
		Nationality:      c.nationality,
		Currency:         c.currency,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := c.post(ctx, c.base+"/api/v1/hotels/itineraries/", payload, &out); err != nil {
		return nil, err
	}

	// The API reports some failures inside a 200 body.
	if msgs := errorEnvelope(out); msgs != "" {
		return nil, fmt.Errorf("%w: %s to %s: %s", ErrAPIError, checkIn, checkOut, msgs)
	}
	return out, nil
}

func errorEnvelope(body map[string]any) string {
	env, ok := body["error"].(map[string]any)
	if !ok {
		return ""
	}
	raw, _ := env["errors"].([]any)
	parts := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "unknown error"
	}
	return strings.Join(parts, ", ")
}

// post performs a POST with client-side rate limiting, retries, and JSON
// decode into out. Retries on 429 and transient 5xx, honoring Retry-After
// when provided.
func (c *Client) post(ctx context.Context, url string, payload []byte, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		// fresh request each attempt; body readers are single-use
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Authorization-Mode", "AWSCognito")
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json, text/plain, */*")
		req.Header.Set("Source", "website")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay with concurrency-safe jitter.
// i = retry attempt (0,1,2,...). Base doubles each attempt (200ms, 400ms, 800ms...),
// with up to +50% random jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
