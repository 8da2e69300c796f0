package booking

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"stayfinder/internal/adapters/observability"
	"stayfinder/internal/domain"
)

// Client talks to the hotel inventory provider. Callers treat every error as
// transient: the candidate provider degrades to synthetic data instead of
// propagating failures from here.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("booking: %w", domain.ErrNotConfigured)
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// SearchHotels translates the search parameters to provider query fields and
// fetches one page of candidates.
func (c *Client) SearchHotels(ctx context.Context, p domain.SearchParams) ([]domain.Hotel, error) {
	q := url.Values{}
	if p.Location != nil && *p.Location != "" {
		q.Set("location", *p.Location)
	}
	if p.CheckIn != nil {
		q.Set("checkin_date", *p.CheckIn)
	}
	if p.CheckOut != nil {
		q.Set("checkout_date", *p.CheckOut)
	}
	if p.Adults > 0 {
		q.Set("adults", strconv.Itoa(p.Adults))
	}
	if p.Children > 0 {
		q.Set("children", strconv.Itoa(p.Children))
	}
	if p.Rooms > 0 {
		q.Set("rooms", strconv.Itoa(p.Rooms))
	}
	if p.BudgetMin != nil {
		q.Set("price_min", strconv.FormatFloat(*p.BudgetMin, 'f', -1, 64))
	}
	if p.BudgetMax != nil {
		q.Set("price_max", strconv.FormatFloat(*p.BudgetMax, 'f', -1, 64))
	}

	var out struct {
		Result []map[string]any `json:"result"`
	}
	if err := c.get(ctx, c.base+"/hotels?"+q.Encode(), &out); err != nil {
		return nil, err
	}

	hotels := make([]domain.Hotel, 0, len(out.Result))
	for _, item := range out.Result {
		h := mapHotel(item)
		if h.HotelID == "" {
			continue // candidates without an identifier are unusable downstream
		}
		hotels = append(hotels, h)
	}
	return hotels, nil
}

// get performs a GET with client-side rate limiting, retries, and JSON decode
// into out. Retries on 429 and transient 5xx, honoring Retry-After when
// provided.
func (c *Client) get(ctx context.Context, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.key)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "stayfinder/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("booking", "hotels", 0, time.Since(start))
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
		observability.ObserveExternal("booking", "hotels", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			if resp.StatusCode == http.StatusTooManyRequests {
				lastErr = fmt.Errorf("booking: %w", domain.ErrThrottled)
			} else {
				lastErr = fmt.Errorf("booking: remote %d", resp.StatusCode)
			}
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
			return fmt.Errorf("booking: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
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

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if
// absent/invalid.
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
// i = retry attempt (0,1,2,...). Base doubles each attempt (200ms, 400ms,
// 800ms...), with up to +50% random jitter to avoid thundering herds.
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
