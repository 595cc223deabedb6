// Package cloudcover fetches historic daily cloud-cover data from the NASA
// POWER API. Lookups are keyed by UTC calendar day and cached, so a voyage
// spanning a day costs at most one API request with attenuation enabled.
package cloudcover

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/chrissnell/solarvoyage/internal/log"
	"golang.org/x/time/rate"
)

// Provider is the narrow lookup interface the estimator depends on. The
// boolean result reports whether data was available; callers treat missing
// data as zero cover.
type Provider interface {
	CloudFraction(ctx context.Context, day time.Time, lat, lon float64) (float64, bool)
}

// powerFillValue is the sentinel NASA POWER returns for missing observations
const powerFillValue = -999.0

const dayFormat = "20060102"

// Client fetches daily cloud-cover percentages from the NASA POWER
// temporal/daily/point endpoint.
type Client struct {
	endpoint string
	client   http.Client
	limiter  *rate.Limiter
	cache    *DayCache

	mu  sync.Mutex
	mem map[string]memEntry
}

type memEntry struct {
	fraction float64
	ok       bool
}

// NewClient creates a cloud-cover client. cache may be nil, in which case
// results are only held in memory for the lifetime of the client.
func NewClient(endpoint string, requestsPerMinute int, cache *DayCache) *Client {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	return &Client{
		endpoint: endpoint,
		client: http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute),
		cache:   cache,
		mem:     make(map[string]memEntry),
	}
}

// powerResponse mirrors the slice of the POWER JSON document we consume
type powerResponse struct {
	Properties struct {
		Parameter struct {
			CloudAmt map[string]float64 `json:"CLOUD_AMT"`
		} `json:"parameter"`
	} `json:"properties"`
}

// CloudFraction returns the historic mean cloud-cover fraction [0,1] for the
// UTC calendar day containing the given instant. Any fetch or decode failure
// is reported as missing data; the computation degrades to zero cover rather
// than failing.
func (c *Client) CloudFraction(ctx context.Context, day time.Time, lat, lon float64) (float64, bool) {
	dayKey := day.UTC().Format(dayFormat)

	c.mu.Lock()
	if entry, found := c.mem[dayKey]; found {
		c.mu.Unlock()
		return entry.fraction, entry.ok
	}
	c.mu.Unlock()

	if c.cache != nil {
		fraction, found, err := c.cache.Get(dayKey, lat, lon)
		if err != nil {
			log.Warnf("cloud cover cache read failed for %s: %v", dayKey, err)
		} else if found {
			c.remember(dayKey, fraction, true)
			return fraction, true
		}
	}

	fraction, err := c.fetchDay(ctx, dayKey, lat, lon)
	if err != nil {
		log.Warnf("cloud cover unavailable for %s at (%.3f,%.3f), defaulting to clear sky: %v", dayKey, lat, lon, err)
		// Remember the miss so one bad day costs a single request
		c.remember(dayKey, 0, false)
		return 0, false
	}

	c.remember(dayKey, fraction, true)
	if c.cache != nil {
		if err := c.cache.Put(dayKey, lat, lon, fraction); err != nil {
			log.Warnf("cloud cover cache write failed for %s: %v", dayKey, err)
		}
	}
	return fraction, true
}

func (c *Client) remember(dayKey string, fraction float64, ok bool) {
	c.mu.Lock()
	c.mem[dayKey] = memEntry{fraction: fraction, ok: ok}
	c.mu.Unlock()
}

func (c *Client) fetchDay(ctx context.Context, dayKey string, lat, lon float64) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	v := url.Values{}
	v.Set("parameters", "CLOUD_AMT")
	v.Set("community", "RE")
	v.Set("latitude", fmt.Sprintf("%.4f", lat))
	v.Set("longitude", fmt.Sprintf("%.4f", lon))
	v.Set("start", dayKey)
	v.Set("end", dayKey)
	v.Set("format", "JSON")

	reqURL := c.endpoint + "/api/temporal/daily/point?" + v.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("error creating POWER API request: %v", err)
	}

	log.Debugf("fetching cloud cover: %v", reqURL)
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("error making request to POWER API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("POWER API returned status %s", resp.Status)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("error reading POWER API response body: %v", err)
	}

	var response powerResponse
	if err := json.Unmarshal(bodyBytes, &response); err != nil {
		return 0, fmt.Errorf("unable to decode POWER API response: %v", err)
	}

	pct, found := response.Properties.Parameter.CloudAmt[dayKey]
	if !found {
		return 0, fmt.Errorf("POWER API response contained no CLOUD_AMT value for %s", dayKey)
	}
	if pct == powerFillValue {
		return 0, fmt.Errorf("no historic cloud data for %s", dayKey)
	}
	if pct < 0 {
		pct = 0
	} else if pct > 100 {
		pct = 100
	}

	return pct / 100.0, nil
}
