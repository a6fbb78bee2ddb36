package marketdata

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	cacheTTL       = 5 * time.Minute
)

// Listing suffixes tried in order: TWSE main board first, then the OTC
// board (GreTai), which is where odd-lot codes missing from .TW live.
var listingSuffixes = []string{".TW", ".TWO"}

// chartResponse is the subset of the Yahoo v8 chart payload we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				ShortName          string  `json:"shortName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type cachedQuote struct {
	name      string
	price     float64
	ok        bool
	fetchedAt time.Time
}

// YahooClient looks up Taiwan stock quotes via the Yahoo Finance chart API.
// A short-lived cache lets a name resolution and a price fetch for the same
// code share one HTTP round trip.
type YahooClient struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger

	mu    sync.Mutex
	cache map[string]cachedQuote
}

// NewYahooClient creates a quote client. baseURL is overridable for tests;
// empty means the public Yahoo endpoint.
func NewYahooClient(baseURL string, timeout time.Duration, log zerolog.Logger) *YahooClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &YahooClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "marketdata").Logger(),
		cache:      make(map[string]cachedQuote),
	}
}

// ResolveName returns the instrument name for a code, or UnknownName.
func (c *YahooClient) ResolveName(code string) string {
	q := c.quote(code)
	if q.name == "" {
		return UnknownName
	}
	return q.name
}

// FetchPrice returns the latest price for a code. ok=false covers network
// errors, unknown symbols, and non-positive prices alike.
func (c *YahooClient) FetchPrice(code string) (float64, bool) {
	q := c.quote(code)
	if !q.ok || q.price <= 0 {
		return 0, false
	}
	return q.price, true
}

// quote returns the cached quote for a code, fetching it when stale.
func (c *YahooClient) quote(code string) cachedQuote {
	code = strings.TrimSpace(code)
	if code == "" {
		return cachedQuote{}
	}

	c.mu.Lock()
	if q, found := c.cache[code]; found && time.Since(q.fetchedAt) < cacheTTL {
		c.mu.Unlock()
		return q
	}
	c.mu.Unlock()

	q := c.fetch(code)
	q.fetchedAt = time.Now()

	c.mu.Lock()
	c.cache[code] = q
	c.mu.Unlock()

	return q
}

// fetch tries each listing suffix until one returns a usable quote.
func (c *YahooClient) fetch(code string) cachedQuote {
	for _, suffix := range listingSuffixes {
		q, err := c.fetchSymbol(code + suffix)
		if err != nil {
			c.log.Debug().Err(err).Str("symbol", code+suffix).Msg("Quote lookup failed")
			continue
		}
		return q
	}

	c.log.Warn().Str("code", code).Msg("No listing returned a quote")
	return cachedQuote{}
}

func (c *YahooClient) fetchSymbol(symbol string) (cachedQuote, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1d", c.baseURL, symbol)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return cachedQuote{}, fmt.Errorf("failed to build quote request: %w", err)
	}
	req.Header.Set("User-Agent", "oddlot/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return cachedQuote{}, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return cachedQuote{}, fmt.Errorf("quote request returned status %d", resp.StatusCode)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return cachedQuote{}, fmt.Errorf("failed to decode quote response: %w", err)
	}

	if payload.Chart.Error != nil {
		return cachedQuote{}, fmt.Errorf("quote API error: %s", payload.Chart.Error.Code)
	}
	if len(payload.Chart.Result) == 0 {
		return cachedQuote{}, fmt.Errorf("quote response has no result")
	}

	meta := payload.Chart.Result[0].Meta
	return cachedQuote{
		name:  meta.ShortName,
		price: meta.RegularMarketPrice,
		ok:    meta.RegularMarketPrice > 0,
	}, nil
}
