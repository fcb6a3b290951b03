package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/clever-multi/internal/config"
	"github.com/yourusername/clever-multi/internal/metrics"
	"github.com/yourusername/clever-multi/internal/models"
)

// OddsAPISourceName identifies The Odds API in errors and logs
const OddsAPISourceName = "the_odds_api"

const remainingHeader = "x-requests-remaining"

// CacheStats describes the response cache
type CacheStats struct {
	TotalEntries     int  `json:"total_entries"`
	ValidEntries     int  `json:"valid_entries"`
	TTLSeconds       int  `json:"ttl_seconds"`
	LastAPIRemaining *int `json:"last_api_remaining"`
}

// OddsAPIClient fetches h2h and player-prop quotes from The Odds API
type OddsAPIClient struct {
	http      *RateLimitedHTTPClient
	cfg       config.OddsAPIConfig
	cache     *cache.Cache
	ttl       time.Duration
	remaining atomic.Int64
	logger    *logrus.Entry
	now       func() time.Time
}

// NewOddsAPIClient creates a client with its own rate-limited transport
func NewOddsAPIClient(cfg config.OddsAPIConfig, logger *logrus.Logger) *OddsAPIClient {
	return NewOddsAPIClientWithHTTP(cfg, NewRateLimitedHTTPClient(HTTPClientConfigFrom(cfg), logger), logger)
}

// NewOddsAPIClientWithHTTP creates a client over an existing transport
func NewOddsAPIClientWithHTTP(cfg config.OddsAPIConfig, httpClient *RateLimitedHTTPClient, logger *logrus.Logger) *OddsAPIClient {
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	c := &OddsAPIClient{
		http:   httpClient,
		cfg:    cfg,
		cache:  cache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: logger.WithField("source", OddsAPISourceName),
		now:    time.Now,
	}
	c.remaining.Store(-1)
	return c
}

// Name returns the name of the data source
func (c *OddsAPIClient) Name() string { return OddsAPISourceName }

// FetchQuotes retrieves featured markets for the sport's confirmed fixtures,
// plus player props when requested and the sport has prop markets.
func (c *OddsAPIClient) FetchQuotes(ctx context.Context, sport models.Sport, includeProps bool) ([]models.MarketQuote, error) {
	cacheKey := fmt.Sprintf("odds_%s_%t", sport, includeProps)
	if cached, ok := c.cached(cacheKey); ok {
		return cached, nil
	}

	profile, ok := sport.Profile()
	if !ok {
		return nil, NewDataSourceError(c.Name(), ErrCodeInvalidData, "unknown sport "+string(sport), models.ErrUnknownSport)
	}

	params := url.Values{}
	params.Set("regions", c.cfg.Regions)
	params.Set("markets", c.cfg.Markets)
	params.Set("oddsFormat", "decimal")

	var events []apiEvent
	if err := c.getJSON(ctx, sport, "h2h", "/sports/"+profile.OddsAPIKey+"/odds", params, &events); err != nil {
		return nil, err
	}

	confirmed := confirmedEvents(events, c.now(), c.cfg.MaxEventDaysAhead)
	c.logger.WithFields(logrus.Fields{
		"sport":     sport,
		"events":    len(events),
		"confirmed": len(confirmed),
		"days":      c.cfg.MaxEventDaysAhead,
	}).Info("Fetched featured odds")

	quotes := parseOddsResponse(confirmed, sport)

	if includeProps && len(profile.PropsMarkets) > 0 {
		props, err := c.FetchProps(ctx, sport)
		if err != nil {
			c.logger.WithError(err).WithField("sport", sport).Warn("Player props unavailable")
		}
		quotes = append(quotes, props...)
	}

	c.store(cacheKey, quotes)
	return quotes, nil
}

// FetchProps retrieves player props for the first confirmed fixtures of the
// sport. A failing fixture is logged and skipped.
func (c *OddsAPIClient) FetchProps(ctx context.Context, sport models.Sport) ([]models.MarketQuote, error) {
	cacheKey := fmt.Sprintf("props_%s", sport)
	if cached, ok := c.cached(cacheKey); ok {
		return cached, nil
	}

	profile, ok := sport.Profile()
	if !ok || len(profile.PropsMarkets) == 0 {
		return nil, nil
	}

	var events []apiEvent
	if err := c.getJSON(ctx, sport, "events", "/sports/"+profile.OddsAPIKey+"/events", url.Values{}, &events); err != nil {
		return nil, err
	}

	confirmed := confirmedEvents(events, c.now(), c.cfg.MaxEventDaysAhead)
	if limit := c.cfg.PropsEventLimit; limit > 0 && len(confirmed) > limit {
		confirmed = confirmed[:limit]
	}

	params := url.Values{}
	params.Set("regions", c.cfg.PropsRegions)
	params.Set("markets", strings.Join(profile.PropsMarkets, ","))
	params.Set("oddsFormat", "decimal")

	var props []models.MarketQuote
	for i := range confirmed {
		listing := &confirmed[i]
		if listing.ID == "" {
			continue
		}
		var data apiEvent
		path := "/sports/" + profile.OddsAPIKey + "/events/" + url.PathEscape(listing.ID) + "/odds"
		if err := c.getJSON(ctx, sport, "props", path, params, &data); err != nil {
			if ctx.Err() != nil {
				return props, ctx.Err()
			}
			c.logger.WithError(err).WithField("event_id", listing.ID).Warn("Failed to fetch event props")
			continue
		}
		props = append(props, parsePropsResponse(&data, listing, sport)...)
	}

	c.logger.WithFields(logrus.Fields{
		"sport":  sport,
		"events": len(confirmed),
		"props":  len(props),
	}).Info("Fetched player props")

	if len(props) > 0 {
		c.store(cacheKey, props)
	}
	return props, nil
}

// FetchWeek retrieves quotes for every sport. A failing sport is logged and
// skipped; an error is returned only when every sport fails.
func (c *OddsAPIClient) FetchWeek(ctx context.Context, sports []models.Sport, includeProps bool) ([]models.MarketQuote, error) {
	var all []models.MarketQuote
	var errs []error
	for _, sport := range sports {
		quotes, err := c.FetchQuotes(ctx, sport, includeProps)
		if err != nil {
			c.logger.WithError(err).WithField("sport", sport).Error("Failed to fetch sport")
			errs = append(errs, err)
			continue
		}
		all = append(all, quotes...)
	}
	if len(sports) > 0 && len(errs) == len(sports) {
		return nil, errors.Join(errs...)
	}
	return all, nil
}

// CacheStats returns response cache statistics
func (c *OddsAPIClient) CacheStats() CacheStats {
	stats := CacheStats{
		TotalEntries: c.cache.ItemCount(),
		ValidEntries: len(c.cache.Items()),
		TTLSeconds:   int(c.ttl / time.Second),
	}
	if n, ok := c.RequestsRemaining(); ok {
		stats.LastAPIRemaining = &n
	}
	return stats
}

// ClearCache drops every cached response
func (c *OddsAPIClient) ClearCache() {
	c.cache.Flush()
}

// Close releases idle transport connections
func (c *OddsAPIClient) Close() error {
	return c.http.Close()
}

// RequestsRemaining returns the last quota reported by the provider
func (c *OddsAPIClient) RequestsRemaining() (int, bool) {
	n := c.remaining.Load()
	return int(n), n >= 0
}

// A zero TTL disables the response cache.
func (c *OddsAPIClient) store(key string, quotes []models.MarketQuote) {
	if c.ttl > 0 {
		c.cache.Set(key, quotes, c.ttl)
	}
}

func (c *OddsAPIClient) cached(key string) ([]models.MarketQuote, bool) {
	v, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	quotes, ok := v.([]models.MarketQuote)
	if ok {
		c.logger.WithFields(logrus.Fields{"key": key, "items": len(quotes)}).Debug("Cache hit")
	}
	return quotes, ok
}

func (c *OddsAPIClient) getJSON(ctx context.Context, sport models.Sport, kind, path string, params url.Values, out interface{}) error {
	if c.cfg.APIKey == "" {
		return NewDataSourceError(c.Name(), ErrCodeAuthenticationFailed, "no API key configured", ErrAuthenticationFailed)
	}
	params.Set("apiKey", c.cfg.APIKey)

	resp, err := c.http.Get(ctx, strings.TrimRight(c.cfg.BaseURL, "/")+path+"?"+params.Encode())
	if err != nil {
		metrics.RecordOddsFetch(string(sport), kind, "error")
		return NewDataSourceError(c.Name(), ErrCodeNetworkError, "request failed", errors.Join(ErrNetworkError, err))
	}
	defer resp.Body.Close()

	c.trackRemaining(resp.Header)

	if resp.StatusCode != http.StatusOK {
		metrics.RecordOddsFetch(string(sport), kind, strconv.Itoa(resp.StatusCode))
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return c.statusError(resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.RecordOddsFetch(string(sport), kind, "invalid")
		return NewDataSourceError(c.Name(), ErrCodeInvalidData, "decode response", errors.Join(ErrInvalidData, err))
	}
	metrics.RecordOddsFetch(string(sport), kind, "ok")
	return nil
}

func (c *OddsAPIClient) trackRemaining(h http.Header) {
	raw := h.Get(remainingHeader)
	if raw == "" {
		return
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return
	}
	c.remaining.Store(int64(n))
	metrics.UpdateRequestsRemaining(int(n))
	c.logger.WithField("requests_remaining", int(n)).Debug("Odds API quota")
}

func (c *OddsAPIClient) statusError(status int, body string) error {
	msg := fmt.Sprintf("status %d: %s", status, body)
	switch {
	case status == http.StatusUnauthorized:
		if n, ok := c.RequestsRemaining(); ok && n <= 0 {
			return NewDataSourceError(c.Name(), ErrCodeQuotaExhausted, msg, ErrQuotaExhausted)
		}
		return NewDataSourceError(c.Name(), ErrCodeAuthenticationFailed, msg, ErrAuthenticationFailed)
	case status == http.StatusForbidden:
		return NewDataSourceError(c.Name(), ErrCodeAuthenticationFailed, msg, ErrAuthenticationFailed)
	case status == http.StatusTooManyRequests:
		return NewDataSourceError(c.Name(), ErrCodeRateLimitExceeded, msg, ErrRateLimitExceeded)
	case status == http.StatusNotFound || status == http.StatusUnprocessableEntity:
		return NewDataSourceError(c.Name(), ErrCodeNotFound, msg, ErrNotFound)
	case status >= 500:
		return NewDataSourceError(c.Name(), ErrCodeServerError, msg, ErrServerError)
	default:
		return NewDataSourceError(c.Name(), ErrCodeUnknown, msg, nil)
	}
}
