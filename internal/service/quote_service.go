package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stocktr-api/internal/models"
)

var (
	ErrUpstreamFailure = errors.New("error fetching stock data")
	ErrNoQuotes        = errors.New("no stocks found")
)

const quoteCachePrefix = "quotes:profile:"

// QuoteServiceConfig holds the upstream and cache settings
type QuoteServiceConfig struct {
	BaseURL  string
	APIKey   string
	Symbols  []string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// QuoteService proxies company profiles from the upstream quote source,
// caching the last good response in redis when a client is given
type QuoteService struct {
	redis   *redis.Client
	http    *http.Client
	cfg     QuoteServiceConfig
	symbols string
}

// NewQuoteService creates a new QuoteService. redisClient may be nil.
func NewQuoteService(redisClient *redis.Client, cfg QuoteServiceConfig) *QuoteService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	normalized := make([]string, 0, len(cfg.Symbols))
	for _, s := range cfg.Symbols {
		if s = NormalizeSymbol(s); s != "" {
			normalized = append(normalized, s)
		}
	}
	return &QuoteService{
		redis:   redisClient,
		http:    &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		symbols: strings.Join(normalized, ","),
	}
}

// CacheKey returns the redis key the quote list is cached under
func (s *QuoteService) CacheKey() string {
	return quoteCachePrefix + s.symbols
}

// List returns the cached quote list, fetching it on a miss
func (s *QuoteService) List(ctx context.Context) ([]models.Quote, error) {
	if quotes, ok := s.cached(ctx); ok {
		return quotes, nil
	}
	return s.Refresh(ctx)
}

// Refresh fetches the quote list from upstream and rewrites the cache
func (s *QuoteService) Refresh(ctx context.Context) ([]models.Quote, error) {
	quotes, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, quotes)
	return quotes, nil
}

func (s *QuoteService) fetch(ctx context.Context) ([]models.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/api/v3/profile/" + s.symbols +
		"?apikey=" + url.QueryEscape(s.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: upstream status %d", ErrUpstreamFailure, resp.StatusCode)
	}

	var quotes []models.Quote
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUpstreamFailure, err)
	}
	// a JSON null decodes to a nil slice
	if quotes == nil {
		return nil, ErrNoQuotes
	}
	return quotes, nil
}

func (s *QuoteService) cached(ctx context.Context) ([]models.Quote, bool) {
	if s.redis == nil {
		return nil, false
	}
	data, err := s.redis.Get(ctx, s.CacheKey()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("quote cache read failed", "error", err)
		}
		return nil, false
	}
	var quotes []models.Quote
	if err := json.Unmarshal(data, &quotes); err != nil {
		slog.Warn("quote cache entry unreadable", "error", err)
		return nil, false
	}
	return quotes, true
}

func (s *QuoteService) store(ctx context.Context, quotes []models.Quote) {
	if s.redis == nil || s.cfg.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(quotes)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, s.CacheKey(), data, s.cfg.CacheTTL).Err(); err != nil {
		slog.Warn("quote cache write failed", "error", err)
	}
}
