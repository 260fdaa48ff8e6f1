package client

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/stocktr-api/internal/models"
)

// Syncer keeps a local view of the quote list and the signed-in user's
// watchlist in step with the server. Failed fetches log and leave the
// affected view empty.
type Syncer struct {
	client *Client
	logger *slog.Logger

	mu            sync.RWMutex
	authenticated bool
	user          *models.UserSummary
	quotes        []models.Quote
	watchlist     []models.WatchlistEntry
}

// NewSyncer creates a Syncer. A nil logger uses slog.Default().
func NewSyncer(client *Client, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		client:    client,
		logger:    logger,
		quotes:    []models.Quote{},
		watchlist: []models.WatchlistEntry{},
	}
}

// Mount resolves the session, then loads quotes and, when signed in, the watchlist
func (s *Syncer) Mount(ctx context.Context) {
	s.resolveSession(ctx)
	s.refreshQuotes(ctx)
	if s.Authenticated() {
		s.refreshWatchlist(ctx)
	} else {
		s.setWatchlist([]models.WatchlistEntry{})
	}
}

func (s *Syncer) resolveSession(ctx context.Context) {
	token, err := s.client.tokens.Load()
	if err != nil {
		s.logger.Error("load token failed", "error", err)
	}
	if token == "" {
		s.setSession(false, nil)
		return
	}

	status, err := s.client.IsAuth(ctx)
	if err != nil || !status.AUTH || status.UserData == nil {
		if err != nil {
			s.logger.Error("auth check failed", "error", err)
		}
		if clearErr := s.client.tokens.Clear(); clearErr != nil {
			s.logger.Error("clear token failed", "error", clearErr)
		}
		s.setSession(false, nil)
		return
	}
	s.setSession(true, status.UserData)
}

// Login signs in and mounts the session
func (s *Syncer) Login(ctx context.Context, email, password string) error {
	if _, err := s.client.Login(ctx, email, password); err != nil {
		return err
	}
	s.Mount(ctx)
	return nil
}

// Logout forgets the token and the signed-in state
func (s *Syncer) Logout() error {
	err := s.client.tokens.Clear()
	s.setSession(false, nil)
	s.setWatchlist([]models.WatchlistEntry{})
	return err
}

// Add puts a quote on the watchlist unless its symbol is already there.
// It posts the current watchlist plus the new entry, then refetches.
func (s *Syncer) Add(ctx context.Context, quote models.Quote) error {
	symbol := strings.ToUpper(strings.TrimSpace(quote.Symbol))

	s.mu.RLock()
	items := make([]models.WatchlistItem, 0, len(s.watchlist)+1)
	for i := range s.watchlist {
		if s.watchlist[i].Symbol == symbol {
			s.mu.RUnlock()
			return nil
		}
		items = append(items, s.watchlist[i].Item())
	}
	s.mu.RUnlock()

	items = append(items, quote.WatchlistItem())
	if _, err := s.client.UpdateWatchlist(ctx, items); err != nil {
		s.logger.Error("add to watchlist failed", "symbol", symbol, "error", err)
		return err
	}
	s.refreshWatchlist(ctx)
	return nil
}

// Remove deletes an entry by symbol, then refetches
func (s *Syncer) Remove(ctx context.Context, entry models.WatchlistEntry) error {
	if err := s.client.RemoveFromWatchlist(ctx, entry.Symbol); err != nil {
		s.logger.Error("remove from watchlist failed", "symbol", entry.Symbol, "error", err)
		return err
	}
	s.refreshWatchlist(ctx)
	return nil
}

// Search filters the fetched quotes by symbol or company name, ignoring case.
// An empty query returns every quote.
func (s *Syncer) Search(query string) []models.Quote {
	query = strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		if query == "" ||
			strings.Contains(strings.ToLower(q.Symbol), query) ||
			strings.Contains(strings.ToLower(q.CompanyName), query) {
			result = append(result, q)
		}
	}
	return result
}

// Quotes returns a copy of the fetched quote list
func (s *Syncer) Quotes() []models.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Quote{}, s.quotes...)
}

// Watchlist returns a copy of the fetched watchlist
func (s *Syncer) Watchlist() []models.WatchlistEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.WatchlistEntry{}, s.watchlist...)
}

// User returns the signed-in user, or nil
func (s *Syncer) User() *models.UserSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Authenticated reports whether the last Mount resolved a user
func (s *Syncer) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *Syncer) refreshQuotes(ctx context.Context) {
	quotes, err := s.client.Stocks(ctx)
	if err != nil {
		s.logger.Error("fetch stocks failed", "error", err)
		quotes = nil
	}
	if quotes == nil {
		quotes = []models.Quote{}
	}

	s.mu.Lock()
	s.quotes = quotes
	s.mu.Unlock()
}

func (s *Syncer) refreshWatchlist(ctx context.Context) {
	entries, err := s.client.Watchlist(ctx)
	if err != nil {
		s.logger.Error("fetch watchlist failed", "error", err)
		entries = []models.WatchlistEntry{}
	}
	s.setWatchlist(entries)
}

func (s *Syncer) setWatchlist(entries []models.WatchlistEntry) {
	s.mu.Lock()
	s.watchlist = entries
	s.mu.Unlock()
}

func (s *Syncer) setSession(authenticated bool, user *models.UserSummary) {
	s.mu.Lock()
	s.authenticated = authenticated
	s.user = user
	s.mu.Unlock()
}
