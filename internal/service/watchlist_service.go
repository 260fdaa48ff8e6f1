package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stocktr-api/internal/models"
	"github.com/stocktr-api/internal/repository"
)

var ErrInvalidEntry = errors.New("invalid watchlist entry")

// WatchlistService synchronizes a user's watchlist
type WatchlistService struct {
	watchlistRepo *repository.WatchlistRepository
}

// NewWatchlistService creates a new WatchlistService
func NewWatchlistService(watchlistRepo *repository.WatchlistRepository) *WatchlistService {
	return &WatchlistService{watchlistRepo: watchlistRepo}
}

// UpdateWatchlistRequest is the body of a watchlist sync
type UpdateWatchlistRequest struct {
	Watchlist []models.WatchlistItem `json:"watchlist"`
}

// NormalizeSymbol trims and uppercases a ticker
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// List returns the user's entries in insertion order
func (s *WatchlistService) List(ctx context.Context, userID uint) ([]models.WatchlistEntry, error) {
	return s.watchlistRepo.GetByUserID(ctx, userID)
}

// UpsertBatch validates every item, then upserts them in order in one transaction.
// It returns the full watchlist after the write.
func (s *WatchlistService) UpsertBatch(ctx context.Context, userID uint, items []models.WatchlistItem) ([]models.WatchlistEntry, error) {
	entries := make([]models.WatchlistEntry, 0, len(items))
	for i, item := range items {
		entry, err := toEntry(userID, item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, entry)
	}

	if len(entries) > 0 {
		if err := s.watchlistRepo.UpsertBatch(ctx, entries); err != nil {
			return nil, err
		}
	}
	return s.watchlistRepo.GetByUserID(ctx, userID)
}

// RemoveOne deletes one symbol and returns its canonical form
func (s *WatchlistService) RemoveOne(ctx context.Context, userID uint, symbol string) (string, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return "", repository.ErrWatchlistEntryNotFound
	}
	if err := s.watchlistRepo.DeleteByUserIDAndSymbol(ctx, userID, symbol); err != nil {
		return "", err
	}
	return symbol, nil
}

func toEntry(userID uint, item models.WatchlistItem) (models.WatchlistEntry, error) {
	entry := models.WatchlistEntry{
		UserID:      userID,
		Symbol:      NormalizeSymbol(item.Symbol),
		CompanyName: strings.TrimSpace(item.CompanyName),
		Price:       item.Price,
		Changes:     item.Changes,
		VolAvg:      item.VolAvg,
		Website:     strings.TrimSpace(item.Website),
	}

	switch {
	case entry.Symbol == "":
		return entry, fmt.Errorf("%w: symbol is required", ErrInvalidEntry)
	case len(entry.Symbol) > 20:
		return entry, fmt.Errorf("%w: symbol %q is too long", ErrInvalidEntry, entry.Symbol)
	case entry.CompanyName == "":
		return entry, fmt.Errorf("%w: companyName is required", ErrInvalidEntry)
	case entry.Website == "":
		return entry, fmt.Errorf("%w: website is required", ErrInvalidEntry)
	case entry.Price < 0:
		return entry, fmt.Errorf("%w: price must not be negative", ErrInvalidEntry)
	}
	return entry, nil
}
