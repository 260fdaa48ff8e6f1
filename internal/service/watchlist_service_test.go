package service_test

import (
	"context"
	"testing"

	"github.com/stocktr-api/internal/models"
	"github.com/stocktr-api/internal/repository"
	"github.com/stocktr-api/internal/service"
	"github.com/stocktr-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWatchlistService(t *testing.T) (*service.WatchlistService, uint) {
	t.Helper()
	db := testutil.NewDB(t)
	user := &models.User{Username: "watcher", Name: "W", Email: "w@example.com", PasswordHash: "h"}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), user))
	return service.NewWatchlistService(repository.NewWatchlistRepository(db)), user.ID
}

func item(symbol string, price float64) models.WatchlistItem {
	return models.WatchlistItem{
		Symbol:      symbol,
		CompanyName: "Company " + symbol,
		Price:       price,
		Website:     "https://example.com",
	}
}

func TestWatchlistService_ListEmpty(t *testing.T) {
	svc, userID := newWatchlistService(t)

	entries, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Len(t, entries, 0)
}

func TestWatchlistService_UpsertIsIdempotent(t *testing.T) {
	svc, userID := newWatchlistService(t)
	ctx := context.Background()

	batch := []models.WatchlistItem{item("AAPL", 1), item("MSFT", 2)}
	_, err := svc.UpsertBatch(ctx, userID, batch)
	require.NoError(t, err)
	entries, err := svc.UpsertBatch(ctx, userID, batch)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "AAPL", entries[0].Symbol)
	assert.Equal(t, "MSFT", entries[1].Symbol)
}

func TestWatchlistService_NormalizesSymbols(t *testing.T) {
	svc, userID := newWatchlistService(t)
	ctx := context.Background()

	entries, err := svc.UpsertBatch(ctx, userID, []models.WatchlistItem{item(" aapl ", 1), item("AAPL", 3)})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "AAPL", entries[0].Symbol)
	assert.Equal(t, 3.0, entries[0].Price, "last duplicate in a batch wins")
}

func TestWatchlistService_RejectsInvalidBatchAtomically(t *testing.T) {
	svc, userID := newWatchlistService(t)
	ctx := context.Background()

	bad := item("TSLA", 1)
	bad.CompanyName = " "
	_, err := svc.UpsertBatch(ctx, userID, []models.WatchlistItem{item("AAPL", 1), bad})
	assert.ErrorIs(t, err, service.ErrInvalidEntry)

	_, err = svc.UpsertBatch(ctx, userID, []models.WatchlistItem{{CompanyName: "x", Website: "y"}})
	assert.ErrorIs(t, err, service.ErrInvalidEntry)

	entries, err := svc.List(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWatchlistService_RemoveOne(t *testing.T) {
	svc, userID := newWatchlistService(t)
	ctx := context.Background()
	_, err := svc.UpsertBatch(ctx, userID, []models.WatchlistItem{item("AAPL", 1), item("MSFT", 2)})
	require.NoError(t, err)

	symbol, err := svc.RemoveOne(ctx, userID, "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", symbol)

	_, err = svc.RemoveOne(ctx, userID, "AAPL")
	assert.ErrorIs(t, err, repository.ErrWatchlistEntryNotFound)

	_, err = svc.RemoveOne(ctx, userID, "  ")
	assert.ErrorIs(t, err, repository.ErrWatchlistEntryNotFound)

	entries, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "MSFT", entries[0].Symbol)
}

func TestWatchlistService_EmptyBatchReturnsCurrentList(t *testing.T) {
	svc, userID := newWatchlistService(t)
	ctx := context.Background()
	_, err := svc.UpsertBatch(ctx, userID, []models.WatchlistItem{item("AAPL", 1)})
	require.NoError(t, err)

	entries, err := svc.UpsertBatch(ctx, userID, nil)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
