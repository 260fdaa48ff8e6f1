package repository

import (
	"context"
	"errors"

	"github.com/stocktr-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrWatchlistEntryNotFound = errors.New("stock not found in watchlist")
)

// upsertColumns are overwritten when (user_id, symbol) already exists
var upsertColumns = []string{"company_name", "price", "changes", "vol_avg", "website", "updated_at"}

// WatchlistRepository handles watchlist data access
type WatchlistRepository struct {
	db *gorm.DB
}

// NewWatchlistRepository creates a new WatchlistRepository
func NewWatchlistRepository(db *gorm.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// GetByUserID retrieves all entries for a user in insertion order
func (r *WatchlistRepository) GetByUserID(ctx context.Context, userID uint) ([]models.WatchlistEntry, error) {
	entries := make([]models.WatchlistEntry, 0)
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}
	return entries, nil
}

// GetByUserIDAndSymbol retrieves one entry by its (user, symbol) key
func (r *WatchlistRepository) GetByUserIDAndSymbol(ctx context.Context, userID uint, symbol string) (*models.WatchlistEntry, error) {
	var entry models.WatchlistEntry
	result := r.db.WithContext(ctx).Where("user_id = ? AND symbol = ?", userID, symbol).First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrWatchlistEntryNotFound
		}
		return nil, result.Error
	}
	return &entry, nil
}

// Upsert inserts the entry or overwrites the existing row with the same (user, symbol)
func (r *WatchlistRepository) Upsert(ctx context.Context, entry *models.WatchlistEntry) error {
	return upsert(r.db.WithContext(ctx), entry)
}

// UpsertBatch upserts entries in order inside one transaction.
// A later entry with the same symbol overwrites an earlier one.
func (r *WatchlistRepository) UpsertBatch(ctx context.Context, entries []models.WatchlistEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range entries {
			if err := upsert(tx, &entries[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsert(db *gorm.DB, entry *models.WatchlistEntry) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(entry).Error
}

// DeleteByUserIDAndSymbol hard-deletes one entry
func (r *WatchlistRepository) DeleteByUserIDAndSymbol(ctx context.Context, userID uint, symbol string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Delete(&models.WatchlistEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWatchlistEntryNotFound
	}
	return nil
}

// CountByUserID counts entries for a user
func (r *WatchlistRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WatchlistEntry{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
