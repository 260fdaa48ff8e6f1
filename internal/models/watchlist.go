package models

import "time"

// WatchlistEntry is one tracked symbol of a user.
// (user_id, symbol) is unique; rows are hard-deleted so a symbol can be re-added.
type WatchlistEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_watchlist_user_symbol,priority:1" json:"user"`
	Symbol      string    `gorm:"size:20;not null;uniqueIndex:idx_watchlist_user_symbol,priority:2" json:"symbol"`
	CompanyName string    `gorm:"size:255;not null" json:"companyName"`
	Price       float64   `gorm:"type:decimal(20,4);not null" json:"price"`
	Changes     *float64  `gorm:"type:decimal(20,4)" json:"changes,omitempty"`
	VolAvg      *float64  `gorm:"type:decimal(24,2)" json:"volAvg,omitempty"`
	Website     string    `gorm:"size:255;not null" json:"website"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name for WatchlistEntry model
func (WatchlistEntry) TableName() string {
	return "watchlists"
}

// WatchlistItem is the client-supplied shape of a watchlist entry
type WatchlistItem struct {
	Symbol      string   `json:"symbol"`
	CompanyName string   `json:"companyName"`
	Price       float64  `json:"price"`
	Changes     *float64 `json:"changes,omitempty"`
	VolAvg      *float64 `json:"volAvg,omitempty"`
	Website     string   `json:"website"`
}

// Item converts a stored entry back to its client-supplied shape
func (e *WatchlistEntry) Item() WatchlistItem {
	return WatchlistItem{
		Symbol:      e.Symbol,
		CompanyName: e.CompanyName,
		Price:       e.Price,
		Changes:     e.Changes,
		VolAvg:      e.VolAvg,
		Website:     e.Website,
	}
}
