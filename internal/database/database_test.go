package database_test

import (
	"testing"

	"github.com/stocktr-api/internal/database"
	"github.com/stocktr-api/internal/models"
	"github.com/stocktr-api/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAutoMigrate(t *testing.T) {
	db := testutil.NewDB(t)

	assert.True(t, db.Migrator().HasTable(&models.User{}))
	assert.True(t, db.Migrator().HasTable(&models.WatchlistEntry{}))
	assert.True(t, db.Migrator().HasIndex(&models.WatchlistEntry{}, "idx_watchlist_user_symbol"))
	// idempotent
	assert.NoError(t, database.AutoMigrate(db))
}
