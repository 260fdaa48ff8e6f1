package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stocktr-api/internal/repository"
	"github.com/stocktr-api/internal/router"
	"github.com/stocktr-api/internal/service"
	"gorm.io/gorm"
)

// Quotes served by the fake upstream of NewApp
const QuotesJSON = `[
 {"symbol":"AAPL","companyName":"Apple Inc.","price":190.5,"changes":1.2,"volAvg":5000000,"website":"https://apple.com"},
 {"symbol":"MSFT","companyName":"Microsoft Corporation","price":410,"changes":-2,"volAvg":2000000,"website":"https://microsoft.com"},
 {"symbol":"AMD","companyName":"Advanced Micro Devices","price":150,"changes":0.5,"volAvg":3000000,"website":"https://amd.com"}
]`

// App is a fully wired server backed by SQLite and a fake quote upstream
type App struct {
	DB       *gorm.DB
	Engine   *gin.Engine
	Tokens   *service.TokenService
	Upstream *httptest.Server
}

// NewApp wires repositories, services and routes the way the server does.
// upstream may be nil for a fake that serves QuotesJSON.
func NewApp(t *testing.T, upstream http.Handler, rdb *redis.Client) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if upstream == nil {
		upstream = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(QuotesJSON))
		})
	}
	up := httptest.NewServer(upstream)
	t.Cleanup(up.Close)

	db := NewDB(t)
	userRepo := repository.NewUserRepository(db)
	tokens := service.NewTokenService("test-secret", time.Hour)
	deps := router.Deps{
		DB:        db,
		Redis:     rdb,
		Tokens:    tokens,
		Auth:      service.NewAuthService(userRepo, tokens, 4),
		Watchlist: service.NewWatchlistService(repository.NewWatchlistRepository(db)),
		Quotes: service.NewQuoteService(rdb, service.QuoteServiceConfig{
			BaseURL:  up.URL,
			APIKey:   "test",
			Symbols:  []string{"AAPL", "MSFT", "AMD"},
			Timeout:  2 * time.Second,
			CacheTTL: time.Minute,
		}),
		Profile:        service.NewProfileService(userRepo, 1<<20),
		AllowedOrigins: []string{"http://localhost:3000"},
	}

	return &App{
		DB:       db,
		Engine:   router.New(deps),
		Tokens:   tokens,
		Upstream: up,
	}
}
