package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stocktr-api/internal/handler"
	"github.com/stocktr-api/internal/middleware"
	"github.com/stocktr-api/internal/service"
	"gorm.io/gorm"
)

// Deps are the services the HTTP surface is built from
type Deps struct {
	DB    *gorm.DB
	Redis *redis.Client

	Tokens    *service.TokenService
	Auth      *service.AuthService
	Watchlist *service.WatchlistService
	Quotes    *service.QuoteService
	Profile   *service.ProfileService

	AllowedOrigins []string
}

// New builds the gin engine with every route mounted
func New(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLoggerMiddleware())
	router.Use(middleware.CORSMiddleware(d.AllowedOrigins))

	handler.NewHealthHandler(d.DB, d.Redis).RegisterRoutes(router)

	authMiddleware := middleware.AuthMiddleware(d.Tokens, d.Auth)
	optionalAuth := middleware.OptionalAuth(d.Tokens, d.Auth)

	api := router.Group("/api")
	{
		handler.NewAuthHandler(d.Auth).RegisterRoutes(api, authMiddleware, optionalAuth)
		handler.NewWatchlistHandler(d.Watchlist).RegisterRoutes(api, authMiddleware)
		handler.NewStockHandler(d.Quotes).RegisterRoutes(api)
		handler.NewProfileHandler(d.Profile).RegisterRoutes(api, authMiddleware)
	}

	return router
}
