package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tradelog/api/internal/cache"
	"tradelog/api/internal/config"
	"tradelog/api/internal/middleware"
	"tradelog/api/internal/repository"
	"tradelog/api/internal/service"
	"tradelog/api/internal/storage"
)

type HandlerSet struct {
	log       zerolog.Logger
	cfg       *config.AppConfig
	auth      *service.AuthService
	trades    *service.TradeService
	dashboard *service.DashboardService
	importer  *service.ImportService
	users     service.UserStore
	db        *pgxpool.Pool
	cache     *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, redisClient *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	dashCache := cache.NewDashboardCache(redisClient)

	return HandlerSet{
		log:       log,
		cfg:       cfg,
		auth:      service.NewAuthService(userRepo, cfg, log),
		trades:    service.NewTradeService(tradeRepo, dashCache, log),
		dashboard: service.NewDashboardService(tradeRepo, dashCache, log),
		importer:  service.NewImportService(tradeRepo, store, dashCache, log),
		users:     userRepo,
		db:        db,
		cache:     redisClient,
	}
}

func (h HandlerSet) Routes(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	auth := router.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)

	protect := middleware.Auth(h.cfg.Security.JWTSecret, h.users, h.log)

	me := router.Group("/auth")
	me.Use(protect)
	me.GET("/me", h.Me)

	trades := router.Group("/trades")
	trades.Use(protect)
	trades.GET("", h.ListTrades)
	trades.POST("", h.CreateTrade)
	trades.POST("/upload", h.UploadTrades)
	trades.GET("/:id", h.GetTrade)
	trades.PUT("/:id", h.UpdateTrade)
	trades.DELETE("/:id", h.DeleteTrade)

	dashboard := router.Group("/dashboard")
	dashboard.Use(protect)
	dashboard.GET("", h.Dashboard)
}
