package server

import (
	"strings"
	"time"

	"github.com/wardenbot/warden/internal/config"
	"github.com/wardenbot/warden/internal/gateway"
	"github.com/wardenbot/warden/internal/middleware"

	gatewayHttp "github.com/wardenbot/warden/internal/gateway/delivery/http"

	activitylogRepo "github.com/wardenbot/warden/internal/modules/activitylog/repository"

	analyticsHttp "github.com/wardenbot/warden/internal/modules/analytics/delivery/http"
	analyticsRepo "github.com/wardenbot/warden/internal/modules/analytics/repository"
	analyticsService "github.com/wardenbot/warden/internal/modules/analytics/service"

	"github.com/wardenbot/warden/internal/modules/analytics/collector"

	moderationHttp "github.com/wardenbot/warden/internal/modules/moderation/delivery/http"
	moderationRepo "github.com/wardenbot/warden/internal/modules/moderation/repository"
	moderationService "github.com/wardenbot/warden/internal/modules/moderation/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	flusher     *collector.Flusher
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	analyticsRepository := analyticsRepo.NewAnalyticsRepository(db)
	activityLogs := activitylogRepo.NewActivityLogRepository(db)

	eventCollector := collector.New()
	directory := gateway.NewDirectoryCache()

	flusher := collector.NewFlusher(
		eventCollector,
		analyticsRepository,
		directory,
		cfg.Location(),
		cfg.AnalyticsFlushEvery,
		cfg.AnalyticsSaveTimeout,
	)

	dispatcher := gateway.NewDispatcher(eventCollector, activityLogs, directory)
	ingestHandler := gatewayHttp.NewIngestHandler(dispatcher)

	analyticsSvc := analyticsService.NewAnalyticsService(analyticsRepository, redisClient)
	analyticsHandler := analyticsHttp.NewAnalyticsHandler(analyticsSvc)

	moderationRepository := moderationRepo.NewModerationRepository(db)
	moderationSvc := moderationService.NewModerationService(moderationRepository, eventCollector)
	moderationHandler := moderationHttp.NewModerationHandler(moderationSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/api/events/message"},
	}))

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// All other routes require a client token (bot process or dashboard)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Event ingest routes (bot process)
		events := protected.Group("/events")
		{
			events.POST("/message", ingestHandler.MessageCreate)
			events.POST("/message-update", ingestHandler.MessageUpdate)
			events.POST("/message-delete", ingestHandler.MessageDelete)
			events.POST("/voice", ingestHandler.VoiceState)
			events.POST("/member", ingestHandler.Member)
			events.POST("/reaction", ingestHandler.Reaction)
			events.POST("/command", ingestHandler.Command)
			events.POST("/role", ingestHandler.Role)
			events.POST("/directory", ingestHandler.Directory)
		}

		// Analytics read routes (dashboard)
		analytics := protected.Group("/analytics/:guildId")
		analytics.Use(middleware.RateLimit(redisClient, cfg.RateLimitGlobal))
		{
			analytics.GET("/comprehensive", analyticsHandler.GetComprehensive)
			analytics.GET("/realtime", analyticsHandler.GetRealtime)
			analytics.GET("/leaderboard", analyticsHandler.GetLeaderboard)
			analytics.GET("/predictions", analyticsHandler.GetPredictions)
			analytics.GET("/compare", analyticsHandler.GetComparison)
		}

		// Moderation case routes
		moderation := protected.Group("/moderation")
		{
			moderation.POST("/cases", moderationHandler.CreateCase)
			moderation.GET("/:guildId/cases", moderationHandler.ListCases)
			moderation.GET("/:guildId/cases/:caseId", moderationHandler.GetCase)
			moderation.PUT("/:guildId/cases/:caseId/resolve", moderationHandler.ResolveCase)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		flusher:     flusher,
	}
}

// StartWorkers arms the hourly flush and the midnight snapshot.
func (s *Server) StartWorkers() {
	s.flusher.Start()
}

func (s *Server) StopWorkers() {
	s.flusher.Stop()
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
