// Package server wires the repositories, services and handlers into a
// gin router and owns the HTTP server lifecycle.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	rediscache "github.com/gravadigital/santa-api/internal/cache/redis"
	"github.com/gravadigital/santa-api/internal/config"
	"github.com/gravadigital/santa-api/internal/handlers"
	"github.com/gravadigital/santa-api/internal/logger"
	"github.com/gravadigital/santa-api/internal/middleware"
	"github.com/gravadigital/santa-api/internal/notifications"
	"github.com/gravadigital/santa-api/internal/services"
	"github.com/gravadigital/santa-api/internal/storage/objectstore"
	"github.com/gravadigital/santa-api/internal/storage/postgres"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	config     *config.Config
	db         *gorm.DB
	cache      *rediscache.LeaderboardCache
	images     objectstore.ImageStore
}

// New creates a new server instance. cache and images may be nil when
// the corresponding backends are not configured.
func New(cfg *config.Config, db *gorm.DB, cache *rediscache.LeaderboardCache, images objectstore.ImageStore) *Server {
	return &Server{
		config: cfg,
		db:     db,
		cache:  cache,
		images: images,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	router := s.setupRouter()

	s.httpServer = &http.Server{
		Addr:    ":" + s.config.Server.Port,
		Handler: router,

		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Get().Info("Starting HTTP server", "port", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	logger.Get().Info("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(s.config.CORS.AllowOrigins, ",")
	if s.config.CORS.AllowOrigins == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowOrigins = nil
	}
	corsConfig.AllowMethods = strings.Split(s.config.CORS.AllowMethods, ",")
	corsConfig.AllowHeaders = strings.Split(s.config.CORS.AllowHeaders, ",")
	router.Use(cors.New(corsConfig))

	// repositorios
	eventRepo := postgres.NewEventRepository(s.db)
	participantRepo := postgres.NewParticipantRepository(s.db)
	assignmentRepo := postgres.NewAssignmentRepository(s.db)
	userRepo := postgres.NewUserRepository(s.db)
	wishlistRepo := postgres.NewWishlistRepository(s.db)

	// servicios
	notifier := notifications.NewLogNotifier()
	profileService := services.NewProfileService(userRepo, s.cache)
	santaService := services.NewSantaService(eventRepo, participantRepo, assignmentRepo, userRepo, profileService, notifier, s.images, s.config.Storage.MaxImageSize)
	wishlistService := services.NewWishlistService(wishlistRepo, userRepo, profileService, notifier, s.images, s.config.Storage.MaxImageSize)

	// handlers
	eventHandler := handlers.NewEventHandler(santaService)
	assignmentHandler := handlers.NewAssignmentHandler(santaService)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)
	profileHandler := handlers.NewProfileHandler(profileService)

	// Health check
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Santa API is running",
			"status":  "healthy",
		})
	})

	s.setupAPIRoutes(router, eventHandler, assignmentHandler, wishlistHandler, profileHandler)

	return router
}

// setupAPIRoutes configures all API routes
func (s *Server) setupAPIRoutes(
	router *gin.Engine,
	eventHandler *handlers.EventHandler,
	assignmentHandler *handlers.AssignmentHandler,
	wishlistHandler *handlers.WishlistHandler,
	profileHandler *handlers.ProfileHandler,
) {
	api := router.Group("/api")
	api.Use(middleware.Auth(s.config.Auth.JWTSecret))
	{
		events := api.Group("/events")
		{
			events.POST("", eventHandler.CreateEvent)
			events.GET("", eventHandler.MyEvents)
			events.GET("/:event_id", eventHandler.GetEvent)
			events.PATCH("/:event_id", eventHandler.UpdateEvent)
			events.DELETE("/:event_id", eventHandler.DeleteEvent)
			events.POST("/:event_id/participants", eventHandler.AddParticipant)
			events.POST("/:event_id/draw", eventHandler.DrawNames)
			events.GET("/:event_id/assignment", assignmentHandler.GetMyAssignment)
		}

		invites := api.Group("/invites")
		{
			invites.GET("/:code", eventHandler.GetInvite)
			invites.POST("/:code/join", eventHandler.JoinInvite)
		}

		assignments := api.Group("/assignments")
		{
			assignments.PATCH("/:assignment_id/gift", assignmentHandler.UpdateGiftStatus)
			assignments.POST("/:assignment_id/photo", assignmentHandler.UploadGiftPhoto)
		}

		wishlist := api.Group("/wishlist")
		{
			wishlist.POST("", wishlistHandler.AddItem)
			wishlist.GET("", wishlistHandler.MyItems)
			wishlist.DELETE("/:item_id", wishlistHandler.RemoveItem)
			wishlist.PATCH("/:item_id/privacy", wishlistHandler.SetPrivacy)
			wishlist.POST("/:item_id/image", wishlistHandler.UploadImage)
			wishlist.POST("/:item_id/reserve", wishlistHandler.Reserve)
			wishlist.DELETE("/:item_id/reserve", wishlistHandler.Unreserve)
		}

		api.GET("/users/:user_id/wishlist", wishlistHandler.ViewWishlist)
		api.GET("/reservations", wishlistHandler.MyReservations)

		profile := api.Group("/profile")
		{
			profile.POST("/sync", profileHandler.SyncAccount)
			profile.GET("", profileHandler.GetProfile)
			profile.GET("/referral-code", profileHandler.GetReferralCode)
		}

		api.GET("/friends", profileHandler.ListFriends)
		api.GET("/leaderboard", profileHandler.Leaderboard)
	}
}
