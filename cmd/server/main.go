package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/yazidtalbi/gaminglobby-sub000/docs" // generated swagger docs
	"github.com/yazidtalbi/gaminglobby-sub000/internal/auth"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/config"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/database"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/feed"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/handler"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/lifecycle"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/notify"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/presence"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/store"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/view"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	config.LoadConfig()
}

// @title           Lobby Sync API
// @version         1.0
// @description     Matchmaking lobby service with real-time membership synchronization.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	database.Connect(config.AppConfig.DatabaseURL)

	hub := feed.NewHub()
	st := store.NewGorm(database.DB, hub)
	notifySvc := notify.NewService(st)
	manager := lifecycle.NewManager(st, notifySvc)
	views := view.NewRegistry(st, hub, view.Options{
		ResyncInterval: config.AppConfig.ResyncInterval,
		PendingTimeout: config.AppConfig.PendingTimeout,
	})
	sweeper := presence.NewSweeper(st, config.AppConfig.HostStaleAfter)

	h := handler.New(st, manager, notifySvc, views, sweeper, config.AppConfig.HeartbeatInterval)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", h.RegisterUser)
			authRoutes.POST("/login", h.LoginUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("/me", h.GetMe)
			userRoutes.GET("/me/notifications", h.ListNotifications)
		}

		// Lobby routes (protected)
		lobbyRoutes := apiV1.Group("/lobbies")
		lobbyRoutes.Use(auth.AuthMiddleware())
		{
			lobbyRoutes.POST("", h.CreateLobby)
			lobbyRoutes.GET("", h.SearchLobbies)
			lobbyRoutes.GET("/:id", h.GetLobbyByID)
			lobbyRoutes.GET("/:id/events", h.StreamLobby)
			lobbyRoutes.POST("/:id/join", h.JoinLobby)
			lobbyRoutes.POST("/:id/leave", h.LeaveLobby)
			lobbyRoutes.POST("/:id/ready", h.ToggleReady)
			lobbyRoutes.POST("/:id/start", h.StartLobby)
			lobbyRoutes.POST("/:id/close", h.CloseLobby)
			lobbyRoutes.POST("/:id/auto-invite", h.AutoInvite)
			lobbyRoutes.POST("/:id/invites", h.CreateInvite)
			lobbyRoutes.DELETE("/:id/members/:membershipID", h.KickMember)
			lobbyRoutes.POST("/:id/members/:membershipID/ban", h.BanMember)
		}
	}

	addr := fmt.Sprintf(":%d", config.AppConfig.Port)
	log.Info().Str("module", "main").Str("addr", addr).Msg("server is running")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
