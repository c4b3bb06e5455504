package app

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"teamfinder/internal/config"
	"teamfinder/internal/db"
	"teamfinder/internal/handlers"
	"teamfinder/internal/repositories"
	"teamfinder/internal/routes"
	"teamfinder/internal/services"
)

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	conn, err := db.Open(context.Background(), cfg.Database.DSN)
	if err != nil {
		log.Fatal("database: ", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("close database: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(conn)
	messageRepo := repositories.NewMessageRepository(conn)

	// === Services ===
	userService := services.NewUserService(userRepo)

	botToken := cfg.Telegram.BotToken
	if cfg.Telegram.DryRun {
		botToken = ""
	}
	bot, err := services.NewTelegramBot(botToken, cfg.Telegram.AppURL, userService)
	if err != nil {
		log.Fatal("telegram: ", err)
	}

	codes := services.NewTokenStore(cfg.Auth.CodeTTL())
	codes.StartSweeper(cfg.Auth.SweepInterval())
	defer codes.Stop()

	throttle := services.NewAttemptThrottle(cfg.Auth.AttemptThreshold, cfg.Auth.ThrottleWindow())
	throttle.StartSweeper(cfg.Auth.SweepInterval())
	defer throttle.Stop()

	authService := services.NewAuthService(codes, throttle, userRepo, bot, cfg.Telegram.AppURL)
	bot.SetAuthService(authService)

	messageService := services.NewMessageService(messageRepo, userRepo, bot)

	// бот слушает long polling в фоне
	go bot.Start()

	// === Handlers ===
	jwtSecret := []byte(cfg.Auth.JWTSecret)
	authHandler := handlers.NewAuthHandler(authService, userService, jwtSecret, cfg.Auth.SessionTTL())
	profileHandler := handlers.NewProfileHandler(userService)
	messageHandler := handlers.NewMessageHandler(messageService)

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware(cfg.Telegram.AppURL))

	routes.SetupRoutes(router, jwtSecret, authHandler, profileHandler, messageHandler, cfg.Files.PublicDir)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server: ", err)
	}
}

func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
