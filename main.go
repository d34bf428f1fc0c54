package main

import (
	"log"

	"classquiz/config"
	"classquiz/handlers"
	"classquiz/middleware"
	"classquiz/models"
	"classquiz/routes"
	"classquiz/services"
	"classquiz/services/email"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Quiz{},
		&models.Question{},
		&models.Option{},
		&models.QuizResult{},
		&models.Notification{},
		&models.NotificationPreference{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Pick the email sender: Sendgrid when a key is configured,
	// otherwise log-only delivery for local development.
	var sender email.Sender
	if cfg.SendgridAPIKey != "" {
		sender = email.NewSendgridSender(cfg.SendgridAPIKey, cfg.AppName, cfg.FromEmail)
	} else {
		log.Print("SENDGRID_API_KEY not set, using console email sender")
		sender = email.NewConsoleSender()
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret)
	notificationService := services.NewNotificationService(db, redisClient, hub, sender)
	hub.SetNotificationService(notificationService)
	quizService := services.NewQuizService(db, notificationService)
	resultService := services.NewResultService(db, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	quizHandler := handlers.NewQuizHandler(quizService, authService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, authService)
	resultHandler := handlers.NewResultHandler(resultService, authService)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, quizHandler, notificationHandler, resultHandler, hub, cfg.JWTSecret)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
