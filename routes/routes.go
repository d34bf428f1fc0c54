package routes

import (
	"log"
	"net/http"

	"classquiz/handlers"
	"classquiz/middleware"
	"classquiz/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	quizHandler *handlers.QuizHandler,
	notificationHandler *handlers.NotificationHandler,
	resultHandler *handlers.ResultHandler,
	hub *services.Hub,
	jwtSecret string,
) {
	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			// User profile
			protected.GET("/auth/profile", authHandler.GetProfile)

			// Quiz routes (teacher)
			quizzes := protected.Group("/quizzes", middleware.RequireRole("teacher"))
			{
				quizzes.GET("", quizHandler.GetTeacherQuizzes)
				quizzes.POST("", quizHandler.CreateQuiz)
				quizzes.GET("/:id", quizHandler.GetQuizByID)
				quizzes.PUT("/:id", quizHandler.UpdateQuiz)
				quizzes.DELETE("/:id", quizHandler.DeleteQuiz)
				quizzes.POST("/:id/schedule", quizHandler.ScheduleQuiz)
				quizzes.GET("/:id/stats", resultHandler.GetQuizStats)
				quizzes.GET("/:id/export", resultHandler.ExportResults)
			}
			protected.POST("/cleanup", middleware.RequireRole("teacher"), quizHandler.CleanupExpiredQuizzes)
			protected.GET("/engagement", middleware.RequireRole("teacher"), resultHandler.GetEngagementTrend)

			// Student routes
			student := protected.Group("/student", middleware.RequireRole("student"))
			{
				student.GET("/quizzes", quizHandler.GetStudentFeed)
				student.GET("/overview", resultHandler.GetStudentOverview)
				student.POST("/quizzes/:id/attempts", resultHandler.SubmitAttempt)
			}

			// Notification routes
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", notificationHandler.ListNotifications)
				notifications.GET("/unread-count", notificationHandler.UnreadCount)
				notifications.PUT("/:id/read", notificationHandler.MarkRead)
				notifications.PUT("/read-all", notificationHandler.MarkAllRead)
				notifications.POST("/announcements", middleware.RequireRole("teacher"), notificationHandler.CreateAnnouncement)
				notifications.GET("/preferences", notificationHandler.GetPreferences)
				notifications.PUT("/preferences", notificationHandler.UpdatePreferences)
			}
		}
	}

	// WebSocket endpoint for the realtime notification stream. The auth
	// middleware accepts the token as a query parameter here since
	// browsers cannot set headers on websocket dials.
	router.GET("/ws", middleware.AuthMiddleware(jwtSecret), func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for user %d: %v", userID.(uint), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
			return
		}

		log.Printf("WebSocket connection established for user %d", userID.(uint))
		hub.RegisterClient(conn, userID.(uint))
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
