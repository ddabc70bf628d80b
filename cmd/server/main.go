package main

import (
	"fmt"
	"log"
	"os"

	"birthdaybook/internal/auth"
	"birthdaybook/internal/database"
	"birthdaybook/internal/handlers"
	"birthdaybook/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env in development; in production the environment is set directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize database
	if err := database.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Google sign-in is optional; password login still works without it
	if err := auth.InitCrypto(); err != nil {
		log.Printf("Warning: Google sign-in disabled: %v", err)
	} else if err := auth.InitOAuth(); err != nil {
		log.Printf("Warning: Google sign-in disabled: %v", err)
	}

	// Reminder pipeline
	mailer := services.NewEmailService()
	scheduler := services.NewReminderScheduler(database.GetDB(), mailer)
	if err := scheduler.Start(); err != nil {
		log.Fatal("Failed to start reminder scheduler:", err)
	}
	defer scheduler.Stop()
	handlers.InitReminderScheduler(scheduler)

	// Chatbot with local LLM fallback for free-form messages
	llm, err := services.NewLLMClient()
	if err != nil {
		log.Printf("Warning: LLM unavailable, chat falls back to canned replies: %v", err)
	}
	handlers.InitChatService(services.NewChatService(database.GetDB(), llm))

	// Initialize Gin router
	router := gin.Default()

	// Configure trusted proxies
	router.SetTrustedProxies([]string{"127.0.0.1"})

	// CORS for the frontend
	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Basic routes
	router.GET("/", handlers.HomeHandler)
	router.GET("/health", handlers.HealthHandler)

	// Account and auth routes (no auth required)
	router.POST("/accounts", handlers.CreateAccount)
	router.POST("/auth/login", handlers.Login)
	router.GET("/auth/google/login", handlers.GoogleLoginHandler)
	router.GET("/auth/google/callback", handlers.GoogleCallbackHandler)

	// Protected routes (auth required)
	protected := router.Group("/api")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/auth/logout", handlers.Logout)
		protected.GET("/auth/me", handlers.GetCurrentUser)
		protected.PATCH("/profile", handlers.UpdateProfile)
		protected.POST("/profile/avatar", handlers.UploadAvatar)

		protected.POST("/birthdays", handlers.CreateBirthday)
		protected.GET("/birthdays", handlers.GetBirthdays)
		protected.GET("/birthdays/upcoming", handlers.GetUpcomingBirthdays)
		protected.GET("/birthdays/:id", handlers.GetBirthday)
		protected.PUT("/birthdays/:id", handlers.UpdateBirthday)
		protected.DELETE("/birthdays/:id", handlers.DeleteBirthday)
		protected.POST("/birthdays/:id/photo", handlers.UploadBirthdayPhoto)

		protected.GET("/preferences", handlers.GetPreferences)
		protected.PUT("/preferences", handlers.UpdatePreferences)

		protected.POST("/chat", handlers.Chat)
		protected.GET("/chat/history", handlers.ChatHistory)

		protected.POST("/reminders/run", handlers.RunReminders)
	}

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("Server starting on port %s...\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
