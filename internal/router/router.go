package router

import (
	"log"

	"github.com/fakeverse/backend/internal/handlers"
	"github.com/fakeverse/backend/internal/middleware"
	"github.com/fakeverse/backend/internal/models"
	"github.com/fakeverse/backend/internal/repositories"
	"github.com/fakeverse/backend/pkg/metrics"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(metrics.Middleware())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.Conversation{},
		&models.Message{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check and metrics - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/metrics", metrics.Handler())

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	postRepo := repositories.NewPostgresPostRepository(pgdb)
	likeRepo := repositories.NewPostgresLikeRepository(pgdb)
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	chatRepo := repositories.NewPostgresChatRepository(pgdb)
	messageRepo := repositories.NewPostgresMessageRepository(pgdb)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/users")
	authHandler := handlers.NewAuthHandler(userRepo)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	jwtAuth := middleware.JWTAuthMiddleware()

	// User profile and follow routes
	users := e.Group("/users")
	users.Use(jwtAuth)
	userHandler := handlers.NewUserHandler(userRepo, followRepo, postRepo)
	userHandler.RegisterProfileRoutes(users)
	followHandler := handlers.NewFollowHandler(followRepo, userRepo)
	followHandler.RegisterFollowRoutes(users)
	log.Println("User and follow routes configured.")

	// Post and like routes
	posts := e.Group("/posts")
	posts.Use(jwtAuth)
	postHandler := handlers.NewPostHandler(postRepo, userRepo, followRepo, likeRepo, commentRepo)
	postHandler.RegisterPostRoutes(posts)
	likeHandler := handlers.NewLikeHandler(likeRepo, postRepo)
	likeHandler.RegisterLikeRoutes(posts)
	log.Println("Post and like routes configured.")

	// Comment routes
	comments := e.Group("/comments")
	comments.Use(jwtAuth)
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo)
	commentHandler.RegisterCommentRoutes(comments)
	log.Println("Comment routes configured.")

	// Chat routes
	chats := e.Group("/chats")
	chats.Use(jwtAuth)
	chatHandler := handlers.NewChatHandler(chatRepo, messageRepo, userRepo)
	chatHandler.RegisterChatRoutes(chats)
	log.Println("Chat routes configured.")

	log.Println("All routes configured.")
}
