package router

import (
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/fritterhq/fritter/backend/internal/cascade"
	"github.com/fritterhq/fritter/backend/internal/feed"
	"github.com/fritterhq/fritter/backend/internal/handlers"
	"github.com/fritterhq/fritter/backend/internal/middleware"
	"github.com/fritterhq/fritter/backend/internal/models"
	"github.com/fritterhq/fritter/backend/internal/repositories"
	"github.com/fritterhq/fritter/backend/pkg/logger"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	logger.Log.Info("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.FollowRecord{},
		&models.Follow{},
		&models.Signal{},
	)
	if err != nil {
		logger.Log.Fatalf("Failed to auto migrate models: %v", err)
	}
	logger.Log.Info("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mgClient.Database("fritter"))
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	voteRepo := repositories.NewPostgresSignalRepository(pgdb, models.SignalVote)
	interestRepo := repositories.NewPostgresSignalRepository(pgdb, models.SignalInterest)

	// --- Read side and cascade ---
	scores := feed.NewScoreCache(voteRepo)
	composer := feed.NewComposer(postRepo, followRepo, scores)
	coordinator := cascade.NewCoordinator(voteRepo, interestRepo, followRepo, scores, logger.Log)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, followRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)
	logger.Log.Info("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	logger.Log.Info("JWT authentication middleware applied to /api/v1 group.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo, postRepo, coordinator)
	userHandler.RegisterProfileRoutes(api)

	// Post routes
	postHandler := handlers.NewPostHandler(postRepo, coordinator)
	postHandler.RegisterPostRoutes(api)

	// Feed routes
	feedHandler := handlers.NewFeedHandler(composer, userRepo)
	feedHandler.RegisterFeedRoutes(api)

	// Follow routes
	followHandler := handlers.NewFollowHandler(followRepo, userRepo)
	followHandler.RegisterFollowRoutes(api)

	// Vote and interest routes
	voteHandler := handlers.NewVoteHandler(voteRepo, postRepo, userRepo, scores)
	voteHandler.RegisterSignalRoutes(api)
	interestHandler := handlers.NewInterestHandler(interestRepo, postRepo, userRepo)
	interestHandler.RegisterSignalRoutes(api)

	logger.Log.Info("All routes configured.")
}
