package main

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/fritterhq/fritter/backend/internal/router"
	"github.com/fritterhq/fritter/backend/pkg/config"
	"github.com/fritterhq/fritter/backend/pkg/firebase"
	"github.com/fritterhq/fritter/backend/pkg/logger"
	"github.com/fritterhq/fritter/backend/validators"

	firebaseauth "firebase.google.com/go/v4/auth"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase; token exchange is disabled when credentials are absent
	var authClient *firebaseauth.Client
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		logger.Log.Warnf("Firebase disabled: %v", err)
	} else {
		authClient = firebaseApp.AuthClient
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, db.Mongo, authClient)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
