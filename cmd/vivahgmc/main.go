package main

import (
	"log"
	"os"

	"github.com/chatgptnotes/vivahgmc.com/db"
	"github.com/chatgptnotes/vivahgmc.com/internal/auth"
	"github.com/chatgptnotes/vivahgmc.com/internal/handlers"
	"github.com/chatgptnotes/vivahgmc.com/internal/router"
	"github.com/chatgptnotes/vivahgmc.com/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}

	if err := db.ConnectDatabase(os.Getenv("DATABASE_URL")); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	photoDir := os.Getenv("PHOTO_DIR")

	if photoDir == "" {
		photoDir = "photos"
	}

	baseURL := os.Getenv("PUBLIC_BASE_URL")

	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}

	store, err := storage.NewLocalStore(photoDir, baseURL)

	if err != nil {
		log.Fatalf("Failed to initialize photo store: %v", err)
	}

	handlers.PhotoStore = store

	r := router.NewRouter(photoDir)

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
