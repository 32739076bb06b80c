package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/timecapsule-app/backend/internal/config"
	"github.com/timecapsule-app/backend/internal/database"
	"github.com/timecapsule-app/backend/internal/handlers"
	"github.com/timecapsule-app/backend/internal/middleware"
	"github.com/timecapsule-app/backend/internal/repository"
	"github.com/timecapsule-app/backend/internal/routes"
	"github.com/timecapsule-app/backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	log.Printf("Connecting to MongoDB...")
	mongoClient, db, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect(mongoClient)

	log.Printf("Connecting to Redis...")
	redisClient, err := database.ConnectRedis(cfg.RedisURI)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(indexCtx, db); err != nil {
		log.Printf("WARNING: failed to ensure MongoDB indexes: %v", err)
	}
	cancel()

	// Cloudinary is optional; without it the API works but uploads 503
	var uploader handlers.Uploader
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cloudinaryService, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Printf("Warning: failed to initialize Cloudinary: %v", err)
		} else {
			uploader = cloudinaryService
			log.Println("Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. Image uploads will not be available")
	}

	userRepo := repository.NewUserRepository(db)
	capsuleRepo := repository.NewCapsuleRepository(db)
	friendRepo := repository.NewFriendRepository(mongoClient, db)

	sessionManager := services.NewSessionManager(redisClient)
	authService := services.NewAuthService(userRepo, sessionManager)
	capsuleService := services.NewCapsuleService(capsuleRepo, userRepo)
	friendService := services.NewFriendService(friendRepo, userRepo)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimit(redisClient))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, routes.Handlers{
		Auth:    handlers.NewAuthHandler(authService),
		Capsule: handlers.NewCapsuleHandler(capsuleService, sessionManager),
		Friend:  handlers.NewFriendHandler(friendService, sessionManager),
		Upload:  handlers.NewUploadHandler(uploader, sessionManager),
	}, middleware.NewLoginLimiter(10))

	log.Printf("Time capsule backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
