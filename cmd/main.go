package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"aegischat/backend/internal/api/handler"
	"aegischat/backend/internal/chathub"
	"aegischat/backend/internal/config"
	"aegischat/backend/internal/ingress"
	"aegischat/backend/internal/models"
	"aegischat/backend/internal/storage"
	"aegischat/backend/internal/tryout"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.TryoutChat{},
		&models.TryoutMessage{},
		&models.DirectMessage{},
		&models.TeamApplication{},
		&models.TeamMember{},
		&models.Tournament{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

// startExpirySweeper periodically removes tryout chats whose soft TTL has
// passed.
func startExpirySweeper(s *storage.Service) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(config.SweepInterval),
		gocron.NewTask(func() {
			removed, err := s.DeleteExpiredTryoutChats(time.Now())
			if err != nil {
				log.Printf("ERROR: Expiry sweep failed: %v", err)
				return
			}
			if removed > 0 {
				log.Printf("Expiry sweep removed %d tryout chats", removed)
			}
		}),
	)
	if err != nil {
		log.Fatalf("Failed to schedule expiry sweep: %v", err)
	}

	sched.Start()
}

func main() {
	log.Println("Starting AegisChat Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	tryouts := tryout.NewService(s, s, s)
	messages := ingress.NewService(s)

	hub := chathub.NewManagerService(s, tryouts)
	hub.StartPubSubListener()
	go hub.Run()

	startExpirySweeper(s)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	h := handler.NewHandler(hub, tryouts, messages, cfg.JWTSecret)
	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
