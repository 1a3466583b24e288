package main

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"deskgogo/backend/internal/api/handler"
	"deskgogo/backend/internal/chathub"
	"deskgogo/backend/internal/config"
	"deskgogo/backend/internal/models"
	"deskgogo/backend/internal/notify"
	"deskgogo/backend/internal/presence"
	"deskgogo/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(config.DatabaseDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.ChatSession{},
		&models.ChatMessage{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// One open session per customer, enforced at the database so concurrent
	// chat starts cannot slip past the application-level check.
	err = db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_one_open_session " +
		"ON chat_sessions (customer_id) WHERE status <> 'closed'").Error
	if err != nil {
		log.Fatalf("Failed to create open-session index: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting DeskGoGo Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	hub := chathub.NewHub(s)
	tracker := presence.NewTracker(config.PresenceTimeout)

	// Agent alerting is optional; without a bot token the waiting queue is
	// still served over HTTP.
	if cfg.TelegramBotToken != "" {
		chatID, err := strconv.ParseInt(cfg.TelegramChatID, 10, 64)
		if err != nil {
			log.Fatalf("Invalid TELEGRAM_CHAT_ID: %v", err)
		}
		botService, err := notify.NewBotService(cfg.TelegramBotToken, chatID, rdb)
		if err != nil {
			log.Fatalf("Failed to start Telegram notifier: %v", err)
		}
		go botService.Run()
	}

	r := gin.Default()
	h := handler.NewHandler(hub, s, tracker, cfg.JWTSecret)

	r.POST("/auth/guest", h.GuestToken)
	r.POST("/auth/token", h.UserToken)
	r.GET("/ws", h.ServeWebSocket)

	r.POST("/chat/start", h.StartChat)
	r.GET("/chat/waiting", h.WaitingSessions)
	r.GET("/chat/:session_id/history", h.ChatHistory)
	r.POST("/chat/:session_id/transfer", h.TransferChat)

	r.POST("/presence/:subject_id", h.RegisterPresence)
	r.GET("/presence/:subject_id", h.GetPresence)
	r.DELETE("/presence/:subject_id", h.RemovePresence)

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
