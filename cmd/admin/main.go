package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"deskgogo/backend/internal/config"
	"deskgogo/backend/internal/models"
	"deskgogo/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	db, err := gorm.Open(postgres.Open(config.DatabaseDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	cfg := config.Load()
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	storageSvc := storage.NewStorageService(db, rdb)

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: list-open | close <session_id> | purge-queue")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "list-open":
		if err := listOpenSessions(db); err != nil {
			log.Fatalf("Error listing sessions: %v", err)
		}
	case "close":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin close <session_id>")
			os.Exit(1)
		}
		id, err := strconv.ParseUint(os.Args[2], 10, 32)
		if err != nil {
			fmt.Println("Invalid session ID. Please provide an integer.")
			os.Exit(1)
		}
		session, err := storageSvc.CloseSession(uint(id))
		if err != nil {
			log.Fatalf("Error closing session: %v", err)
		}
		if err := storageSvc.RemoveWaitingSession(session.ID); err != nil {
			log.Printf("Warning: failed to dequeue session %d: %v", session.ID, err)
		}
		fmt.Printf("Session %d closed.\n", session.ID)
	case "purge-queue":
		if err := purgeQueue(storageSvc); err != nil {
			log.Fatalf("Error purging queue: %v", err)
		}
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func listOpenSessions(db *gorm.DB) error {
	var sessions []models.ChatSession
	if err := db.Where("status IN ?", []string{models.SessionWaiting, models.SessionActive}).
		Order("created_at asc").Find(&sessions).Error; err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No open sessions.")
		return nil
	}
	for _, s := range sessions {
		agent := "-"
		if s.AgentID != nil {
			agent = *s.AgentID
		}
		fmt.Printf("#%d\t%s\tcustomer=%s\tagent=%s\tsubject=%q\n",
			s.ID, s.Status, s.CustomerID, agent, s.Subject)
	}
	return nil
}

// purgeQueue removes waiting-queue entries whose session is no longer
// actually waiting (accepted or closed out of band).
func purgeQueue(s *storage.Service) error {
	ids, err := s.GetWaitingSessionIDs()
	if err != nil {
		return err
	}
	purged := 0
	for _, id := range ids {
		session, err := s.GetSessionByID(id)
		if err == nil && session.Status == models.SessionWaiting {
			continue
		}
		if err := s.RemoveWaitingSession(id); err != nil {
			return err
		}
		purged++
	}
	fmt.Printf("Purged %d stale queue entries.\n", purged)
	return nil
}
