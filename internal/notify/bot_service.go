// Package notify alerts the support team when a customer is waiting for an
// agent. It listens on the Redis Pub/Sub channel the storage layer
// publishes waiting notices to and forwards them to a Telegram channel.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"deskgogo/backend/internal/config"
	"deskgogo/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
)

// BotService forwards waiting-session notices to Telegram.
type BotService struct {
	BotAPI *tgbotapi.BotAPI
	Redis  *redis.Client
	ChatID int64
}

// NewBotService authenticates against the Telegram Bot API.
func NewBotService(token string, chatID int64, rdb *redis.Client) (*BotService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("Notifier authorized on account %s", bot.Self.UserName)

	return &BotService{
		BotAPI: bot,
		Redis:  rdb,
		ChatID: chatID,
	}, nil
}

// Run subscribes to the waiting-notice channel and relays each notice.
// It blocks; run it in its own goroutine.
func (s *BotService) Run() {
	ctx := context.Background()
	pubsub := s.Redis.Subscribe(ctx, config.WaitingNoticeTopic)
	defer pubsub.Close()

	log.Println("Notifier listening for waiting sessions...")

	for msg := range pubsub.Channel() {
		var session models.ChatSession
		if err := json.Unmarshal([]byte(msg.Payload), &session); err != nil {
			log.Printf("Error unmarshalling waiting notice: %v", err)
			continue
		}
		s.notify(&session)
	}
}

func (s *BotService) notify(session *models.ChatSession) {
	subject := session.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	text := fmt.Sprintf("New chat waiting: session #%d\nSubject: %s\nCustomer: %s",
		session.ID, subject, session.CustomerID)

	if _, err := s.BotAPI.Send(tgbotapi.NewMessage(s.ChatID, text)); err != nil {
		log.Printf("ERROR: Failed to send Telegram notification for session %d: %v", session.ID, err)
	}
}
