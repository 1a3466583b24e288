package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"deskgogo/backend/internal/config"
	"deskgogo/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Sentinel errors surfaced to the hub and HTTP handlers.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrSessionNotFound  = errors.New("chat session not found")
	ErrSessionClosed    = errors.New("chat session is closed")
	ErrSessionNotActive = errors.New("chat session is not active")
	ErrAlreadyAssigned  = errors.New("chat session already has an agent assigned")
)

// Storage is the persistence boundary for the realtime core: the session
// registry, the append-only message log, identity resolution, and the
// Redis-backed waiting queue.
type Storage interface {
	SaveUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	ResolveDisplay(userID string) (*models.UserDisplay, error)

	CreateSession(customerID, subject string) (*models.ChatSession, error)
	FindOpenSessionForCustomer(customerID string) (*models.ChatSession, error)
	GetSessionByID(id uint) (*models.ChatSession, error)
	AcceptSession(id uint, agentID string) (*models.ChatSession, error)
	TransferSession(id uint, agentID string) (*models.ChatSession, error)
	CloseSession(id uint) (*models.ChatSession, error)

	AppendMessage(sessionID uint, senderID, body string) (*models.ChatMessage, error)
	ListMessages(sessionID uint) ([]models.ChatMessage, error)
	MarkMessagesRead(sessionID uint, notSenderID string) (int64, error)

	EnqueueWaitingSession(sessionID uint) error
	RemoveWaitingSession(sessionID uint) error
	GetWaitingSessionIDs() ([]uint, error)
	PublishWaitingNotice(session *models.ChatSession) error
}

// Service implements Storage on PostgreSQL (via GORM) and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// SaveUser persists the user in PostgreSQL.
func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ResolveDisplay returns the identity shape attached to broadcast payloads.
func (s *Service) ResolveDisplay(userID string) (*models.UserDisplay, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	display := user.Display()
	return &display, nil
}

// CreateSession opens a new waiting session for the customer. A customer
// may have at most one open session; when one already exists it is returned
// unchanged instead of creating a duplicate.
func (s *Service) CreateSession(customerID, subject string) (*models.ChatSession, error) {
	existing, err := s.FindOpenSessionForCustomer(customerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	session := models.ChatSession{
		CustomerID: customerID,
		Subject:    subject,
		Status:     models.SessionWaiting,
		StartedAt:  time.Now(),
	}
	if err := s.DB.Create(&session).Error; err != nil {
		// The partial unique index on open sessions rejects a concurrent
		// start for the same customer; hand back the winner's session.
		if winner, findErr := s.FindOpenSessionForCustomer(customerID); findErr == nil && winner != nil {
			return winner, nil
		}
		log.Printf("ERROR: Failed to create session for customer %s: %v", customerID, err)
		return nil, err
	}
	return &session, nil
}

// FindOpenSessionForCustomer returns the customer's waiting or active
// session, or nil when they have none.
func (s *Service) FindOpenSessionForCustomer(customerID string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := s.DB.Where("customer_id = ?", customerID).
		Where("status IN ?", []string{models.SessionWaiting, models.SessionActive}).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Service) GetSessionByID(id uint) (*models.ChatSession, error) {
	var session models.ChatSession
	err := s.DB.First(&session, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get session %d: %v", id, err)
		return nil, err
	}
	return &session, nil
}

// AcceptSession assigns the agent with a single conditional UPDATE, so two
// agents racing for the same waiting session cannot both win. The condition
// also lets an agent re-accept a session that is already theirs.
func (s *Service) AcceptSession(id uint, agentID string) (*models.ChatSession, error) {
	res := s.DB.Model(&models.ChatSession{}).
		Where("id = ? AND status = ? AND (agent_id IS NULL OR agent_id = ?)",
			id, models.SessionWaiting, agentID).
		Updates(map[string]interface{}{
			"agent_id": agentID,
			"status":   models.SessionActive,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		session, err := s.GetSessionByID(id)
		if err != nil {
			return nil, err
		}
		if session.Status == models.SessionClosed {
			return nil, ErrSessionClosed
		}
		if session.AgentID != nil && *session.AgentID == agentID {
			// Idempotent re-accept of an already-active own session.
			return session, nil
		}
		return nil, ErrAlreadyAssigned
	}
	return s.GetSessionByID(id)
}

// TransferSession hands an active session to a different agent.
func (s *Service) TransferSession(id uint, agentID string) (*models.ChatSession, error) {
	res := s.DB.Model(&models.ChatSession{}).
		Where("id = ? AND status = ?", id, models.SessionActive).
		Update("agent_id", agentID)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetSessionByID(id); err != nil {
			return nil, err
		}
		return nil, ErrSessionNotActive
	}
	return s.GetSessionByID(id)
}

// CloseSession moves the session to its terminal state and stamps EndedAt.
// Closing an already-closed session is a no-op that returns the session.
func (s *Service) CloseSession(id uint) (*models.ChatSession, error) {
	res := s.DB.Model(&models.ChatSession{}).
		Where("id = ? AND status <> ?", id, models.SessionClosed).
		Updates(map[string]interface{}{
			"status":   models.SessionClosed,
			"ended_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		log.Printf("ERROR: Failed to close session %d: %v", id, res.Error)
		return nil, res.Error
	}
	return s.GetSessionByID(id)
}

// AppendMessage persists a new unread message and returns it with the
// database-assigned ID and timestamp.
func (s *Service) AppendMessage(sessionID uint, senderID, body string) (*models.ChatMessage, error) {
	msg := models.ChatMessage{
		SessionID: sessionID,
		SenderID:  senderID,
		Body:      body,
	}
	if err := s.DB.Create(&msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for session %d: %v", sessionID, err)
		return nil, err
	}
	return &msg, nil
}

// ListMessages returns the session's messages in creation order.
func (s *Service) ListMessages(sessionID uint) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	if err := s.DB.Where("session_id = ?", sessionID).
		Order("created_at asc").Find(&messages).Error; err != nil {
		log.Printf("ERROR: Failed to get messages for session %d: %v", sessionID, err)
		return nil, err
	}
	return messages, nil
}

// MarkMessagesRead flips every unread message not sent by notSenderID to
// read. Running it twice is harmless; the second pass matches nothing.
func (s *Service) MarkMessagesRead(sessionID uint, notSenderID string) (int64, error) {
	res := s.DB.Model(&models.ChatMessage{}).
		Where("session_id = ? AND sender_id <> ? AND read = ?", sessionID, notSenderID, false).
		Update("read", true)
	if res.Error != nil {
		log.Printf("ERROR: Failed to mark messages read for session %d: %v", sessionID, res.Error)
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// EnqueueWaitingSession adds the session to the agents' waiting queue in Redis.
func (s *Service) EnqueueWaitingSession(sessionID uint) error {
	return s.Redis.SAdd(s.Ctx, config.WaitingQueueKey, strconv.FormatUint(uint64(sessionID), 10)).Err()
}

// RemoveWaitingSession drops the session from the waiting queue.
func (s *Service) RemoveWaitingSession(sessionID uint) error {
	return s.Redis.SRem(s.Ctx, config.WaitingQueueKey, strconv.FormatUint(uint64(sessionID), 10)).Err()
}

// GetWaitingSessionIDs returns every session currently waiting for an agent.
func (s *Service) GetWaitingSessionIDs() ([]uint, error) {
	members, err := s.Redis.SMembers(s.Ctx, config.WaitingQueueKey).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 32)
		if err != nil {
			log.Printf("WARNING: Dropping malformed waiting queue entry %q", m)
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// PublishWaitingNotice announces a newly waiting session on Redis Pub/Sub
// so the notifier can alert agents.
func (s *Service) PublishWaitingNotice(session *models.ChatSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, config.WaitingNoticeTopic, string(payload)).Err()
}
