package chathub_test

import (
	"deskgogo/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock implementation of the storage.Storage
// interface for exercising the hub in isolation.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) ResolveDisplay(userID string) (*models.UserDisplay, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserDisplay), args.Error(1)
}

func (m *MockStorage) CreateSession(customerID, subject string) (*models.ChatSession, error) {
	args := m.Called(customerID, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatSession), args.Error(1)
}

func (m *MockStorage) FindOpenSessionForCustomer(customerID string) (*models.ChatSession, error) {
	args := m.Called(customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatSession), args.Error(1)
}

func (m *MockStorage) GetSessionByID(id uint) (*models.ChatSession, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatSession), args.Error(1)
}

func (m *MockStorage) AcceptSession(id uint, agentID string) (*models.ChatSession, error) {
	args := m.Called(id, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatSession), args.Error(1)
}

func (m *MockStorage) TransferSession(id uint, agentID string) (*models.ChatSession, error) {
	args := m.Called(id, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatSession), args.Error(1)
}

func (m *MockStorage) CloseSession(id uint) (*models.ChatSession, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatSession), args.Error(1)
}

func (m *MockStorage) AppendMessage(sessionID uint, senderID, body string) (*models.ChatMessage, error) {
	args := m.Called(sessionID, senderID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatMessage), args.Error(1)
}

func (m *MockStorage) ListMessages(sessionID uint) ([]models.ChatMessage, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

func (m *MockStorage) MarkMessagesRead(sessionID uint, notSenderID string) (int64, error) {
	args := m.Called(sessionID, notSenderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) EnqueueWaitingSession(sessionID uint) error {
	args := m.Called(sessionID)
	return args.Error(0)
}

func (m *MockStorage) RemoveWaitingSession(sessionID uint) error {
	args := m.Called(sessionID)
	return args.Error(0)
}

func (m *MockStorage) GetWaitingSessionIDs() ([]uint, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockStorage) PublishWaitingNotice(session *models.ChatSession) error {
	args := m.Called(session)
	return args.Error(0)
}
