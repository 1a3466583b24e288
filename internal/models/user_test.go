package models_test

import (
	"testing"

	"deskgogo/backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

// TestUserBeforeCreate_GeneratesUUID verifies that the BeforeCreate hook generates a valid UUID.
func TestUserBeforeCreate_GeneratesUUID(t *testing.T) {
	user := &models.User{
		Name:        "Agent One",
		Email:       "agent1@example.com",
		Role:        models.RoleAgent,
		Departments: pq.StringArray{"billing", "technical"},
	}

	assert.Empty(t, user.ID, "User ID should be empty before BeforeCreate")

	err := user.BeforeCreate(nil) // nil *gorm.DB is acceptable for this hook

	assert.NoError(t, err)
	assert.NotEmpty(t, user.ID, "User ID must be populated after BeforeCreate")

	parsed, parseErr := uuid.Parse(user.ID)
	assert.NoError(t, parseErr, "User ID must be a valid UUID string")
	assert.NotEqual(t, uuid.Nil, parsed)
}

// TestUserBeforeCreate_PreservesExistingID verifies that the hook doesn't overwrite an existing ID.
func TestUserBeforeCreate_PreservesExistingID(t *testing.T) {
	existingID := uuid.New().String()
	user := &models.User{
		ID:   existingID,
		Name: "Carla Customer",
		Role: models.RoleCustomer,
	}

	err := user.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.Equal(t, existingID, user.ID, "BeforeCreate should preserve existing ID")
}

// TestUserBeforeCreate_MultipleUsers verifies unique UUIDs are generated for multiple users.
func TestUserBeforeCreate_MultipleUsers(t *testing.T) {
	users := []*models.User{
		{Name: "A", Role: models.RoleCustomer},
		{Name: "B", Role: models.RoleAgent},
		{Name: "C", Role: models.RoleAdmin},
	}

	generatedIDs := make(map[string]bool)
	for _, user := range users {
		err := user.BeforeCreate(nil)
		assert.NoError(t, err)
		assert.NotContains(t, generatedIDs, user.ID, "Each user should have a unique ID")
		generatedIDs[user.ID] = true
	}
	assert.Equal(t, len(users), len(generatedIDs))
}

func TestUserIsAgent(t *testing.T) {
	assert.False(t, (&models.User{Role: models.RoleCustomer}).IsAgent())
	assert.True(t, (&models.User{Role: models.RoleAgent}).IsAgent())
	assert.True(t, (&models.User{Role: models.RoleAdmin}).IsAgent())
}

func TestSessionIsOpen(t *testing.T) {
	assert.True(t, (&models.ChatSession{Status: models.SessionWaiting}).IsOpen())
	assert.True(t, (&models.ChatSession{Status: models.SessionActive}).IsOpen())
	assert.False(t, (&models.ChatSession{Status: models.SessionClosed}).IsOpen())
}
