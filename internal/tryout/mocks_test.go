package tryout_test

import (
	"time"

	"aegischat/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateTryoutChat(chat *models.TryoutChat) error {
	args := m.Called(chat)
	return args.Error(0)
}

func (m *MockStorage) GetTryoutChat(chatID string) (*models.TryoutChat, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TryoutChat), args.Error(1)
}

func (m *MockStorage) GetTryoutChatsForUser(userID string) ([]models.TryoutChat, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TryoutChat), args.Error(1)
}

func (m *MockStorage) AppendTryoutMessage(msg *models.TryoutMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) UpdateTryoutStatusFrom(chatID, expected string, updates map[string]interface{}) (bool, error) {
	args := m.Called(chatID, expected, updates)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) DeleteExpiredTryoutChats(now time.Time) (int64, error) {
	args := m.Called(now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) SaveDirectMessage(msg *models.DirectMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) GetConversation(userA, userB string, before *time.Time, limit int) ([]models.DirectMessage, error) {
	args := m.Called(userA, userB, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DirectMessage), args.Error(1)
}

func (m *MockStorage) GetSystemMessages(userID string, before *time.Time, limit int) ([]models.DirectMessage, error) {
	args := m.Called(userID, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DirectMessage), args.Error(1)
}

func (m *MockStorage) GetConversationPeers(userID string) ([]string, bool, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]string), args.Bool(1), args.Error(2)
}

func (m *MockStorage) GetInvitationMessage(invitationID string) (*models.DirectMessage, error) {
	args := m.Called(invitationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DirectMessage), args.Error(1)
}

func (m *MockStorage) UpdateInvitationStatusFrom(invitationID, expected, next string) (bool, error) {
	args := m.Called(invitationID, expected, next)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) GetApplication(id string) (*models.TeamApplication, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamApplication), args.Error(1)
}

func (m *MockStorage) MarkApplicationInTryout(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) AddPlayerToTeam(teamID, playerID string) error {
	args := m.Called(teamID, playerID)
	return args.Error(0)
}

func (m *MockStorage) GetTeamRepresentatives(teamID string) ([]string, error) {
	args := m.Called(teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) GetTournament(id string) (*models.Tournament, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tournament), args.Error(1)
}

func (m *MockStorage) PublishEvent(event models.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockStorage) SubscribeEvents() *redis.PubSub {
	args := m.Called()
	return args.Get(0).(*redis.PubSub)
}
