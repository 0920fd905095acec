package models_test

import (
	"testing"
	"time"

	"aegischat/backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

// TestTryoutChatBeforeCreate_GeneratesIDAndTTL verifies that the hook fills
// the ID and the soft expiry when the caller left them unset.
func TestTryoutChatBeforeCreate_GeneratesIDAndTTL(t *testing.T) {
	// Arrange
	chat := &models.TryoutChat{
		TeamID:       "team-1",
		ApplicantID:  "player-1",
		Participants: pq.StringArray{"captain-1", "player-1"},
	}
	assert.Empty(t, chat.ID)
	assert.True(t, chat.ExpiresAt.IsZero())

	// Act
	err := chat.BeforeCreate(nil)

	// Assert
	assert.NoError(t, err)
	_, parseErr := uuid.Parse(chat.ID)
	assert.NoError(t, parseErr, "generated ID must be a valid UUID")

	wantExpiry := time.Now().Add(models.TryoutChatTTL)
	assert.WithinDuration(t, wantExpiry, chat.ExpiresAt, time.Minute)
}

// TestTryoutChatBeforeCreate_PreservesExistingValues verifies the hook does
// not overwrite a caller-provided ID or expiry.
func TestTryoutChatBeforeCreate_PreservesExistingValues(t *testing.T) {
	existingID := uuid.New().String()
	expiry := time.Now().Add(time.Hour)
	chat := &models.TryoutChat{ID: existingID, ExpiresAt: expiry}

	err := chat.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.Equal(t, existingID, chat.ID)
	assert.Equal(t, expiry, chat.ExpiresAt)
}

// TestTryoutChatIsTerminal verifies active is the only non-terminal state.
func TestTryoutChatIsTerminal(t *testing.T) {
	tests := []struct {
		status   string
		terminal bool
	}{
		{models.TryoutActive, false},
		{models.TryoutEndedByTeam, true},
		{models.TryoutEndedByPlayer, true},
		{models.TryoutOfferSent, true},
		{models.TryoutOfferAccepted, true},
		{models.TryoutOfferRejected, true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			chat := &models.TryoutChat{TryoutStatus: tt.status}
			assert.Equal(t, tt.terminal, chat.IsTerminal())
		})
	}
}

func TestTryoutChatHasParticipant(t *testing.T) {
	chat := &models.TryoutChat{Participants: pq.StringArray{"captain-1", "player-1"}}

	assert.True(t, chat.HasParticipant("player-1"))
	assert.True(t, chat.HasParticipant("captain-1"))
	assert.False(t, chat.HasParticipant("stranger"))
	assert.False(t, chat.HasParticipant(""))
}

// TestTryoutMessageBeforeCreate_StampsTimestamp verifies the informational
// timestamp is filled on insert.
func TestTryoutMessageBeforeCreate_StampsTimestamp(t *testing.T) {
	msg := &models.TryoutMessage{ChatID: "chat-1", Sender: "player-1", Message: "hello"}

	err := msg.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now(), msg.Timestamp, time.Minute)
}
