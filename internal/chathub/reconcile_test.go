package chathub_test

import (
	"testing"

	"aegischat/backend/internal/chathub"
	"aegischat/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempIDs(t *testing.T) {
	id := chathub.NewTempID()
	assert.True(t, chathub.IsTempID(id))
	assert.False(t, chathub.IsTempID("42"))
	assert.NotEqual(t, id, chathub.NewTempID())
}

func TestReconcile_ReplacesOptimisticEntry(t *testing.T) {
	local := []chathub.ViewMessage{
		{ID: "1", Sender: "system", Text: "Tryout started."},
		{ID: chathub.NewTempID(), Sender: "alice", Text: "hello"},
	}
	incoming := chathub.ViewMessage{ID: "7", Sender: "alice", Text: "hello"}

	out := chathub.ReconcileMessage(local, incoming)

	require.Len(t, out, 2)
	assert.Equal(t, "7", out[1].ID)
	assert.Equal(t, "hello", out[1].Text)
}

func TestReconcile_RefreshesKnownID(t *testing.T) {
	local := []chathub.ViewMessage{{ID: "7", Sender: "alice", Text: "hello"}}
	incoming := chathub.ViewMessage{ID: "7", Sender: "alice", Text: "hello", MessageType: models.TryoutMsgText}

	out := chathub.ReconcileMessage(local, incoming)

	require.Len(t, out, 1)
	assert.Equal(t, models.TryoutMsgText, out[0].MessageType)
}

func TestReconcile_AppendsNewMessage(t *testing.T) {
	local := []chathub.ViewMessage{{ID: "7", Sender: "alice", Text: "hello"}}
	incoming := chathub.ViewMessage{ID: "8", Sender: "captain-1", Text: "hi"}

	out := chathub.ReconcileMessage(local, incoming)

	require.Len(t, out, 2)
	assert.Equal(t, "8", out[1].ID)
}

func TestReconcile_SameTextDifferentSenderAppends(t *testing.T) {
	local := []chathub.ViewMessage{{ID: chathub.NewTempID(), Sender: "alice", Text: "gg"}}
	incoming := chathub.ViewMessage{ID: "9", Sender: "captain-1", Text: "gg"}

	out := chathub.ReconcileMessage(local, incoming)

	require.Len(t, out, 2)
	assert.True(t, chathub.IsTempID(out[0].ID))
}

func TestReconcile_InputNotMutated(t *testing.T) {
	tempID := chathub.NewTempID()
	local := []chathub.ViewMessage{{ID: tempID, Sender: "alice", Text: "hello"}}

	_ = chathub.ReconcileMessage(local, chathub.ViewMessage{ID: "7", Sender: "alice", Text: "hello"})

	assert.Equal(t, tempID, local[0].ID)
}
