package chathub

import (
	"strconv"
	"strings"
	"time"

	"aegischat/backend/internal/models"

	"github.com/google/uuid"
)

// tempIDPrefix marks client-generated identifiers for optimistic entries
// that have not been confirmed by the server yet.
const tempIDPrefix = "temp_"

// NewTempID generates an identifier for an optimistic local message.
func NewTempID() string {
	return tempIDPrefix + uuid.New().String()
}

// IsTempID reports whether the identifier is a client-generated temporary
// one.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

// ViewMessage is the client-session representation of one chat message.
// ID is either a temporary client id or the server's stable identifier.
type ViewMessage struct {
	ID          string
	Sender      string
	Text        string
	MessageType string
	Timestamp   time.Time
}

// ViewOf converts a server-authoritative message into its session
// representation.
func ViewOf(m models.TryoutMessage) ViewMessage {
	return ViewMessage{
		ID:          strconv.FormatUint(uint64(m.ID), 10),
		Sender:      m.Sender,
		Text:        m.Message,
		MessageType: m.MessageType,
		Timestamp:   m.Timestamp,
	}
}

// ReconcileMessage merges a server-authoritative message into the local
// list. An optimistic entry is matched by (sender, text) while its
// authoritative id is unknown and replaced in place; a message whose id is
// already present is refreshed in place; everything else is appended. The
// input slice is not mutated.
func ReconcileMessage(local []ViewMessage, incoming ViewMessage) []ViewMessage {
	for i, m := range local {
		if m.ID == incoming.ID ||
			(IsTempID(m.ID) && m.Sender == incoming.Sender && m.Text == incoming.Text) {
			out := make([]ViewMessage, len(local))
			copy(out, local)
			out[i] = incoming
			return out
		}
	}
	out := make([]ViewMessage, len(local), len(local)+1)
	copy(out, local)
	return append(out, incoming)
}
