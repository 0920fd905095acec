package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Coarse lifecycle bucket for quick "is this chat still live" queries.
const (
	ChatStatusActive    = "active"
	ChatStatusCompleted = "completed"
	ChatStatusCancelled = "cancelled"
)

// TryoutStatus is the authoritative fine-grained state. Everything other
// than TryoutActive is terminal: the chat is locked and no regular
// message may be appended.
const (
	TryoutActive        = "active"
	TryoutEndedByTeam   = "ended_by_team"
	TryoutEndedByPlayer = "ended_by_player"
	TryoutOfferSent     = "offer_sent"
	TryoutOfferAccepted = "offer_accepted"
	TryoutOfferRejected = "offer_rejected"
)

// TeamOffer status values. The status must mirror TryoutStatus:
// pending <=> offer_sent, accepted <=> offer_accepted, rejected <=> offer_rejected.
const (
	OfferNone     = "none"
	OfferPending  = "pending"
	OfferAccepted = "accepted"
	OfferRejected = "rejected"
)

// Which kind of party ended a tryout.
const (
	EndedByTeam   = "team"
	EndedByPlayer = "player"
)

// TryoutChatTTL is the soft TTL after which a chat is eligible for the
// expiry sweep.
const TryoutChatTTL = 7 * 24 * time.Hour

// TeamOffer holds the join-offer bookkeeping for a tryout chat. It is only
// meaningful once an offer has been sent (Status != none).
type TeamOffer struct {
	Status      string     `gorm:"default:'none'" json:"status"`
	SentAt      *time.Time `json:"sentAt,omitempty"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
	Message     string     `json:"message,omitempty"`
}

// TryoutChat represents one team<->applicant tryout conversation.
// The embedded message log is owned exclusively by this record; messages
// are appended as TryoutMessage rows keyed by ChatID.
type TryoutChat struct {
	ID          string `gorm:"primaryKey" json:"id"`
	TeamID      string `gorm:"not null;index:idx_team_applicant" json:"teamId"`
	ApplicantID string `gorm:"not null;index:idx_team_applicant" json:"applicantId"`
	// Participants is the set of identifiers permitted to post: the
	// applicant plus the team representatives.
	Participants pq.StringArray `gorm:"type:text[]" json:"participants"`

	Status       string `gorm:"not null;default:'active';index" json:"status"`
	TryoutStatus string `gorm:"not null;default:'active';index" json:"tryoutStatus"`

	Offer TeamOffer `gorm:"embedded;embeddedPrefix:offer_" json:"teamOffer"`

	// Locked caches "TryoutStatus is terminal" for fast read checks.
	Locked bool `gorm:"not null;default:false" json:"locked"`

	EndedAt     *time.Time `json:"endedAt,omitempty"`
	EndedByID   string     `json:"endedBy,omitempty"`
	EndedByKind string     `json:"endedByKind,omitempty"`
	EndReason   string     `json:"endReason,omitempty"`

	ExpiresAt time.Time `gorm:"index" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Messages []TryoutMessage `gorm:"foreignKey:ChatID;references:ID" json:"messages"`
}

// BeforeCreate fills the ID and the soft TTL if the caller left them unset.
func (c *TryoutChat) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.ExpiresAt.IsZero() {
		c.ExpiresAt = time.Now().Add(TryoutChatTTL)
	}
	return
}

// IsTerminal reports whether the chat has left the active state.
func (c *TryoutChat) IsTerminal() bool {
	return c.TryoutStatus != TryoutActive
}

// HasParticipant reports whether id is permitted to post in this chat.
func (c *TryoutChat) HasParticipant(id string) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// Tryout message kinds.
const (
	TryoutMsgText      = "text"
	TryoutMsgSystem    = "system"
	TryoutMsgTeamOffer = "team_offer"
)

// TryoutMessage is one entry in a tryout chat's append-only log.
// The database ID is the stable, authoritative message identifier the
// client uses to reconcile optimistic copies. Ordering is insertion order
// (ID ascending); Timestamp is informational.
type TryoutMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ChatID      string    `gorm:"not null;index" json:"chatId"`
	Sender      string    `gorm:"not null" json:"sender"` // player id or SystemSenderID
	Message     string    `gorm:"type:text;not null" json:"message"`
	MessageType string    `gorm:"not null;default:'text'" json:"messageType"`
	Timestamp   time.Time `json:"timestamp"`
	CreatedAt   time.Time `json:"-"`
}

// BeforeCreate stamps the informational timestamp if the caller left it unset.
func (m *TryoutMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	return
}
