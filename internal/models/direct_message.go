package models

import "time"

// SystemSenderID is the reserved identity for system-originated messages.
// It is also the pseudo-peer id under which a user's system notifications
// are listed as a conversation.
const SystemSenderID = "system"

// Direct message kinds.
const (
	MsgTypeText                = "text"
	MsgTypeInvitation          = "invitation"
	MsgTypeTournamentReference = "tournament_reference"
	MsgTypeTournamentInvite    = "tournament_invite"
	MsgTypeMatchScheduled      = "match_scheduled"
	MsgTypeSystem              = "system"
)

// Invitation response states. A message of type invitation transitions
// pending->accepted or pending->declined exactly once.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

// InvitationMeta carries the team context rendered with an invitation message.
type InvitationMeta struct {
	InvitationID string `json:"invitationId"`
	TeamName     string `json:"teamName,omitempty"`
	TeamTag      string `json:"teamTag,omitempty"`
	TeamLogo     string `json:"teamLogo,omitempty"`
}

// TournamentMeta carries the tournament context for reference and invite
// messages. Alert is a client-visible hint that a browser notification
// should be raised (set for tournament_invite only).
type TournamentMeta struct {
	TournamentID string `json:"tournamentId"`
	Name         string `json:"name,omitempty"`
	Logo         string `json:"logo,omitempty"`
	Alert        bool   `json:"alert,omitempty"`
}

// MatchMeta carries the match context for match_scheduled messages.
type MatchMeta struct {
	MatchID     string     `json:"matchId"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
}

// MessageMetadata is the typed payload bag for a direct message. It is a
// tagged variant keyed by the message type: at most one branch is set, and
// plain text messages carry none.
type MessageMetadata struct {
	Invitation *InvitationMeta `json:"invitation,omitempty"`
	Tournament *TournamentMeta `json:"tournament,omitempty"`
	Match      *MatchMeta      `json:"match,omitempty"`
}

// IsZero reports whether no variant is set.
func (m MessageMetadata) IsZero() bool {
	return m.Invitation == nil && m.Tournament == nil && m.Match == nil
}

// DirectMessage is one player-to-player (or system-to-player) message.
// Rows are immutable after creation except InvitationStatus.
// Conversations have no container entity; they are reconstructed by
// querying on the (sender, receiver) pair.
type DirectMessage struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	SenderID   string `gorm:"not null;index:idx_dm_pair" json:"senderId"`
	ReceiverID string `gorm:"not null;index:idx_dm_pair;index:idx_dm_receiver" json:"receiverId"`
	Message    string `gorm:"type:text;not null" json:"message"`

	MessageType string          `gorm:"not null;default:'text'" json:"messageType"`
	Metadata    MessageMetadata `gorm:"serializer:json" json:"metadata,omitempty"`

	TournamentID *string `json:"tournamentId,omitempty"`
	MatchID      *string `json:"matchId,omitempty"`
	InvitationID *string `json:"invitationId,omitempty"`

	// InvitationStatus is only meaningful when MessageType is invitation
	// or tournament_invite.
	InvitationStatus string `gorm:"default:'pending'" json:"invitationStatus,omitempty"`

	Timestamp time.Time `gorm:"index:idx_dm_receiver;index" json:"timestamp"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
