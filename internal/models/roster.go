package models

import (
	"time"

	"gorm.io/gorm"
)

// Team application states as tracked by the recruitment flow. A tryout may
// only be started from a pending application.
const (
	ApplicationPending  = "pending"
	ApplicationInTryout = "in_tryout"
	ApplicationAccepted = "accepted"
	ApplicationRejected = "rejected"
)

// TeamApplication is a player's request to join a team.
type TeamApplication struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	TeamID    string    `gorm:"not null;index" json:"teamId"`
	PlayerID  string    `gorm:"not null;index" json:"playerId"`
	Status    string    `gorm:"not null;default:'pending';index" json:"status"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TeamMember is a player's membership in a team. Representatives
// (captain or manager roles) may act for the team in a tryout chat.
type TeamMember struct {
	gorm.Model
	TeamID   string    `gorm:"not null;index" json:"teamId"`
	PlayerID string    `gorm:"not null;index" json:"playerId"`
	Role     string    `gorm:"default:'player'" json:"role"`
	IsActive bool      `gorm:"default:true" json:"isActive"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Membership roles permitted to represent the team.
const (
	RolePlayer  = "player"
	RoleCaptain = "captain"
	RoleManager = "manager"
)

// Tournament is the slice of the tournament record this service reads when
// composing reference messages.
type Tournament struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Logo string `json:"logo,omitempty"`
}
