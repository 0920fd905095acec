package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"aegischat/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// EventsChannel is the Redis Pub/Sub channel every committed mutation is
// announced on. Hubs on all instances subscribe to it and fan events out
// to their local rooms.
const EventsChannel = "chat:events"

// Storage is the persistence and event-bus surface consumed by the chat
// services. PostgreSQL (via gorm) backs the records; Redis carries the
// post-commit events.
type Storage interface {
	// Tryout chats
	CreateTryoutChat(chat *models.TryoutChat) error
	GetTryoutChat(chatID string) (*models.TryoutChat, error)
	GetTryoutChatsForUser(userID string) ([]models.TryoutChat, error)
	AppendTryoutMessage(msg *models.TryoutMessage) error
	// UpdateTryoutStatusFrom applies updates only while the chat is still
	// in the expected tryout status. It reports false when the guard
	// fails, i.e. the caller lost the transition race.
	UpdateTryoutStatusFrom(chatID, expected string, updates map[string]interface{}) (bool, error)
	DeleteExpiredTryoutChats(now time.Time) (int64, error)

	// Direct messages
	SaveDirectMessage(msg *models.DirectMessage) error
	GetConversation(userA, userB string, before *time.Time, limit int) ([]models.DirectMessage, error)
	GetSystemMessages(userID string, before *time.Time, limit int) ([]models.DirectMessage, error)
	GetConversationPeers(userID string) ([]string, bool, error)
	GetInvitationMessage(invitationID string) (*models.DirectMessage, error)
	UpdateInvitationStatusFrom(invitationID, expected, next string) (bool, error)

	// Recruitment collaborators
	GetApplication(id string) (*models.TeamApplication, error)
	MarkApplicationInTryout(id string) error
	AddPlayerToTeam(teamID, playerID string) error
	GetTeamRepresentatives(teamID string) ([]string, error)
	GetTournament(id string) (*models.Tournament, error)

	// Event bus
	PublishEvent(event models.Event) error
	SubscribeEvents() *redis.PubSub
}

// Service is the gorm+redis implementation of Storage.
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

// --- Tryout chats ---

func (s *Service) CreateTryoutChat(chat *models.TryoutChat) error {
	if err := s.DB.Create(chat).Error; err != nil {
		log.Printf("ERROR: Failed to create tryout chat for team %s: %v", chat.TeamID, err)
		return err
	}
	return nil
}

// GetTryoutChat loads a chat with its message log in insertion order.
func (s *Service) GetTryoutChat(chatID string) (*models.TryoutChat, error) {
	var chat models.TryoutChat
	err := s.DB.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).Where("id = ?", chatID).First(&chat).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to get tryout chat %s: %v", chatID, err)
		return nil, err
	}
	return &chat, nil
}

// GetTryoutChatsForUser returns every chat the user participates in,
// newest first, without the message logs.
func (s *Service) GetTryoutChatsForUser(userID string) ([]models.TryoutChat, error) {
	var chats []models.TryoutChat
	err := s.DB.Where("? = ANY(participants)", userID).
		Order("created_at desc").
		Find(&chats).Error
	if err != nil {
		log.Printf("ERROR: Failed to list tryout chats for user %s: %v", userID, err)
		return nil, err
	}
	return chats, nil
}

// AppendTryoutMessage inserts one row into the chat's append-only log.
// msg.ID is populated by the insert and becomes the authoritative message
// identifier.
func (s *Service) AppendTryoutMessage(msg *models.TryoutMessage) error {
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to append message to chat %s: %v", msg.ChatID, err)
		return err
	}
	return nil
}

// UpdateTryoutStatusFrom is the per-chat compare-and-set: the row is only
// touched while tryout_status still equals expected. Exactly one terminal
// transition per chat can ever pass this guard.
func (s *Service) UpdateTryoutStatusFrom(chatID, expected string, updates map[string]interface{}) (bool, error) {
	res := s.DB.Model(&models.TryoutChat{}).
		Where("id = ? AND tryout_status = ?", chatID, expected).
		Updates(updates)
	if res.Error != nil {
		log.Printf("ERROR: Failed to update tryout chat %s: %v", chatID, res.Error)
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteExpiredTryoutChats removes chats whose soft TTL has passed,
// together with their message logs.
func (s *Service) DeleteExpiredTryoutChats(now time.Time) (int64, error) {
	var removed int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&models.TryoutChat{}).
			Where("expires_at < ?", now).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("chat_id IN ?", ids).
			Delete(&models.TryoutMessage{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.TryoutChat{})
		removed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		log.Printf("ERROR: Expiry sweep failed: %v", err)
		return 0, err
	}
	return removed, nil
}

// --- Direct messages ---

func (s *Service) SaveDirectMessage(msg *models.DirectMessage) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save direct message %s -> %s: %v", msg.SenderID, msg.ReceiverID, err)
		return err
	}
	return nil
}

// GetConversation returns messages between the pair, oldest to newest,
// bounded by the optional before cursor (strictly earlier) and limit.
func (s *Service) GetConversation(userA, userB string, before *time.Time, limit int) ([]models.DirectMessage, error) {
	q := s.DB.Where(
		s.DB.Where("sender_id = ? AND receiver_id = ?", userA, userB).
			Or("sender_id = ? AND receiver_id = ?", userB, userA))
	return s.fetchPage(q, before, limit)
}

// GetSystemMessages returns the user's system-originated notifications,
// same paging rules as GetConversation.
func (s *Service) GetSystemMessages(userID string, before *time.Time, limit int) ([]models.DirectMessage, error) {
	q := s.DB.Where("sender_id = ? AND receiver_id = ?", models.SystemSenderID, userID)
	return s.fetchPage(q, before, limit)
}

// fetchPage selects the newest page first, then reverses it so callers
// always see oldest->newest.
func (s *Service) fetchPage(q *gorm.DB, before *time.Time, limit int) ([]models.DirectMessage, error) {
	if before != nil {
		q = q.Where("timestamp < ?", *before)
	}
	var msgs []models.DirectMessage
	if err := q.Order("timestamp desc, id desc").Limit(limit).Find(&msgs).Error; err != nil {
		log.Printf("ERROR: Failed to fetch conversation page: %v", err)
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// GetConversationPeers returns the distinct counterparties the user has
// exchanged non-system direct messages with, and whether any system
// message exists for the user.
func (s *Service) GetConversationPeers(userID string) ([]string, bool, error) {
	rawSQL := `
        SELECT DISTINCT
            CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS peer
        FROM direct_messages
        WHERE sender_id <> ?
          AND (sender_id = ? OR receiver_id = ?)
    `

	var peers []string
	err := s.DB.Raw(rawSQL, userID, models.SystemSenderID, userID, userID).Scan(&peers).Error
	if err != nil {
		log.Printf("ERROR: Failed to list conversation peers for %s: %v", userID, err)
		return nil, false, err
	}

	filtered := peers[:0]
	for _, p := range peers {
		if p != "" && p != userID && p != models.SystemSenderID {
			filtered = append(filtered, p)
		}
	}

	var systemCount int64
	err = s.DB.Model(&models.DirectMessage{}).
		Where("sender_id = ? AND receiver_id = ?", models.SystemSenderID, userID).
		Limit(1).
		Count(&systemCount).Error
	if err != nil {
		return nil, false, err
	}

	return filtered, systemCount > 0, nil
}

// GetInvitationMessage finds the newest direct message carrying the given
// invitation reference.
func (s *Service) GetInvitationMessage(invitationID string) (*models.DirectMessage, error) {
	var msg models.DirectMessage
	err := s.DB.Where("invitation_id = ?", invitationID).Last(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to find invitation message %s: %v", invitationID, err)
		return nil, err
	}
	return &msg, nil
}

// UpdateInvitationStatusFrom transitions every message referencing the
// invitation, guarded on the expected current status so the transition
// fires exactly once.
func (s *Service) UpdateInvitationStatusFrom(invitationID, expected, next string) (bool, error) {
	res := s.DB.Model(&models.DirectMessage{}).
		Where("invitation_id = ? AND invitation_status = ?", invitationID, expected).
		Update("invitation_status", next)
	if res.Error != nil {
		log.Printf("ERROR: Failed to update invitation %s: %v", invitationID, res.Error)
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// --- Recruitment collaborators ---

func (s *Service) GetApplication(id string) (*models.TeamApplication, error) {
	var app models.TeamApplication
	err := s.DB.Where("id = ?", id).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to get application %s: %v", id, err)
		return nil, err
	}
	return &app, nil
}

func (s *Service) MarkApplicationInTryout(id string) error {
	return s.DB.Model(&models.TeamApplication{}).
		Where("id = ?", id).
		Update("status", models.ApplicationInTryout).Error
}

func (s *Service) AddPlayerToTeam(teamID, playerID string) error {
	member := models.TeamMember{
		TeamID:   teamID,
		PlayerID: playerID,
		Role:     models.RolePlayer,
		IsActive: true,
		JoinedAt: time.Now(),
	}
	if err := s.DB.Create(&member).Error; err != nil {
		log.Printf("ERROR: Failed to add player %s to team %s: %v", playerID, teamID, err)
		return err
	}
	return nil
}

// GetTeamRepresentatives returns the active captains and managers who may
// act for the team in a tryout chat.
func (s *Service) GetTeamRepresentatives(teamID string) ([]string, error) {
	var playerIDs []string
	err := s.DB.Model(&models.TeamMember{}).
		Where("team_id = ? AND is_active = ? AND role IN ?",
			teamID, true, []string{models.RoleCaptain, models.RoleManager}).
		Pluck("player_id", &playerIDs).Error
	if err != nil {
		log.Printf("ERROR: Failed to get representatives for team %s: %v", teamID, err)
		return nil, err
	}
	return playerIDs, nil
}

func (s *Service) GetTournament(id string) (*models.Tournament, error) {
	var t models.Tournament
	err := s.DB.Where("id = ?", id).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// --- Event bus ---

// PublishEvent announces a committed mutation on the shared channel.
func (s *Service) PublishEvent(event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := s.Redis.Publish(s.Ctx, EventsChannel, string(payload)).Err(); err != nil {
		log.Printf("ERROR: Failed to publish %s to room %s: %v", event.Name, event.Room, err)
		return err
	}
	return nil
}

// SubscribeEvents opens the Pub/Sub subscription the hub drains.
func (s *Service) SubscribeEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, EventsChannel)
}
