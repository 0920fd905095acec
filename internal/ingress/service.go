// Package ingress validates and appends incoming direct messages: player
// to player chat, system-generated notifications, and tournament
// references. Tryout chat messages go through the tryout engine instead.
package ingress

import (
	"fmt"
	"log"
	"strings"
	"time"

	"aegischat/backend/internal/apperrors"
	"aegischat/backend/internal/config"
	"aegischat/backend/internal/models"
	"aegischat/backend/internal/storage"
)

// Service is the direct-message ingress.
type Service struct {
	Storage storage.Storage
}

// NewService creates the ingress service.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// Notification describes a direct message to create. SenderID is only
// honored when it names the reserved system identity; otherwise the
// authenticated caller is the sender.
type Notification struct {
	SenderID     string
	ReceiverID   string
	Message      string
	MessageType  string
	TournamentID *string
	MatchID      *string
	InvitationID *string
	Metadata     models.MessageMetadata
}

var validMessageTypes = map[string]bool{
	models.MsgTypeText:                true,
	models.MsgTypeInvitation:          true,
	models.MsgTypeTournamentReference: true,
	models.MsgTypeTournamentInvite:    true,
	models.MsgTypeMatchScheduled:      true,
	models.MsgTypeSystem:              true,
}

// SendDirect appends a direct message and announces it to the receiver's
// personal room only. System-originated notifications bypass the sender
// check; tournament invites carry a client-visible alert hint.
func (s *Service) SendDirect(callerID string, n Notification) (*models.DirectMessage, error) {
	if strings.TrimSpace(n.ReceiverID) == "" {
		return nil, fmt.Errorf("receiver id is required: %w", apperrors.ErrValidation)
	}
	if strings.TrimSpace(n.Message) == "" {
		return nil, fmt.Errorf("message text is required: %w", apperrors.ErrValidation)
	}

	msgType := n.MessageType
	if msgType == "" {
		msgType = models.MsgTypeText
	}
	if !validMessageTypes[msgType] {
		return nil, fmt.Errorf("unknown message type %q: %w", msgType, apperrors.ErrValidation)
	}

	sender := callerID
	if n.SenderID == models.SystemSenderID {
		sender = models.SystemSenderID
	}

	msg := &models.DirectMessage{
		SenderID:     sender,
		ReceiverID:   n.ReceiverID,
		Message:      n.Message,
		MessageType:  msgType,
		Metadata:     n.Metadata,
		TournamentID: n.TournamentID,
		MatchID:      n.MatchID,
		InvitationID: n.InvitationID,
	}
	if msgType == models.MsgTypeInvitation || msgType == models.MsgTypeTournamentInvite {
		msg.InvitationStatus = models.InvitationPending
	}
	if msgType == models.MsgTypeTournamentInvite {
		if msg.Metadata.Tournament == nil {
			msg.Metadata.Tournament = &models.TournamentMeta{}
		}
		if n.TournamentID != nil {
			msg.Metadata.Tournament.TournamentID = *n.TournamentID
		}
		msg.Metadata.Tournament.Alert = true
	}

	if err := s.Storage.SaveDirectMessage(msg); err != nil {
		return nil, err
	}

	s.broadcast(models.UserRoom(msg.ReceiverID), models.EventReceiveMessage, msg)
	return msg, nil
}

// SendTournamentReference sends a tournament_reference message to a team
// captain on behalf of the caller.
func (s *Service) SendTournamentReference(callerID, tournamentID, captainID string) (*models.DirectMessage, error) {
	if strings.TrimSpace(captainID) == "" {
		return nil, fmt.Errorf("captain id is required: %w", apperrors.ErrValidation)
	}

	t, err := s.Storage.GetTournament(tournamentID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("tournament %s: %w", tournamentID, apperrors.ErrNotFound)
	}

	return s.SendDirect(callerID, Notification{
		ReceiverID:   captainID,
		Message:      fmt.Sprintf("Check out this tournament: %s", t.Name),
		MessageType:  models.MsgTypeTournamentReference,
		TournamentID: &t.ID,
		Metadata: models.MessageMetadata{
			Tournament: &models.TournamentMeta{TournamentID: t.ID, Name: t.Name, Logo: t.Logo},
		},
	})
}

// FetchConversation returns the messages between the caller and peer
// (oldest to newest). The reserved system peer selects the caller's
// system notifications instead. The page is bounded by before (strictly
// earlier) and limit (default 50, hard cap 100).
func (s *Service) FetchConversation(callerID, peerID string, before *time.Time, limit int) ([]models.DirectMessage, error) {
	if strings.TrimSpace(peerID) == "" {
		return nil, fmt.Errorf("peer id is required: %w", apperrors.ErrValidation)
	}
	limit = clampLimit(limit)
	if peerID == models.SystemSenderID {
		return s.Storage.GetSystemMessages(callerID, before, limit)
	}
	return s.Storage.GetConversation(callerID, peerID, before, limit)
}

// ListConversationPeers returns the distinct counterparties the user has
// exchanged direct messages with. The synthetic system peer is listed
// first when any system message exists for the user.
func (s *Service) ListConversationPeers(userID string) ([]string, error) {
	peers, hasSystem, err := s.Storage.GetConversationPeers(userID)
	if err != nil {
		return nil, err
	}
	if hasSystem {
		peers = append([]string{models.SystemSenderID}, peers...)
	}
	return peers, nil
}

// RespondToInvitation transitions an invitation message pending->accepted
// or pending->declined, exactly once. Only the receiver may respond.
func (s *Service) RespondToInvitation(callerID, invitationID string, accept bool) (*models.DirectMessage, error) {
	msg, err := s.Storage.GetInvitationMessage(invitationID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, fmt.Errorf("invitation %s: %w", invitationID, apperrors.ErrNotFound)
	}
	if msg.ReceiverID != callerID {
		return nil, fmt.Errorf("user %s is not the invitee: %w", callerID, apperrors.ErrForbidden)
	}

	next := models.InvitationDeclined
	if accept {
		next = models.InvitationAccepted
	}
	ok, err := s.Storage.UpdateInvitationStatusFrom(invitationID, models.InvitationPending, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("invitation %s already answered: %w", invitationID, apperrors.ErrInvalidTransition)
	}

	msg.InvitationStatus = next
	return msg, nil
}

func (s *Service) broadcast(room, name string, payload any) {
	event, err := models.NewEvent(room, name, payload)
	if err != nil {
		log.Printf("ERROR: Failed to encode %s event: %v", name, err)
		return
	}
	if err := s.Storage.PublishEvent(event); err != nil {
		log.Printf("ERROR: Failed to publish %s event for %s: %v", name, room, err)
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return config.DefaultPageLimit
	}
	if limit > config.MaxPageLimit {
		return config.MaxPageLimit
	}
	return limit
}
