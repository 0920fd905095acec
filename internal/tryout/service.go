// Package tryout implements the tryout chat lifecycle: a chat starts when
// a team begins evaluating an applicant, accumulates messages while
// active, and terminates through exactly one of four outcomes (ended by
// team, ended by player, offer accepted, offer rejected), after which it
// is permanently read-only.
package tryout

import (
	"fmt"
	"log"
	"strings"
	"time"

	"aegischat/backend/internal/apperrors"
	"aegischat/backend/internal/models"
	"aegischat/backend/internal/storage"
)

// ApplicationTracker is the recruitment collaborator a tryout is started
// from.
type ApplicationTracker interface {
	GetApplication(id string) (*models.TeamApplication, error)
	MarkApplicationInTryout(id string) error
}

// TeamRoster is the membership collaborator invoked when an offer is
// accepted.
type TeamRoster interface {
	AddPlayerToTeam(teamID, playerID string) error
	GetTeamRepresentatives(teamID string) ([]string, error)
}

// Service enforces the lifecycle state machine. All terminal transitions
// go through the store's compare-and-set on the current tryout status, so
// two racing transitions can never both succeed; the loser reports
// ErrInvalidTransition.
type Service struct {
	Storage storage.Storage
	Apps    ApplicationTracker
	Roster  TeamRoster
}

// NewService creates the lifecycle engine.
func NewService(s storage.Storage, apps ApplicationTracker, roster TeamRoster) *Service {
	return &Service{Storage: s, Apps: apps, Roster: roster}
}

// StartTryout creates an active tryout chat from a pending application.
// The caller must be one of the team's representatives. On success the
// application is marked in-tryout and a system message opens the log.
func (s *Service) StartTryout(callerID, applicationID string) (*models.TryoutChat, error) {
	app, err := s.Apps.GetApplication(applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, fmt.Errorf("application %s: %w", applicationID, apperrors.ErrNotFound)
	}
	if app.Status != models.ApplicationPending {
		return nil, fmt.Errorf("application %s is %s: %w", applicationID, app.Status, apperrors.ErrInvalidTransition)
	}

	reps, err := s.Roster.GetTeamRepresentatives(app.TeamID)
	if err != nil {
		return nil, err
	}
	if !contains(reps, callerID) {
		return nil, fmt.Errorf("caller %s does not represent team %s: %w", callerID, app.TeamID, apperrors.ErrForbidden)
	}

	participants := append([]string{}, reps...)
	if !contains(participants, app.PlayerID) {
		participants = append(participants, app.PlayerID)
	}

	chat := &models.TryoutChat{
		TeamID:       app.TeamID,
		ApplicantID:  app.PlayerID,
		Participants: participants,
		Status:       models.ChatStatusActive,
		TryoutStatus: models.TryoutActive,
		Offer:        models.TeamOffer{Status: models.OfferNone},
	}
	if err := s.Storage.CreateTryoutChat(chat); err != nil {
		return nil, err
	}
	if err := s.Apps.MarkApplicationInTryout(app.ID); err != nil {
		return nil, err
	}

	opening := &models.TryoutMessage{
		ChatID:      chat.ID,
		Sender:      models.SystemSenderID,
		Message:     "Tryout started. The team is now evaluating this applicant.",
		MessageType: models.TryoutMsgSystem,
	}
	if err := s.Storage.AppendTryoutMessage(opening); err != nil {
		return nil, err
	}
	chat.Messages = append(chat.Messages, *opening)

	log.Printf("Tryout %s started for applicant %s by team %s", chat.ID, app.PlayerID, app.TeamID)
	return chat, nil
}

// GetChat returns a chat with its full message log. Only participants may
// read it.
func (s *Service) GetChat(callerID, chatID string) (*models.TryoutChat, error) {
	chat, err := s.Storage.GetTryoutChat(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, fmt.Errorf("tryout chat %s: %w", chatID, apperrors.ErrNotFound)
	}
	if !chat.HasParticipant(callerID) {
		return nil, fmt.Errorf("user %s is not a participant of chat %s: %w", callerID, chatID, apperrors.ErrForbidden)
	}
	return chat, nil
}

// ListChatsFor returns every tryout chat the user participates in.
func (s *Service) ListChatsFor(userID string) ([]models.TryoutChat, error) {
	return s.Storage.GetTryoutChatsForUser(userID)
}

// PostMessage appends a regular conversation message. This is the only
// path by which regular conversation grows, and it is closed as soon as
// the tryout leaves the active state.
func (s *Service) PostMessage(chatID, senderID, text string) (*models.TryoutMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("message text is required: %w", apperrors.ErrValidation)
	}

	chat, err := s.Storage.GetTryoutChat(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, fmt.Errorf("tryout chat %s: %w", chatID, apperrors.ErrNotFound)
	}
	if chat.IsTerminal() {
		return nil, fmt.Errorf("tryout chat %s has ended: %w", chatID, apperrors.ErrChatLocked)
	}
	if !chat.HasParticipant(senderID) {
		return nil, fmt.Errorf("user %s is not a participant of chat %s: %w", senderID, chatID, apperrors.ErrForbidden)
	}

	msg := &models.TryoutMessage{
		ChatID:      chatID,
		Sender:      senderID,
		Message:     text,
		MessageType: models.TryoutMsgText,
	}
	if err := s.Storage.AppendTryoutMessage(msg); err != nil {
		return nil, err
	}

	s.broadcast(models.TryoutRoom(chatID), models.EventNewTryoutMessage,
		models.TryoutMessagePayload{ChatID: chatID, Message: *msg})
	return msg, nil
}

// EndTryout terminates an active tryout without an offer. A non-empty
// reason is required. The compare-and-set on the active status makes the
// losing half of a concurrent termination fail with ErrInvalidTransition.
func (s *Service) EndTryout(chatID, endedByID, endedByKind, reason string) (*models.TryoutChat, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("end reason is required: %w", apperrors.ErrValidation)
	}

	var target string
	switch endedByKind {
	case models.EndedByTeam:
		target = models.TryoutEndedByTeam
	case models.EndedByPlayer:
		target = models.TryoutEndedByPlayer
	default:
		return nil, fmt.Errorf("unknown party kind %q: %w", endedByKind, apperrors.ErrValidation)
	}

	chat, err := s.Storage.GetTryoutChat(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, fmt.Errorf("tryout chat %s: %w", chatID, apperrors.ErrNotFound)
	}
	if err := s.checkParty(chat, endedByID, endedByKind); err != nil {
		return nil, err
	}

	now := time.Now()
	ok, err := s.Storage.UpdateTryoutStatusFrom(chatID, models.TryoutActive, map[string]interface{}{
		"tryout_status": target,
		"status":        models.ChatStatusCancelled,
		"locked":        true,
		"ended_at":      now,
		"ended_by_id":   endedByID,
		"ended_by_kind": endedByKind,
		"end_reason":    reason,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("tryout chat %s is no longer active: %w", chatID, apperrors.ErrInvalidTransition)
	}

	chat.TryoutStatus = target
	chat.Status = models.ChatStatusCancelled
	chat.Locked = true
	chat.EndedAt = &now
	chat.EndedByID = endedByID
	chat.EndedByKind = endedByKind
	chat.EndReason = reason

	note := &models.TryoutMessage{
		ChatID:      chatID,
		Sender:      models.SystemSenderID,
		Message:     fmt.Sprintf("Tryout ended by the %s. Reason: %s", endedByKind, reason),
		MessageType: models.TryoutMsgSystem,
	}
	if err := s.Storage.AppendTryoutMessage(note); err != nil {
		return nil, err
	}
	chat.Messages = append(chat.Messages, *note)

	s.broadcast(models.TryoutRoom(chatID), models.EventTryoutEnded, models.TryoutEndedPayload{
		ChatID:       chatID,
		TryoutStatus: target,
		EndedBy:      endedByID,
		EndedByKind:  endedByKind,
		Reason:       reason,
		Message:      *note,
	})
	return chat, nil
}

// SendOffer moves an active tryout to offer_sent and records the pending
// offer. Only a team representative may send it.
func (s *Service) SendOffer(chatID, callerID, message string) (*models.TryoutChat, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("offer message is required: %w", apperrors.ErrValidation)
	}

	chat, err := s.Storage.GetTryoutChat(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, fmt.Errorf("tryout chat %s: %w", chatID, apperrors.ErrNotFound)
	}
	if err := s.checkParty(chat, callerID, models.EndedByTeam); err != nil {
		return nil, err
	}

	now := time.Now()
	ok, err := s.Storage.UpdateTryoutStatusFrom(chatID, models.TryoutActive, map[string]interface{}{
		"tryout_status": models.TryoutOfferSent,
		"offer_status":  models.OfferPending,
		"offer_sent_at": now,
		"offer_message": message,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("tryout chat %s is no longer active: %w", chatID, apperrors.ErrInvalidTransition)
	}

	chat.TryoutStatus = models.TryoutOfferSent
	chat.Offer = models.TeamOffer{Status: models.OfferPending, SentAt: &now, Message: message}

	offerMsg := &models.TryoutMessage{
		ChatID:      chatID,
		Sender:      callerID,
		Message:     message,
		MessageType: models.TryoutMsgTeamOffer,
	}
	if err := s.Storage.AppendTryoutMessage(offerMsg); err != nil {
		return nil, err
	}
	chat.Messages = append(chat.Messages, *offerMsg)

	s.broadcast(models.TryoutRoom(chatID), models.EventTeamOfferSent, models.TeamOfferSentPayload{
		ChatID:  chatID,
		Offer:   chat.Offer,
		Message: *offerMsg,
	})
	return chat, nil
}

// AcceptOffer is the applicant's acceptance of a pending offer. The chat
// locks, and the membership collaborator adds the player to the team. The
// compare-and-set on offer_sent guarantees the side effect runs at most
// once; a retry after success reports ErrInvalidTransition.
func (s *Service) AcceptOffer(chatID, responderID string) (*models.TryoutChat, error) {
	chat, err := s.Storage.GetTryoutChat(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, fmt.Errorf("tryout chat %s: %w", chatID, apperrors.ErrNotFound)
	}
	if responderID != chat.ApplicantID {
		return nil, fmt.Errorf("only the applicant may respond to the offer: %w", apperrors.ErrForbidden)
	}

	now := time.Now()
	ok, err := s.Storage.UpdateTryoutStatusFrom(chatID, models.TryoutOfferSent, map[string]interface{}{
		"tryout_status":      models.TryoutOfferAccepted,
		"status":             models.ChatStatusCompleted,
		"offer_status":       models.OfferAccepted,
		"offer_responded_at": now,
		"locked":             true,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no pending offer on chat %s: %w", chatID, apperrors.ErrInvalidTransition)
	}

	if err := s.Roster.AddPlayerToTeam(chat.TeamID, chat.ApplicantID); err != nil {
		// The transition is committed; surface the roster failure so the
		// operator can repair membership, but the chat stays accepted.
		log.Printf("ERROR: Offer accepted on chat %s but roster update failed: %v", chatID, err)
		return nil, err
	}

	chat.TryoutStatus = models.TryoutOfferAccepted
	chat.Status = models.ChatStatusCompleted
	chat.Offer.Status = models.OfferAccepted
	chat.Offer.RespondedAt = &now
	chat.Locked = true

	note := &models.TryoutMessage{
		ChatID:      chatID,
		Sender:      models.SystemSenderID,
		Message:     "Offer accepted. The applicant has joined the team.",
		MessageType: models.TryoutMsgSystem,
	}
	if err := s.Storage.AppendTryoutMessage(note); err != nil {
		return nil, err
	}
	chat.Messages = append(chat.Messages, *note)

	s.broadcast(models.TryoutRoom(chatID), models.EventTeamOfferAccepted, models.TeamOfferRespondedPayload{
		ChatID:       chatID,
		TryoutStatus: models.TryoutOfferAccepted,
		Message:      *note,
	})
	return chat, nil
}

// RejectOffer is the applicant's rejection of a pending offer. The reason
// is optional.
func (s *Service) RejectOffer(chatID, responderID, reason string) (*models.TryoutChat, error) {
	chat, err := s.Storage.GetTryoutChat(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, fmt.Errorf("tryout chat %s: %w", chatID, apperrors.ErrNotFound)
	}
	if responderID != chat.ApplicantID {
		return nil, fmt.Errorf("only the applicant may respond to the offer: %w", apperrors.ErrForbidden)
	}

	now := time.Now()
	ok, err := s.Storage.UpdateTryoutStatusFrom(chatID, models.TryoutOfferSent, map[string]interface{}{
		"tryout_status":      models.TryoutOfferRejected,
		"status":             models.ChatStatusCancelled,
		"offer_status":       models.OfferRejected,
		"offer_responded_at": now,
		"locked":             true,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no pending offer on chat %s: %w", chatID, apperrors.ErrInvalidTransition)
	}

	chat.TryoutStatus = models.TryoutOfferRejected
	chat.Status = models.ChatStatusCancelled
	chat.Offer.Status = models.OfferRejected
	chat.Offer.RespondedAt = &now
	chat.Locked = true

	text := "Offer declined by the applicant."
	if reason = strings.TrimSpace(reason); reason != "" {
		text = fmt.Sprintf("Offer declined by the applicant. Reason: %s", reason)
	}
	note := &models.TryoutMessage{
		ChatID:      chatID,
		Sender:      models.SystemSenderID,
		Message:     text,
		MessageType: models.TryoutMsgSystem,
	}
	if err := s.Storage.AppendTryoutMessage(note); err != nil {
		return nil, err
	}
	chat.Messages = append(chat.Messages, *note)

	s.broadcast(models.TryoutRoom(chatID), models.EventTeamOfferRejected, models.TeamOfferRespondedPayload{
		ChatID:       chatID,
		TryoutStatus: models.TryoutOfferRejected,
		Message:      *note,
	})
	return chat, nil
}

// checkParty verifies the actor really is the party kind it claims:
// the applicant for "player", a representative (any non-applicant
// participant) for "team".
func (s *Service) checkParty(chat *models.TryoutChat, actorID, kind string) error {
	switch kind {
	case models.EndedByPlayer:
		if actorID != chat.ApplicantID {
			return fmt.Errorf("user %s is not the applicant: %w", actorID, apperrors.ErrForbidden)
		}
	case models.EndedByTeam:
		if actorID == chat.ApplicantID || !chat.HasParticipant(actorID) {
			return fmt.Errorf("user %s does not represent the team: %w", actorID, apperrors.ErrForbidden)
		}
	}
	return nil
}

// broadcast publishes the event after the mutation has committed. Delivery
// is fire-and-forget; a reconnecting client re-fetches state instead.
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

func contains(set []string, id string) bool {
	for _, s := range set {
		if s == id {
			return true
		}
	}
	return false
}
