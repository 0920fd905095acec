package chathub

import (
	"encoding/json"
	"fmt"

	"aegischat/backend/internal/models"
)

// Session models one user's client-side view of a selected tryout chat:
// the message list with any optimistic local entries, and the last known
// lifecycle state. ApplyEvent is a pure state step, so the reconciliation
// contract is testable without a network.
type Session struct {
	UserID         string
	SelectedChatID string

	TryoutStatus string
	Offer        models.TeamOffer
	EndedBy      string
	EndReason    string
	Messages     []ViewMessage
}

// NewSession creates a session with no chat selected.
func NewSession(userID string) *Session {
	return &Session{UserID: userID}
}

// SelectChat switches the session to a chat, seeding the view from the
// server-fetched record.
func (s *Session) SelectChat(chat *models.TryoutChat) {
	s.SelectedChatID = chat.ID
	s.TryoutStatus = chat.TryoutStatus
	s.Offer = chat.Offer
	s.EndedBy = chat.EndedByID
	s.EndReason = chat.EndReason
	s.Messages = make([]ViewMessage, 0, len(chat.Messages))
	for _, m := range chat.Messages {
		s.Messages = append(s.Messages, ViewOf(m))
	}
}

// AppendLocal applies an optimistic local send and returns the temporary
// entry. The server echo later replaces it via ApplyEvent.
func (s *Session) AppendLocal(text string) ViewMessage {
	m := ViewMessage{
		ID:          NewTempID(),
		Sender:      s.UserID,
		Text:        text,
		MessageType: models.TryoutMsgText,
	}
	s.Messages = append(s.Messages, m)
	return m
}

// ApplyEvent folds a server event into the view. Events for chats other
// than the selected one are ignored.
func (s *Session) ApplyEvent(event models.Event) error {
	switch event.Name {
	case models.EventNewTryoutMessage:
		var p models.TryoutMessagePayload
		if err := json.Unmarshal(event.Data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", event.Name, err)
		}
		if p.ChatID != s.SelectedChatID {
			return nil
		}
		s.Messages = ReconcileMessage(s.Messages, ViewOf(p.Message))

	case models.EventTryoutEnded:
		var p models.TryoutEndedPayload
		if err := json.Unmarshal(event.Data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", event.Name, err)
		}
		if p.ChatID != s.SelectedChatID {
			return nil
		}
		s.TryoutStatus = p.TryoutStatus
		s.EndedBy = p.EndedBy
		s.EndReason = p.Reason
		s.Messages = ReconcileMessage(s.Messages, ViewOf(p.Message))

	case models.EventTeamOfferSent:
		var p models.TeamOfferSentPayload
		if err := json.Unmarshal(event.Data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", event.Name, err)
		}
		if p.ChatID != s.SelectedChatID {
			return nil
		}
		s.TryoutStatus = models.TryoutOfferSent
		s.Offer = p.Offer
		s.Messages = ReconcileMessage(s.Messages, ViewOf(p.Message))

	case models.EventTeamOfferAccepted, models.EventTeamOfferRejected:
		var p models.TeamOfferRespondedPayload
		if err := json.Unmarshal(event.Data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", event.Name, err)
		}
		if p.ChatID != s.SelectedChatID {
			return nil
		}
		s.TryoutStatus = p.TryoutStatus
		if p.TryoutStatus == models.TryoutOfferAccepted {
			s.Offer.Status = models.OfferAccepted
		} else {
			s.Offer.Status = models.OfferRejected
		}
		s.Messages = ReconcileMessage(s.Messages, ViewOf(p.Message))
	}
	return nil
}
