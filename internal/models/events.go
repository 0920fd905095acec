package models

import "encoding/json"

// Server-to-client event names.
const (
	EventReceiveMessage    = "receiveMessage"
	EventNewTryoutMessage  = "newTryoutMessage"
	EventTryoutEnded       = "tryoutEnded"
	EventTeamOfferSent     = "teamOfferSent"
	EventTeamOfferAccepted = "teamOfferAccepted"
	EventTeamOfferRejected = "teamOfferRejected"
	EventTryoutChatJoined  = "tryoutChatJoined"
	EventError             = "error"
)

// Client-to-server command actions.
const (
	ActionJoinRoom          = "joinRoom"
	ActionJoinTryoutChat    = "joinTryoutChat"
	ActionLeaveTryoutChat   = "leaveTryoutChat"
	ActionSendTryoutMessage = "sendTryoutMessage"
)

// UserRoom names the per-user room used for direct-message delivery.
func UserRoom(userID string) string { return "user:" + userID }

// TryoutRoom names the per-chat room joined by participants while viewing
// a tryout chat.
func TryoutRoom(chatID string) string { return "tryout:" + chatID }

// Event is the envelope published to the event bus after a store mutation
// commits, and fanned out verbatim to every connection in Room.
type Event struct {
	Room string          `json:"room"`
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// NewEvent builds an Event from a typed payload.
func NewEvent(room, name string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Room: room, Name: name, Data: data}, nil
}

// Command is one client-to-server frame read off a websocket connection.
type Command struct {
	Action  string `json:"action"`
	ChatID  string `json:"chatId,omitempty"`
	Message string `json:"message,omitempty"`
}

// TryoutMessagePayload is the data for newTryoutMessage.
type TryoutMessagePayload struct {
	ChatID  string        `json:"chatId"`
	Message TryoutMessage `json:"message"`
}

// TryoutEndedPayload is the data for tryoutEnded.
type TryoutEndedPayload struct {
	ChatID       string        `json:"chatId"`
	TryoutStatus string        `json:"tryoutStatus"`
	EndedBy      string        `json:"endedBy"`
	EndedByKind  string        `json:"endedByKind"`
	Reason       string        `json:"reason"`
	Message      TryoutMessage `json:"message"`
}

// TeamOfferSentPayload is the data for teamOfferSent.
type TeamOfferSentPayload struct {
	ChatID  string        `json:"chatId"`
	Offer   TeamOffer     `json:"offer"`
	Message TryoutMessage `json:"message"`
}

// TeamOfferRespondedPayload is the data for teamOfferAccepted and
// teamOfferRejected.
type TeamOfferRespondedPayload struct {
	ChatID       string        `json:"chatId"`
	TryoutStatus string        `json:"tryoutStatus"`
	Message      TryoutMessage `json:"message"`
}

// TryoutChatJoinedPayload acknowledges a joinTryoutChat command to the
// joining connection only.
type TryoutChatJoinedPayload struct {
	ChatID   string `json:"chatId"`
	RoomName string `json:"roomName"`
}

// ErrorPayload is sent to a single connection when one of its commands fails.
type ErrorPayload struct {
	Message string `json:"message"`
}
