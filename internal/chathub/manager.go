package chathub

import (
	"errors"
	"log"

	"aegischat/backend/internal/apperrors"
	"aegischat/backend/internal/models"
	"aegischat/backend/internal/storage"
)

// TryoutPoster is the slice of the lifecycle engine the hub needs for the
// sendTryoutMessage command.
type TryoutPoster interface {
	PostMessage(chatID, senderID, text string) (*models.TryoutMessage, error)
}

// ClientCommand pairs an inbound command with the connection it arrived on.
type ClientCommand struct {
	Client  Client
	Command models.Command
}

// ManagerService is the hub: it tracks live connections, the rooms they
// joined, and fans events from the bus out to room members. All state is
// owned by the Run loop; other goroutines talk to it through the channels.
type ManagerService struct {
	Clients map[string]Client
	Rooms   *Registry

	RegisterCh   chan Client
	UnregisterCh chan Client
	CommandCh    chan ClientCommand
	PubSubCh     chan models.Event

	Storage storage.Storage
	Tryouts TryoutPoster
}

// NewManagerService creates a hub over the given storage and lifecycle
// engine.
func NewManagerService(s storage.Storage, tryouts TryoutPoster) *ManagerService {
	return &ManagerService{
		Clients:      make(map[string]Client),
		Rooms:        NewRegistry(),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		CommandCh:    make(chan ClientCommand),
		PubSubCh:     make(chan models.Event),
		Storage:      s,
		Tryouts:      tryouts,
	}
}

// Run is the hub's main dispatcher. A failed command only affects the
// connection that issued it.
func (m *ManagerService) Run() {
	for {
		select {
		case client := <-m.RegisterCh:
			m.Clients[client.GetConnID()] = client
			log.Printf("Client connected: conn=%s user=%s", client.GetConnID(), client.GetUserID())

		case client := <-m.UnregisterCh:
			m.unregister(client)

		case cc := <-m.CommandCh:
			m.handleCommand(cc.Client, cc.Command)

		case event := <-m.PubSubCh:
			m.fanOut(event)
		}
	}
}

func (m *ManagerService) unregister(client Client) {
	if _, ok := m.Clients[client.GetConnID()]; !ok {
		return
	}
	m.Rooms.LeaveAll(client)
	delete(m.Clients, client.GetConnID())
	client.Close()
	log.Printf("Client disconnected: conn=%s user=%s", client.GetConnID(), client.GetUserID())
}

func (m *ManagerService) handleCommand(client Client, cmd models.Command) {
	switch cmd.Action {
	case models.ActionJoinRoom:
		// The personal room is always the authenticated user's own; the
		// client cannot join someone else's inbox.
		m.Rooms.Join(models.UserRoom(client.GetUserID()), client)

	case models.ActionJoinTryoutChat:
		chat, err := m.Storage.GetTryoutChat(cmd.ChatID)
		if err != nil {
			m.sendError(client, "Failed to join tryout chat")
			return
		}
		if chat == nil {
			m.sendError(client, "Chat not found")
			return
		}
		if !chat.HasParticipant(client.GetUserID()) {
			m.sendError(client, "Not authorized")
			return
		}
		room := models.TryoutRoom(cmd.ChatID)
		m.Rooms.Join(room, client)
		m.sendToClient(client, models.EventTryoutChatJoined,
			models.TryoutChatJoinedPayload{ChatID: cmd.ChatID, RoomName: room})

	case models.ActionLeaveTryoutChat:
		m.Rooms.Leave(models.TryoutRoom(cmd.ChatID), client)

	case models.ActionSendTryoutMessage:
		// The engine commits the append and publishes the event; it comes
		// back through the bus and fans out to the room, including the
		// sender's own optimistic copy.
		if _, err := m.Tryouts.PostMessage(cmd.ChatID, client.GetUserID(), cmd.Message); err != nil {
			m.sendError(client, userFacing(err))
		}

	default:
		m.sendError(client, "Unknown action")
	}
}

// fanOut delivers an event to every connection in its room. Delivery is
// best-effort: there is no persistence for disconnected sessions, and a
// connection that cannot keep up is dropped.
func (m *ManagerService) fanOut(event models.Event) {
	for _, client := range m.Rooms.Members(event.Room) {
		select {
		case client.GetSendChannel() <- event:
		default:
			m.unregister(client)
		}
	}
}

func (m *ManagerService) sendToClient(client Client, name string, payload any) {
	event, err := models.NewEvent("", name, payload)
	if err != nil {
		log.Printf("ERROR: Failed to encode %s event: %v", name, err)
		return
	}
	select {
	case client.GetSendChannel() <- event:
	default:
		m.unregister(client)
	}
}

func (m *ManagerService) sendError(client Client, message string) {
	m.sendToClient(client, models.EventError, models.ErrorPayload{Message: message})
}

// userFacing picks the message reported over the socket. Taxonomy errors
// carry renderable detail; anything else is a generic transient failure.
func userFacing(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "Chat not found"
	case errors.Is(err, apperrors.ErrForbidden):
		return "Not authorized"
	case errors.Is(err, apperrors.ErrChatLocked):
		return "This tryout has ended. No new messages can be sent."
	case errors.Is(err, apperrors.ErrInvalidTransition):
		return "This tryout is no longer active"
	case errors.Is(err, apperrors.ErrValidation):
		return "Invalid message"
	default:
		return "Failed to send message"
	}
}
