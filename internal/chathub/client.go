package chathub

import "aegischat/backend/internal/models"

// Client is the interface for one user connection. It abstracts the
// underlying transport so the hub can manage connections uniformly; the
// production implementation is WebSocketClient.
type Client interface {
	// GetConnID returns the unique identifier of this connection. One user
	// may hold several connections at once.
	GetConnID() string
	// GetUserID returns the authenticated user behind the connection.
	GetUserID() string

	// GetSendChannel returns the channel the hub pushes outbound events
	// into. It is a send-only channel.
	GetSendChannel() chan<- models.Event

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's outbound channel, stopping its write
	// pump.
	Close()
}
