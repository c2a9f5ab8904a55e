// Package channels defines the interface and types for CoachBot chat
// transports. The bot talks to a single user over direct messages, so the
// surface is deliberately small: text in, text out.
package channels

import (
	"context"
	"fmt"
	"time"
)

// Channel defines the interface every chat transport must implement.
type Channel interface {
	// Name returns the channel identifier (e.g. "discord").
	Name() string

	// Connect establishes the connection to the messaging platform.
	Connect(ctx context.Context) error

	// Disconnect gracefully closes the connection.
	Disconnect() error

	// SendDM sends a direct message to the given platform user.
	SendDM(ctx context.Context, userID string, message *OutgoingMessage) error

	// Receive returns a Go channel that emits incoming messages.
	Receive() <-chan *IncomingMessage

	// SelfID returns the bot's own user identifier on the platform,
	// empty until connected. Used to filter self-messages.
	SelfID() string

	// IsConnected returns true if the channel is connected.
	IsConnected() bool

	// Health returns the channel health status.
	Health() HealthStatus
}

// IncomingMessage represents a message received from the channel.
type IncomingMessage struct {
	// ID is the unique message identifier in the source channel.
	ID string

	// Channel identifies the source channel (e.g. "discord").
	Channel string

	// From is the sender identifier on the platform.
	From string

	// FromName is the sender display name (if available).
	FromName string

	// ChatID is the conversation identifier (DM channel or guild channel).
	ChatID string

	// IsDM indicates whether the message arrived over a one-to-one channel.
	IsDM bool

	// Content is the text content of the message.
	Content string

	// Timestamp is when the message was sent.
	Timestamp time.Time
}

// OutgoingMessage represents a message to be sent through the channel.
type OutgoingMessage struct {
	// Content is the text content of the message.
	Content string
}

// HealthStatus represents the health state of a channel.
type HealthStatus struct {
	Connected     bool
	LastMessageAt time.Time
	ErrorCount    int
}

// Errors.
var (
	ErrChannelDisconnected = fmt.Errorf("channel is not connected")
	ErrSendFailed          = fmt.Errorf("failed to send message")
)
