package classverse

import "time"

// Message is one entry in a channel's ordered log. Author must be a
// participant of the channel at send time; messages are never edited
// in place.
type Message struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Author profile denormalized for display.
	Author *Profile `json:"author,omitempty"`
}

// feed event types
const (
	EventSubscribe      = "subscribe"
	EventUnsubscribe    = "unsubscribe"
	EventSend           = "message.send"
	EventMessageNew     = "message.new"
	EventMessageDeleted = "message.deleted"
	EventError          = "error"
)

// FeedEvent represents anything that can be sent over the live feed
// connection, in either direction. Type decides which fields are set.
type FeedEvent struct {
	Type      string   `json:"type"`
	ChannelID string   `json:"channel_id,omitempty"`
	Content   string   `json:"content,omitempty"`
	Message   *Message `json:"message,omitempty"`
	MessageID string   `json:"message_id,omitempty"`
	Error     string   `json:"error,omitempty"`
}
