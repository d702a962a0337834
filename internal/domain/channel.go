package domain

import "context"

// InboundMessage is a message received from a chat surface.
type InboundMessage struct {
	SessionID   string // channel the message was posted in; replies go here
	Content     string
	ChannelName string

	// Enriched fields, all zero-value safe.
	MessageID  string   `json:"message_id,omitempty"`
	SenderID   string   `json:"sender_id,omitempty"`
	SenderName string   `json:"sender_name,omitempty"`
	GroupID    string   `json:"group_id,omitempty"`    // guild / workspace
	CategoryID string   `json:"category_id,omitempty"` // parent category of SessionID, if any
	RoleIDs    []string `json:"role_ids,omitempty"`
}

// OutboundMessage is a reply sent back to a chat surface. When Message is set
// the channel renders it natively; otherwise Content is sent as plain text.
type OutboundMessage struct {
	SessionID string
	Content   string
	IsError   bool
	Message   FormattedMessage

	ReplyToID string `json:"reply_to_id,omitempty"`
}

// Empty reports whether there is nothing to send.
func (m OutboundMessage) Empty() bool {
	return m.Message == nil && m.Content == ""
}

// MessageHandler is a callback the channel invokes when it receives input.
type MessageHandler func(ctx context.Context, msg InboundMessage) error

// Channel is the interface for user-facing I/O adapters.
type Channel interface {
	Start(ctx context.Context, handler MessageHandler) error
	Stop(ctx context.Context) error
	Send(ctx context.Context, msg OutboundMessage) error
	Name() string
}
