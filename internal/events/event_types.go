package events

import (
	"time"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketOpened EventType = "ticket_opened"
	EventTicketClosed EventType = "ticket_closed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticket_id"`
	Actor     string    `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketOpenedPayload payload.
type TicketOpenedPayload struct {
	TicketType  domain.TicketType `json:"ticket_type"`
	ChannelID   string            `json:"channel_id"`
	ChannelName string            `json:"channel_name"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name"`
	// AlreadyClosed is set when the store had the ticket closed before this event.
	AlreadyClosed bool `json:"already_closed"`
}
