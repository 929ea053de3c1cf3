package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "OPEN"
	TicketStatusClosed TicketStatus = "CLOSED"
)

// TicketType is the category a member picks from the panel.
type TicketType string

const (
	TicketTypeItemShop   TicketType = "itemshop"
	TicketTypeGeneral    TicketType = "general"
	TicketTypeAssistance TicketType = "assistance"
)

// TicketTypeInfo describes how a ticket type is offered on the panel.
type TicketTypeInfo struct {
	Type        TicketType
	Label       string
	Description string
	Emoji       string
}

var ticketTypes = []TicketTypeInfo{
	{Type: TicketTypeItemShop, Label: "ItemShop issue", Description: "Report a problem with the ItemShop", Emoji: "🛒"},
	{Type: TicketTypeGeneral, Label: "Report a problem", Description: "Report a general problem", Emoji: "⚠️"},
	{Type: TicketTypeAssistance, Label: "Assistance request", Description: "Ask the staff for help", Emoji: "🧰"},
}

// TicketTypes returns the panel options in display order.
func TicketTypes() []TicketTypeInfo {
	out := make([]TicketTypeInfo, len(ticketTypes))
	copy(out, ticketTypes)
	return out
}

// Valid reports whether t is one of the known ticket types.
func (t TicketType) Valid() bool {
	for _, info := range ticketTypes {
		if info.Type == t {
			return true
		}
	}
	return false
}

// Label returns the human readable name, falling back to the raw value.
func (t TicketType) Label() string {
	for _, info := range ticketTypes {
		if info.Type == t {
			return info.Label
		}
	}
	return string(t)
}

// Ticket is the durable record of one support request.
type Ticket struct {
	ID        int64      `json:"id"`
	User      string     `json:"user"`
	Type      TicketType `json:"type"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	ClosedBy  *string    `json:"closed_by"`
}

// Status derives the lifecycle state from the closing fields.
func (t Ticket) Status() TicketStatus {
	if t.ClosedAt != nil {
		return TicketStatusClosed
	}
	return TicketStatusOpen
}

// StoreSnapshot is the whole persisted ticket document.
type StoreSnapshot struct {
	Counter int64    `json:"counter"`
	Tickets []Ticket `json:"tickets"`
}

// EmptySnapshot is the state of a store that has never issued a ticket.
func EmptySnapshot() StoreSnapshot {
	return StoreSnapshot{Counter: 0, Tickets: []Ticket{}}
}

// Find returns the ticket with the given ID.
func (s StoreSnapshot) Find(id int64) (Ticket, bool) {
	for _, t := range s.Tickets {
		if t.ID == id {
			return t, true
		}
	}
	return Ticket{}, false
}

const channelPrefix = "ticket-"

// ChannelName derives the channel name for a ticket ID.
func ChannelName(id int64) string {
	return channelPrefix + strconv.FormatInt(id, 10)
}

// ParseChannelName extracts the ticket ID from a ticket-<id> channel name.
// Leading zeros, signs and non-digits are rejected.
func ParseChannelName(name string) (int64, error) {
	digits, ok := strings.CutPrefix(name, channelPrefix)
	if !ok || digits == "" {
		return 0, fmt.Errorf("channel %q is not a ticket channel", name)
	}
	if digits[0] < '1' || digits[0] > '9' {
		return 0, fmt.Errorf("channel %q is not a ticket channel", name)
	}
	for i := 1; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, fmt.Errorf("channel %q is not a ticket channel", name)
		}
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("channel %q: %w", name, err)
	}
	return id, nil
}
