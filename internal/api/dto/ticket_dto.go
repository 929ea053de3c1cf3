package dto

import (
	"time"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// TicketListQuery captures filters for the admin ticket listing.
type TicketListQuery struct {
	Statuses []domain.TicketStatus
	Types    []domain.TicketType
	User     string
	Page     int
	PageSize int
}

// TicketResponse is one ticket as exposed by the admin API.
type TicketResponse struct {
	ID        int64               `json:"id"`
	Channel   string              `json:"channel"`
	User      string              `json:"user"`
	Type      domain.TicketType   `json:"type"`
	TypeLabel string              `json:"type_label"`
	Status    domain.TicketStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	ClosedAt  *time.Time          `json:"closed_at"`
	ClosedBy  *string             `json:"closed_by"`
}

// TicketListResponse is a page of tickets.
type TicketListResponse struct {
	Items    []TicketResponse `json:"items"`
	Total    int              `json:"total"`
	Counter  int64            `json:"counter"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// NewTicketResponse maps a stored ticket.
func NewTicketResponse(t domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:        t.ID,
		Channel:   domain.ChannelName(t.ID),
		User:      t.User,
		Type:      t.Type,
		TypeLabel: t.Type.Label(),
		Status:    t.Status(),
		CreatedAt: t.CreatedAt,
		ClosedAt:  t.ClosedAt,
		ClosedBy:  t.ClosedBy,
	}
}
