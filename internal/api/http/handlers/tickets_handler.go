package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-bot/internal/api/dto"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/observability"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// TicketReader is the read side of the ticket service.
type TicketReader interface {
	Snapshot(ctx context.Context) (domain.StoreSnapshot, error)
	GetTicket(ctx context.Context, id int64) (*domain.Ticket, error)
	FindOrphans(ctx context.Context) ([]domain.Ticket, error)
}

// PanelReconciler re-posts the ticket panel when it is missing.
type PanelReconciler interface {
	EnsurePanel(ctx context.Context) error
}

// TicketsHandler exposes operator endpoints.
type TicketsHandler struct {
	tickets TicketReader
	panel   PanelReconciler
	metrics *observability.Metrics
}

// NewTicketsHandler wires dependencies.
func NewTicketsHandler(tickets TicketReader, panel PanelReconciler, metrics *observability.Metrics) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, panel: panel, metrics: metrics}
}

// ListTickets GET /admin/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	query, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	snap, err := h.tickets.Snapshot(c.UserContext())
	if err != nil {
		return err
	}

	matched := make([]dto.TicketResponse, 0, len(snap.Tickets))
	for _, t := range snap.Tickets {
		if matches(t, query) {
			matched = append(matched, dto.NewTicketResponse(t))
		}
	}

	start, end := pageBounds(query.Page, query.PageSize, len(matched))
	return c.JSON(fiber.Map{"data": dto.TicketListResponse{
		Items:    matched[start:end],
		Total:    len(matched),
		Counter:  snap.Counter,
		Page:     query.Page,
		PageSize: query.PageSize,
	}})
}

// GetTicket GET /admin/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return apperrors.NewValidationError("invalid ticket id", map[string]any{"id": c.Params("id")})
	}
	ticket, err := h.tickets.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(*ticket)})
}

// ListOrphans GET /admin/tickets/orphans.
func (h *TicketsHandler) ListOrphans(c *fiber.Ctx) error {
	orphans, err := h.tickets.FindOrphans(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(orphans))
	for _, t := range orphans {
		items = append(items, dto.NewTicketResponse(t))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ReconcilePanel POST /admin/panel/reconcile.
func (h *TicketsHandler) ReconcilePanel(c *fiber.Ctx) error {
	if err := h.panel.EnsurePanel(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "reconciled"}})
}

// Metrics GET /admin/metrics.
func (h *TicketsHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}

// pageBounds returns the slice bounds of page within total items. Pages past
// the end are empty; the offset is never computed for them, so a huge page
// cannot overflow.
func pageBounds(page, size, total int) (int, int) {
	if page < 1 || size < 1 || page-1 > total/size {
		return total, total
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := total
	if total-start > size {
		end = start + size
	}
	return start, end
}

func matches(t domain.Ticket, query dto.TicketListQuery) bool {
	if query.User != "" && t.User != query.User {
		return false
	}
	if len(query.Statuses) > 0 && !containsStatus(query.Statuses, t.Status()) {
		return false
	}
	if len(query.Types) > 0 && !containsType(query.Types, t.Type) {
		return false
	}
	return true
}

func containsStatus(list []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsType(list []domain.TicketType, t domain.TicketType) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

func parseTicketQuery(c *fiber.Ctx) (dto.TicketListQuery, error) {
	query := dto.TicketListQuery{User: c.Query("user"), Page: 1, PageSize: defaultPageSize}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			status := domain.TicketStatus(strings.ToUpper(strings.TrimSpace(part)))
			if status != domain.TicketStatusOpen && status != domain.TicketStatusClosed {
				return query, apperrors.NewValidationError("invalid status filter", map[string]any{"status": part})
			}
			query.Statuses = append(query.Statuses, status)
		}
	}
	if typeStr := c.Query("type"); typeStr != "" {
		for _, part := range strings.Split(typeStr, ",") {
			ticketType := domain.TicketType(strings.TrimSpace(part))
			if !ticketType.Valid() {
				return query, apperrors.NewValidationError("invalid type filter", map[string]any{"type": part})
			}
			query.Types = append(query.Types, ticketType)
		}
	}
	if page := c.QueryInt("page", 1); page > 0 {
		query.Page = page
	}
	if size := c.QueryInt("page_size", defaultPageSize); size > 0 {
		if size > maxPageSize {
			size = maxPageSize
		}
		query.PageSize = size
	}
	return query, nil
}
