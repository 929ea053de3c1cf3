package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/gateway"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// PanelScanLimit is how many recent panel channel messages are searched for
// an existing panel.
const PanelScanLimit = 50

// SelectTicketTypeControlID is the custom ID of the panel's type menu.
const SelectTicketTypeControlID = "ticket:select-type"

// PanelService keeps the "open a ticket" panel present in its channel.
type PanelService struct {
	gateway gateway.Gateway
	logger  *zap.Logger
	channel string
}

// NewPanelService creates the service.
func NewPanelService(gw gateway.Gateway, logger *zap.Logger, panelChannel string) *PanelService {
	return &PanelService{gateway: gw, logger: logger.Named("panel"), channel: panelChannel}
}

// EnsurePanel posts the ticket type menu unless a recent bot message with
// controls is already in the panel channel. Two concurrent callers can both
// post; a single reconciler per guild is assumed.
func (p *PanelService) EnsurePanel(ctx context.Context) error {
	channel, err := p.gateway.FindChannel(ctx, p.channel, gateway.ChannelKindText)
	if errors.Is(err, gateway.ErrNotFound) {
		channel, err = p.gateway.CreateChannel(ctx, gateway.ChannelSpec{Name: p.channel, Kind: gateway.ChannelKindText})
		if err == nil {
			p.logger.Info("panel channel created", zap.String("channel", p.channel))
		}
	}
	if err != nil {
		return apperrors.NewProvisioningError("resolve panel channel", err, map[string]any{"channel": p.channel})
	}

	recent, err := p.gateway.ListRecentMessages(ctx, channel.ID, PanelScanLimit)
	if err != nil {
		return apperrors.NewProvisioningError("list panel messages", err, map[string]any{"channel": p.channel})
	}
	self := p.gateway.SelfID()
	for _, m := range recent {
		if m.AuthorID == self && m.HasControls {
			p.logger.Debug("panel already present", zap.String("message_id", m.ID))
			return nil
		}
	}

	if _, err := p.gateway.PostMessage(ctx, channel.ID, panelMessage()); err != nil {
		return apperrors.NewProvisioningError("post panel", err, map[string]any{"channel": p.channel})
	}
	p.logger.Info("ticket panel posted", zap.String("channel_id", channel.ID))
	return nil
}

func panelMessage() gateway.Message {
	types := domain.TicketTypes()
	options := make([]gateway.ControlOption, 0, len(types))
	for _, info := range types {
		options = append(options, gateway.ControlOption{
			Label:       info.Label,
			Value:       string(info.Type),
			Description: info.Description,
			Emoji:       info.Emoji,
		})
	}
	return gateway.Message{
		Content: "🎫 **Choose a ticket type from the menu below:**",
		Controls: []gateway.Control{{
			Kind:        gateway.ControlSelect,
			CustomID:    SelectTicketTypeControlID,
			Placeholder: "Select a ticket type 🎫",
			Options:     options,
		}},
	}
}
