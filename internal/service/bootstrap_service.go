package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/gateway"
	"github.com/spec-kit/ticket-bot/internal/template"
)

// BootstrapService provisions the guild layout and gives new members the
// default role.
type BootstrapService struct {
	gateway     gateway.Gateway
	logger      *zap.Logger
	defaultRole string
}

// NewBootstrapService creates the service.
func NewBootstrapService(gw gateway.Gateway, logger *zap.Logger, defaultRole string) *BootstrapService {
	return &BootstrapService{gateway: gw, logger: logger.Named("bootstrap"), defaultRole: defaultRole}
}

// Provision creates every role, category and channel of tmpl that does not
// exist yet. It stops at the first platform error.
func (b *BootstrapService) Provision(ctx context.Context, tmpl *template.Template) error {
	for _, role := range tmpl.Roles {
		_, err := b.gateway.FindRole(ctx, role.Name)
		if err == nil {
			b.logger.Debug("role exists", zap.String("role", role.Name))
			continue
		}
		if !errors.Is(err, gateway.ErrNotFound) {
			return fmt.Errorf("find role %s: %w", role.Name, err)
		}
		if _, err := b.gateway.CreateRole(ctx, role.Name, role.Permissions); err != nil {
			return fmt.Errorf("create role %s: %w", role.Name, err)
		}
		b.logger.Info("role created", zap.String("role", role.Name))
	}

	for _, cat := range tmpl.Categories {
		category, err := b.gateway.FindCategory(ctx, cat.Name)
		if errors.Is(err, gateway.ErrNotFound) {
			category, err = b.gateway.CreateCategory(ctx, cat.Name)
			if err == nil {
				b.logger.Info("category created", zap.String("category", cat.Name))
			}
		}
		if err != nil {
			return fmt.Errorf("category %s: %w", cat.Name, err)
		}

		for _, name := range cat.TextChannels {
			if err := b.ensureChannel(ctx, name, gateway.ChannelKindText, category.ID); err != nil {
				return err
			}
		}
		for _, name := range cat.VoiceChannels {
			if err := b.ensureChannel(ctx, name, gateway.ChannelKindVoice, category.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *BootstrapService) ensureChannel(ctx context.Context, name string, kind gateway.ChannelKind, parentID string) error {
	_, err := b.gateway.FindChannel(ctx, name, kind)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gateway.ErrNotFound) {
		return fmt.Errorf("find %s channel %s: %w", kind, name, err)
	}
	if _, err := b.gateway.CreateChannel(ctx, gateway.ChannelSpec{Name: name, Kind: kind, ParentID: parentID}); err != nil {
		return fmt.Errorf("create %s channel %s: %w", kind, name, err)
	}
	b.logger.Info("channel created", zap.String("channel", name), zap.String("kind", string(kind)))
	return nil
}

// OnMemberJoined grants the default role. Missing roles and permission
// errors are logged only.
func (b *BootstrapService) OnMemberJoined(ctx context.Context, userID string) {
	role, err := b.gateway.FindRole(ctx, b.defaultRole)
	if err != nil {
		b.logger.Warn("default role unavailable", zap.String("role", b.defaultRole), zap.Error(err))
		return
	}
	if err := b.gateway.AddMemberRole(ctx, userID, role.ID); err != nil {
		b.logger.Warn("could not grant default role", zap.String("user_id", userID), zap.String("role", b.defaultRole), zap.Error(err))
		return
	}
	b.logger.Info("default role granted", zap.String("user_id", userID), zap.String("role", b.defaultRole))
}
