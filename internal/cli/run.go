package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-bot/internal/api/http"
	"github.com/spec-kit/ticket-bot/internal/api/http/handlers"
	"github.com/spec-kit/ticket-bot/internal/auth"
	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/gateway/discord"
	"github.com/spec-kit/ticket-bot/internal/interaction"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/persistence"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/internal/service"
	"github.com/spec-kit/ticket-bot/internal/template"
	"github.com/spec-kit/ticket-bot/internal/worker"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	Migrations string
	NoHTTP     bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve tickets",
		Long: `Connect to the configured guild, provision the server template and
ticket panel, and handle ticket interactions until SIGINT or SIGTERM.

Configuration is read from the environment and an optional .env file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runBot(ctx, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Migrations, "migrations", persistence.DefaultMigrationsDir, "directory of postgres migrations")
	cmd.Flags().BoolVar(&opts.NoHTTP, "no-http", false, "do not start the operator HTTP API")
	return cmd
}

func runBot(ctx context.Context, opts *RunOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateDiscord(); err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck
	logger = logger.With(zap.String("guild_id", cfg.Discord.GuildID))

	backend, closeBackend, err := openBackend(ctx, cfg, opts.Migrations, logger)
	if err != nil {
		return fmt.Errorf("open store backend: %w", err)
	}
	defer closeBackend()

	store := repository.NewDocumentStore(backend)
	if err := store.Open(ctx, logger); err != nil {
		return err
	}

	tmpl, err := template.Load(cfg.Tickets.TemplateFile, cfg.Tickets.DefaultRole)
	if err != nil {
		return err
	}

	session, err := discord.NewSession(cfg.Discord.Token)
	if err != nil {
		return err
	}
	gw := discord.NewGateway(session, cfg.Discord.GuildID, logger)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	runner := worker.NewDeferredRunner(30*time.Second, logger)

	service.NewAuditService(gw, dispatcher, logger, cfg.Tickets.LogChannel, cfg.Tickets.AuditTimeout()).RegisterHandlers()
	tickets := service.NewTicketService(service.TicketDependencies{
		Store:        store,
		Gateway:      gw,
		Dispatcher:   dispatcher,
		Scheduler:    runner,
		Metrics:      metrics,
		Logger:       logger,
		CategoryName: cfg.Tickets.CategoryName,
	})
	panel := service.NewPanelService(gw, logger, cfg.Tickets.PanelChannel)
	bootstrap := service.NewBootstrapService(gw, logger, cfg.Tickets.DefaultRole)
	router := interaction.NewRouter(tickets, bootstrap, logger)

	eventHandlers := &discord.Handlers{
		GuildID: cfg.Discord.GuildID,
		Router:  router,
		Logger:  logger,
		OnReady: func(ctx context.Context) error {
			provisionErr := bootstrap.Provision(ctx, tmpl)
			if provisionErr != nil {
				provisionErr = fmt.Errorf("provision server template: %w", provisionErr)
			}
			return errors.Join(provisionErr, panel.EnsurePanel(ctx))
		},
	}
	removeHandlers := eventHandlers.Register(session)
	defer removeHandlers()

	if err := session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	logger.Info("discord session open")

	var app *fiber.App
	if !opts.NoHTTP {
		app = newAdminApp(cfg, logger, metrics, store, tickets, panel)
		go func() {
			if err := app.Listen(cfg.App.Addr()); err != nil {
				logger.Error("admin api stopped", zap.Error(err))
			}
		}()
		logger.Info("admin api listening", zap.String("addr", cfg.App.Addr()))
	}

	<-ctx.Done()
	logger.Info("shutting down")

	if app != nil {
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Warn("admin api shutdown", zap.Error(err))
		}
	}
	removeHandlers()
	// Pending channel deletions still use the session. Handlers already in
	// flight cannot schedule new ones past this point.
	runner.Shutdown()
	if err := session.Close(); err != nil {
		logger.Warn("discord session close", zap.Error(err))
	}
	return nil
}

func newAdminApp(cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics, store *repository.DocumentStore, tickets *service.TicketService, panel *service.PanelService) *fiber.App {
	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{"store": store}),
		Tickets:        handlers.NewTicketsHandler(tickets, panel, metrics),
		AuthMiddleware: auth.NewAuthMiddleware(auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)),
	})
	return app
}
