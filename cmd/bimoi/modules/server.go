package modules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"

	"github.com/CiroGamboa/bimoi/internal/bot"
	"github.com/CiroGamboa/bimoi/internal/config"
	"github.com/CiroGamboa/bimoi/internal/contacts"
	"github.com/CiroGamboa/bimoi/internal/flow"
	"github.com/CiroGamboa/bimoi/internal/handlers"
	"github.com/CiroGamboa/bimoi/internal/identity"
	"github.com/CiroGamboa/bimoi/internal/server"
	"github.com/CiroGamboa/bimoi/internal/session"
	"github.com/CiroGamboa/bimoi/internal/version"
)

// Server wires the HTTP handlers and the Echo server lifecycle.
var Server = fx.Module(
	"server",
	fx.Provide(
		provideServerHandler(handlers.NewPingHandler),
		provideServerHandler(provideAuthHandler),
		provideServerHandler(handlers.NewContactsHandler),
		provideServerHandler(handlers.NewProfileHandler),
		provideServerHandler(provideWebhookHandler),
		provideServer,
	),
	fx.Invoke(startServer),
)

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideAuthHandler(log *slog.Logger, cfg config.Config) (*handlers.AuthHandler, error) {
	expiresIn, err := time.ParseDuration(cfg.Auth.JWTExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("parse jwt_expires_in: %w", err)
	}
	return handlers.NewAuthHandler(log, cfg.Auth.APIKey, cfg.Auth.JWTSecret, expiresIn), nil
}

func provideWebhookHandler(
	log *slog.Logger,
	cfg config.Config,
	resolver *identity.Resolver,
	registry *contacts.Registry,
	runner *flow.Runner,
	sessions session.Store,
	renderer *bot.Renderer,
) *handlers.WebhookHandler {
	return handlers.NewWebhookHandler(log, cfg.Telegram.WebhookSecret, resolver, registry, runner, sessions, renderer)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.Config.Auth.JWTSecret, params.ServerHandlers...)
}

func startServer(
	lc fx.Lifecycle,
	logger *slog.Logger,
	srv *server.Server,
	shutdowner fx.Shutdowner,
	cfg config.Config,
	api *tgbotapi.BotAPI,
) {
	fmt.Printf("Starting bimoi %s\n", version.GetInfo())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := bot.SetCommands(api); err != nil {
				logger.Warn("set bot commands failed", slog.Any("error", err))
			}
			if cfg.Telegram.WebhookURL != "" {
				if err := bot.SetWebhook(api, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret); err != nil {
					logger.Warn("set webhook failed", slog.Any("error", err))
				}
			}

			go func() {
				if err := srv.Start(); err != nil { // block until server is stopped
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
