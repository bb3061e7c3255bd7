package modules

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"

	"github.com/CiroGamboa/bimoi/internal/config"
	"github.com/CiroGamboa/bimoi/internal/graph"
	"github.com/CiroGamboa/bimoi/internal/logger"
	"github.com/CiroGamboa/bimoi/internal/session"
)

// Infra wires configuration, logging, the graph database, the session store,
// and the Telegram client.
func Infra(configPath string) fx.Option {
	return fx.Module(
		"infra",
		fx.Provide(
			func() (config.Config, error) {
				cfg, err := config.Load(configPath)
				if err != nil {
					return config.Config{}, fmt.Errorf("load config: %w", err)
				}
				return cfg, nil
			},
			provideLogger,
			provideGraphClient,
			provideDatabase,
			provideSessionStore,
			provideBotAPI,
		),
	)
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideGraphClient(lc fx.Lifecycle, log *slog.Logger, cfg config.Config) (*graph.Client, error) {
	client, err := graph.New(log, graph.Config{
		URL:      cfg.Arango.URL,
		Username: cfg.Arango.Username,
		Password: cfg.Arango.Password,
		Database: cfg.Arango.Database,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := client.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("graph schema: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func provideDatabase(client *graph.Client) arangodb.Database {
	return client.Database()
}

func provideSessionStore(lc fx.Lifecycle, log *slog.Logger, cfg config.Config) (session.Store, error) {
	switch cfg.Session.Backend {
	case "", "memory":
		return session.NewMemoryStore(), nil
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		store, err := session.NewRedisStore(ctx, session.RedisConfig{
			Addr:      cfg.Session.RedisAddr,
			DB:        cfg.Session.RedisDB,
			KeyPrefix: cfg.Session.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("redis session store: %w", err)
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return store.Close()
			},
		})
		return store, nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

func provideBotAPI(cfg config.Config) (*tgbotapi.BotAPI, error) {
	if cfg.Telegram.BotToken == "" {
		return nil, fmt.Errorf("telegram bot_token is required")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram client: %w", err)
	}
	return api, nil
}
