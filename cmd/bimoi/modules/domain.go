package modules

import (
	"context"
	"log/slog"

	"github.com/arangodb/go-driver/v2/arangodb"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"

	"github.com/CiroGamboa/bimoi/internal/bot"
	"github.com/CiroGamboa/bimoi/internal/config"
	"github.com/CiroGamboa/bimoi/internal/contacts"
	"github.com/CiroGamboa/bimoi/internal/flow"
	"github.com/CiroGamboa/bimoi/internal/graph"
	"github.com/CiroGamboa/bimoi/internal/identity"
	"github.com/CiroGamboa/bimoi/internal/phone"
)

// Domain wires identity resolution, per-owner contact engines, and the
// conversation flow on top of the infrastructure module.
var Domain = fx.Module(
	"domain",
	fx.Provide(
		fx.Annotate(graph.NewIdentityStore, fx.As(new(identity.Store))),
		identity.NewResolver,
		provideRegistry,
		provideFlowDefinition,
		provideRunner,
		provideRenderer,
	),
)

func provideRegistry(log *slog.Logger, db arangodb.Database, resolver *identity.Resolver, cfg config.Config) *contacts.Registry {
	lookup := func(ctx context.Context, externalID string) (string, error) {
		return resolver.LookupExisting(ctx, identity.ChannelTelegram, externalID)
	}
	normalize := func(raw string) (string, bool) {
		return phone.Normalize(raw, cfg.Phone.DefaultRegion)
	}
	return contacts.NewRegistry(func(ownerID string) *contacts.Service {
		repo := graph.NewContactRepository(log, db, ownerID)
		return contacts.NewService(log, repo,
			contacts.WithLookup(lookup),
			contacts.WithNormalizer(normalize))
	})
}

func provideFlowDefinition(cfg config.Config) (*flow.Definition, error) {
	return flow.Load(cfg.Flow.Path)
}

func provideRunner(log *slog.Logger, def *flow.Definition) (*flow.Runner, error) {
	return flow.NewRunner(log, def, flow.DefaultEffects())
}

func provideRenderer(log *slog.Logger, api *tgbotapi.BotAPI, def *flow.Definition) *bot.Renderer {
	return bot.NewRenderer(log, api, def)
}
