package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"

	"github.com/CiroGamboa/bimoi/internal/bot"
	"github.com/CiroGamboa/bimoi/internal/contacts"
	"github.com/CiroGamboa/bimoi/internal/flow"
	"github.com/CiroGamboa/bimoi/internal/identity"
	"github.com/CiroGamboa/bimoi/internal/session"
)

// secretTokenHeader is echoed by Telegram on every webhook call when a secret
// was set with the webhook registration.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler receives Telegram updates and drives the conversation flow.
type WebhookHandler struct {
	secret   string
	resolver *identity.Resolver
	registry *contacts.Registry
	runner   *flow.Runner
	sessions session.Store
	renderer *bot.Renderer
	logger   *slog.Logger
}

// NewWebhookHandler wires the webhook pipeline: identity, session, flow, render.
func NewWebhookHandler(
	log *slog.Logger,
	secret string,
	resolver *identity.Resolver,
	registry *contacts.Registry,
	runner *flow.Runner,
	sessions session.Store,
	renderer *bot.Renderer,
) *WebhookHandler {
	return &WebhookHandler{
		secret:   secret,
		resolver: resolver,
		registry: registry,
		runner:   runner,
		sessions: sessions,
		renderer: renderer,
		logger:   log.With(slog.String("handler", "webhook")),
	}
}

// Register mounts POST /webhook/telegram on the Echo instance.
func (h *WebhookHandler) Register(e *echo.Echo) {
	e.POST("/webhook/telegram", h.Receive)
}

// Receive handles one Telegram update. Processing errors after the update is
// accepted are logged and answered 200 so Telegram does not retry the same
// update in a loop.
func (h *WebhookHandler) Receive(c echo.Context) error {
	if h.secret != "" {
		got := c.Request().Header.Get(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid webhook secret")
		}
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(c.Request().Body).Decode(&update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid update")
	}

	senderID, senderName, ok := bot.SenderID(update)
	if !ok {
		return c.JSON(http.StatusOK, map[string]string{})
	}
	chatID, ok := bot.ChatID(update)
	if !ok {
		return c.JSON(http.StatusOK, map[string]string{})
	}
	ev, ok := bot.MapUpdate(update)
	if !ok {
		return c.JSON(http.StatusOK, map[string]string{})
	}

	ctx := c.Request().Context()
	ownerID, newlyRegistered, err := h.resolver.ResolveOrCreate(ctx, identity.ChannelTelegram, senderID, senderName)
	if err != nil {
		h.logger.Error("identity resolution failed", slog.Any("error", err))
		return c.JSON(http.StatusOK, map[string]string{})
	}
	if newlyRegistered {
		h.logger.Info("new owner registered", slog.String("person_id", ownerID))
	}

	if update.CallbackQuery != nil {
		h.renderer.AnswerCallback(update.CallbackQuery.ID)
	}

	key := session.Key(ownerID, chatID)
	unlock := h.sessions.Lock(key)
	defer unlock()

	state, err := h.sessions.Get(ctx, key)
	if err != nil {
		h.logger.Error("session load failed", slog.Any("error", err))
		return c.JSON(http.StatusOK, map[string]string{})
	}

	result, err := h.runner.Step(ctx, state, ev, h.registry.ForOwner(ownerID))
	if err != nil {
		h.logger.Error("flow step failed",
			slog.String("event", ev.Symbol),
			slog.String("state", state.State),
			slog.Any("error", err))
		return c.JSON(http.StatusOK, map[string]string{})
	}

	if err := h.renderer.Render(chatID, result.Actions); err != nil {
		h.logger.Error("render failed", slog.Any("error", err))
	}

	if err := h.sessions.Put(ctx, key, flow.StepState{State: result.State, Slots: result.Slots}); err != nil {
		h.logger.Error("session save failed", slog.Any("error", err))
	}
	return c.JSON(http.StatusOK, map[string]string{})
}
