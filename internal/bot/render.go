package bot

import (
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/CiroGamboa/bimoi/internal/domain"
	"github.com/CiroGamboa/bimoi/internal/flow"
)

// Sender is the slice of the Telegram API the renderer needs. *tgbotapi.BotAPI
// satisfies it; tests use a recorder.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Renderer turns flow actions into Telegram sends.
type Renderer struct {
	sender Sender
	def    *flow.Definition
	logger *slog.Logger
}

// NewRenderer creates a renderer over the bot API and the flow definition
// (for keyboard layouts).
func NewRenderer(log *slog.Logger, sender Sender, def *flow.Definition) *Renderer {
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{
		sender: sender,
		def:    def,
		logger: log.With(slog.String("component", "bot")),
	}
}

// Render performs the actions for one chat. Slot actions are state-only and
// skipped here; keyboard payloads ride on the SendMessage action itself.
func (r *Renderer) Render(chatID int64, actions []flow.Action) error {
	for _, action := range actions {
		switch act := action.(type) {
		case flow.SendMessage:
			if err := r.sendMessage(chatID, act); err != nil {
				return err
			}
		case flow.SendContactList:
			if err := r.sendContactList(chatID, act.Summaries); err != nil {
				return err
			}
		case flow.SetSlots, flow.ClearSlots:
			// Applied by the runner.
		}
	}
	return nil
}

func (r *Renderer) sendMessage(chatID int64, act flow.SendMessage) error {
	msg := tgbotapi.NewMessage(chatID, act.Text)
	switch act.Keyboard {
	case "main":
		msg.ReplyMarkup = r.mainKeyboard()
	case "add_more_or_done":
		msg.ReplyMarkup = addMoreOrDoneKeyboard(act.KeyboardData)
	}
	if _, err := r.sender.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// sendContactList sends each contact as a Telegram contact card (when it has
// a phone number) followed by its context line, or as a single text card.
// Every entry carries the per-contact add-context button.
func (r *Renderer) sendContactList(chatID int64, summaries []domain.ContactSummary) error {
	for _, s := range summaries {
		keyboard := addContextKeyboard(s.PersonID)
		phone := strings.TrimSpace(s.PhoneNumber)
		if phone != "" {
			first, last := splitName(s.Name)
			card := tgbotapi.NewContact(chatID, phone, first)
			card.LastName = last
			if _, err := r.sender.Send(card); err != nil {
				r.logger.Warn("contact card send failed, falling back to text",
					slog.String("person_id", s.PersonID), slog.Any("error", err))
				return r.sendTextCard(chatID, s, keyboard)
			}
			line := tgbotapi.NewMessage(chatID, "— "+s.Context)
			line.ReplyMarkup = keyboard
			if _, err := r.sender.Send(line); err != nil {
				return fmt.Errorf("send context line: %w", err)
			}
			continue
		}
		if err := r.sendTextCard(chatID, s, keyboard); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) sendTextCard(chatID int64, s domain.ContactSummary, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, formatContactCard(s))
	msg.ReplyMarkup = keyboard
	if _, err := r.sender.Send(msg); err != nil {
		return fmt.Errorf("send contact card: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges an inline button press so the client stops the
// loading spinner.
func (r *Renderer) AnswerCallback(callbackID string) {
	if _, err := r.sender.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		r.logger.Warn("answer callback failed", slog.Any("error", err))
	}
}

func (r *Renderer) mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	layout := r.def.Keyboards["main"]
	rows := make([][]tgbotapi.KeyboardButton, 0, len(layout))
	for _, labels := range layout {
		row := make([]tgbotapi.KeyboardButton, 0, len(labels))
		for _, label := range labels {
			row = append(row, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, row)
	}
	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true
	return keyboard
}

func addContextKeyboard(personID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Add relationship context", personID),
		),
	)
}

func addMoreOrDoneKeyboard(personID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Add more context", CallbackAddMorePrefix+personID),
			tgbotapi.NewInlineKeyboardButtonData("I'm done", CallbackDone),
		),
	)
}

func formatContactCard(s domain.ContactSummary) string {
	parts := []string{s.Name}
	if strings.TrimSpace(s.PhoneNumber) != "" {
		parts = append(parts, "Phone: "+s.PhoneNumber)
	}
	parts = append(parts, "— "+s.Context)
	return strings.Join(parts, "\n")
}

func splitName(name string) (string, string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "Unknown", ""
	}
	if len(fields) == 1 {
		return fields[0], ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
