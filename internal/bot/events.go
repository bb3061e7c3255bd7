// Package bot adapts Telegram updates to flow events and flow actions back to
// Telegram API calls.
package bot

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/CiroGamboa/bimoi/internal/flow"
)

// Button labels on the main reply keyboard. Matching is case-insensitive so
// typed "list" works like the button.
const (
	ButtonList   = "List contacts"
	ButtonSearch = "Search"
	ButtonAdd    = "Add contact"
)

// CallbackAddMorePrefix prefixes the person id in the "Add more context"
// inline button data.
const CallbackAddMorePrefix = "addmore:"

// CallbackDone is the inline button data for "I'm done".
const CallbackDone = "addctx_done"

// MapUpdate converts a Telegram update to a flow event. ok=false means the
// update carries nothing the machine reacts to.
func MapUpdate(update tgbotapi.Update) (flow.Event, bool) {
	if cq := update.CallbackQuery; cq != nil {
		data := strings.TrimSpace(cq.Data)
		switch {
		case strings.HasPrefix(data, CallbackAddMorePrefix):
			return flow.Event{
				Symbol:  flow.EvCallbackAddMore,
				Payload: map[string]string{flow.PayloadPersonID: strings.TrimSpace(data[len(CallbackAddMorePrefix):])},
			}, true
		case data == CallbackDone:
			return flow.Event{Symbol: flow.EvCallbackAddCtxDone}, true
		case data != "":
			// Bare person id from the per-contact "Add relationship context" button.
			return flow.Event{
				Symbol:  flow.EvCallbackPersonID,
				Payload: map[string]string{flow.PayloadPersonID: data},
			}, true
		}
		return flow.Event{}, false
	}

	msg := update.Message
	if msg == nil {
		return flow.Event{}, false
	}

	if c := msg.Contact; c != nil {
		name := strings.TrimSpace(c.FirstName)
		if c.LastName != "" {
			name = strings.TrimSpace(name + " " + c.LastName)
		}
		if name == "" {
			name = "Unknown"
		}
		payload := map[string]string{
			flow.PayloadName:  name,
			flow.PayloadPhone: c.PhoneNumber,
		}
		if c.UserID != 0 {
			payload[flow.PayloadExternalID] = strconv.FormatInt(c.UserID, 10)
		}
		return flow.Event{Symbol: flow.EvContactShared, Payload: payload}, true
	}

	if msg.Text != "" {
		return mapText(msg.Text), true
	}

	// Photo, voice, sticker and friends.
	return flow.Event{Symbol: flow.EvTextUnsupported}, true
}

func mapText(text string) flow.Event {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	switch {
	case trimmed == "/start":
		return flow.Event{Symbol: flow.EvTextCommandStart}
	case trimmed == "/help":
		return flow.Event{Symbol: flow.EvTextCommandHelp}
	case trimmed == "/list", trimmed == ButtonList, lower == "list":
		return flow.Event{Symbol: flow.EvTextCommandList}
	case trimmed == ButtonSearch, lower == "search":
		return flow.Event{Symbol: flow.EvCallbackSearch}
	case trimmed == ButtonAdd, lower == "add contact":
		return flow.Event{Symbol: flow.EvTextCommandAdd}
	case trimmed == "/search", strings.HasPrefix(trimmed, "/search "):
		keyword := strings.TrimSpace(strings.TrimPrefix(trimmed, "/search"))
		return flow.Event{
			Symbol:  flow.EvTextCommandSearch,
			Payload: map[string]string{flow.PayloadText: keyword},
		}
	default:
		return flow.Event{
			Symbol:  flow.EvTextFree,
			Payload: map[string]string{flow.PayloadText: trimmed},
		}
	}
}

// ChatID returns the chat the update belongs to.
func ChatID(update tgbotapi.Update) (int64, bool) {
	if update.Message != nil && update.Message.Chat != nil {
		return update.Message.Chat.ID, true
	}
	if cq := update.CallbackQuery; cq != nil && cq.Message != nil && cq.Message.Chat != nil {
		return cq.Message.Chat.ID, true
	}
	return 0, false
}

// SenderID returns the Telegram user id of the update's sender.
func SenderID(update tgbotapi.Update) (string, string, bool) {
	var from *tgbotapi.User
	if update.Message != nil {
		from = update.Message.From
	} else if update.CallbackQuery != nil {
		from = update.CallbackQuery.From
	}
	if from == nil {
		return "", "", false
	}
	name := strings.TrimSpace(strings.TrimSpace(from.FirstName) + " " + strings.TrimSpace(from.LastName))
	if name == "" {
		name = from.UserName
	}
	return strconv.FormatInt(from.ID, 10), name, true
}
