package flow

import (
	"context"
	"strings"

	"github.com/CiroGamboa/bimoi/internal/contacts"
	"github.com/CiroGamboa/bimoi/internal/domain"
)

// DefaultEffects returns the effect registry for the Telegram machine.
func DefaultEffects() map[string]Effect {
	return map[string]Effect{
		"welcome":                 effectWelcome,
		"unsupported":             effectUnsupported,
		"send_contact_first":      effectSendContactFirst,
		"receive_contact":         effectReceiveContact,
		"submit_context":          effectSubmitContext,
		"contact_list":            effectContactList,
		"prompt_search":           effectPromptSearch,
		"run_search":              effectRunSearch,
		"prompt_add_contact":      effectPromptAddContact,
		"prompt_add_context":      effectPromptAddContext,
		"prompt_add_more_context": effectPromptAddMoreContext,
		"add_context":             effectAddContext,
		"add_context_done":        effectAddContextDone,
	}
}

func effectWelcome(_ context.Context, env Env) ([]Action, string, error) {
	return []Action{SendMessage{Text: env.Def.Message("welcome", nil), Keyboard: "main"}}, OutDone, nil
}

func effectUnsupported(_ context.Context, env Env) ([]Action, string, error) {
	return []Action{SendMessage{Text: env.Def.Message("unsupported", nil), Keyboard: "main"}}, OutDone, nil
}

func effectSendContactFirst(_ context.Context, env Env) ([]Action, string, error) {
	return []Action{SendMessage{Text: env.Def.Message("send_contact_first", nil), Keyboard: "main"}}, OutDone, nil
}

func effectReceiveContact(ctx context.Context, env Env) ([]Action, string, error) {
	card := domain.ContactCard{
		Name:        env.Event.Get(PayloadName),
		PhoneNumber: env.Event.Get(PayloadPhone),
		ExternalID:  env.Event.Get(PayloadExternalID),
	}
	result, err := env.Service.ReceiveCard(ctx, card)
	if err != nil {
		return nil, "", err
	}
	switch res := result.(type) {
	case contacts.Pending:
		return []Action{
			SetSlots{Slots: map[string]string{SlotPendingID: res.PendingID}},
			SendMessage{Text: env.Def.Message("awaiting_context_prompt", map[string]string{"name": res.Name})},
		}, OutPending, nil
	case contacts.Duplicate:
		return []Action{
			SetSlots{Slots: map[string]string{SlotPersonID: res.PersonID, SlotContactName: res.Name}},
			SendMessage{Text: env.Def.Message("duplicate_offer_add_context", map[string]string{"name": res.Name})},
		}, OutDuplicate, nil
	case contacts.Invalid:
		return []Action{SendMessage{Text: res.Reason}}, OutInvalid, nil
	}
	return nil, OutInvalid, nil
}

func effectSubmitContext(ctx context.Context, env Env) ([]Action, string, error) {
	pendingID := env.Slots[SlotPendingID]
	result, err := env.Service.SubmitContext(ctx, pendingID, env.Event.Get(PayloadText))
	if err != nil {
		return nil, "", err
	}
	actions := []Action{ClearSlots{Keys: []string{SlotPendingID}}}
	if created, ok := result.(contacts.Created); ok {
		actions = append(actions,
			SetSlots{Slots: map[string]string{SlotPersonID: created.PersonID, SlotContactName: created.Name}},
			SendMessage{
				Text:         env.Def.Message("contact_created", map[string]string{"name": created.Name}),
				Keyboard:     "add_more_or_done",
				KeyboardData: created.PersonID,
			},
		)
		return actions, OutCreated, nil
	}
	actions = append(actions, SendMessage{Text: env.Def.Message("pending_lost", nil)})
	return actions, OutPendingNotFound, nil
}

func effectContactList(ctx context.Context, env Env) ([]Action, string, error) {
	summaries, err := env.Service.ListContacts(ctx)
	if err != nil {
		return nil, "", err
	}
	if len(summaries) == 0 {
		return []Action{SendMessage{Text: env.Def.Message("empty_list", nil)}}, OutEmpty, nil
	}
	return []Action{SendContactList{Summaries: summaries}}, OutHasResults, nil
}

func effectPromptSearch(_ context.Context, env Env) ([]Action, string, error) {
	return []Action{SendMessage{Text: env.Def.Message("search_prompt", nil)}}, OutDone, nil
}

func effectRunSearch(ctx context.Context, env Env) ([]Action, string, error) {
	keyword := strings.TrimSpace(env.Event.Get(PayloadText))
	if keyword == "" {
		return []Action{SendMessage{Text: env.Def.Message("search_usage", nil)}}, OutEmpty, nil
	}
	summaries, err := env.Service.SearchContacts(ctx, keyword)
	if err != nil {
		return nil, "", err
	}
	if len(summaries) == 0 {
		return []Action{SendMessage{Text: env.Def.Message("no_match", nil)}}, OutEmpty, nil
	}
	return []Action{SendContactList{Summaries: summaries}}, OutHasResults, nil
}

func effectPromptAddContact(_ context.Context, env Env) ([]Action, string, error) {
	return []Action{SendMessage{Text: env.Def.Message("add_contact_howto", nil), Keyboard: "main"}}, OutDone, nil
}

func promptForContact(ctx context.Context, env Env, messageID string) ([]Action, string, error) {
	personID := env.Event.Get(PayloadPersonID)
	if personID == "" {
		personID = env.Slots[SlotPersonID]
	}
	if personID != "" {
		summary, found, err := env.Service.GetContact(ctx, personID)
		if err != nil {
			return nil, "", err
		}
		if found {
			return []Action{
				SetSlots{Slots: map[string]string{SlotPersonID: personID, SlotContactName: summary.Name}},
				SendMessage{Text: env.Def.Message(messageID, map[string]string{"name": summary.Name})},
			}, OutFound, nil
		}
	}
	return []Action{SendMessage{Text: env.Def.Message("add_context_not_found", nil)}}, OutNotFound, nil
}

func effectPromptAddContext(ctx context.Context, env Env) ([]Action, string, error) {
	return promptForContact(ctx, env, "add_context_button_prompt")
}

func effectPromptAddMoreContext(ctx context.Context, env Env) ([]Action, string, error) {
	return promptForContact(ctx, env, "add_more_context_again")
}

func effectAddContext(ctx context.Context, env Env) ([]Action, string, error) {
	personID := env.Slots[SlotPersonID]
	result, err := env.Service.AddContext(ctx, personID, env.Event.Get(PayloadText))
	if err != nil {
		return nil, "", err
	}
	switch result.(type) {
	case contacts.AddContextSuccess:
		return []Action{SendMessage{
			Text:         env.Def.Message("add_more_or_done", nil),
			Keyboard:     "add_more_or_done",
			KeyboardData: personID,
		}}, OutSuccess, nil
	case contacts.AddContextNotFound:
		return []Action{SendMessage{Text: env.Def.Message("add_context_not_found", nil)}}, OutNotFound, nil
	default:
		return []Action{SendMessage{Text: env.Def.Message("add_context_empty", nil)}}, OutInvalid, nil
	}
}

func effectAddContextDone(_ context.Context, env Env) ([]Action, string, error) {
	return []Action{
		ClearSlots{Keys: []string{SlotPersonID, SlotContactName}},
		SendMessage{Text: env.Def.Message("add_context_done", nil)},
	}, OutDone, nil
}
