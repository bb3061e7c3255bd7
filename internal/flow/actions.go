package flow

import "github.com/CiroGamboa/bimoi/internal/domain"

// Action is a side effect for the channel adapter to perform. The runner
// itself never talks to Telegram; it only emits actions.
type Action interface{ isAction() }

// SendMessage sends text, optionally with a named keyboard attached.
// KeyboardData is embedded into the keyboard's callback buttons; it travels
// with the action because slots may be gone by render time (the runner
// clears them when the machine returns to the initial state).
type SendMessage struct {
	Text         string
	Keyboard     string
	KeyboardData string
}

// SendContactList sends each contact as a card with its context line.
type SendContactList struct {
	Summaries []domain.ContactSummary
}

// SetSlots merges values into the conversation slots.
type SetSlots struct {
	Slots map[string]string
}

// ClearSlots removes the named keys from the conversation slots.
type ClearSlots struct {
	Keys []string
}

func (SendMessage) isAction()     {}
func (SendContactList) isAction() {}
func (SetSlots) isAction()        {}
func (ClearSlots) isAction()      {}
