// Package session persists conversation positions between webhook calls and
// serializes concurrent updates for the same conversation.
package session

import (
	"context"
	"fmt"

	"github.com/CiroGamboa/bimoi/internal/flow"
)

// Key identifies one conversation of one owner.
func Key(ownerID string, conversationID int64) string {
	return fmt.Sprintf("%s:%d", ownerID, conversationID)
}

// Store holds flow state per conversation. Get on an unknown key returns the
// zero state, which the runner treats as the initial state.
type Store interface {
	Get(ctx context.Context, key string) (flow.StepState, error)
	Put(ctx context.Context, key string, state flow.StepState) error

	// Lock serializes processing for one conversation. The returned func
	// releases the lock. Updates for different conversations proceed in
	// parallel.
	Lock(key string) func()
}
