package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/CiroGamboa/bimoi/internal/flow"
	"github.com/CiroGamboa/bimoi/internal/session"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()
	store := session.NewMemoryStore()
	ctx := context.Background()
	key := session.Key("owner-1", 42)

	state, err := store.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if state.State != "" || len(state.Slots) != 0 {
		t.Errorf("unknown key should yield the zero state, got %+v", state)
	}

	want := flow.StepState{
		State: "awaiting_context",
		Slots: map[string]string{flow.SlotPendingID: "p-1"},
	}
	if err := store.Put(ctx, key, want); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if got.State != want.State || got.Slots[flow.SlotPendingID] != "p-1" {
		t.Errorf("Get = %+v, want %+v", got, want)
	}

	// The returned state is a copy; mutating it must not leak into the store.
	got.Slots[flow.SlotPendingID] = "tampered"
	fresh, _ := store.Get(ctx, key)
	if fresh.Slots[flow.SlotPendingID] != "p-1" {
		t.Error("store state was mutated through a returned copy")
	}
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	t.Parallel()
	store := session.NewMemoryStore()
	ctx := context.Background()

	_ = store.Put(ctx, session.Key("owner-1", 1), flow.StepState{State: "awaiting_search"})
	other, _ := store.Get(ctx, session.Key("owner-2", 1))
	if other.State != "" {
		t.Errorf("state leaked across owners: %+v", other)
	}
}

func TestMemoryStoreLockSerializesPerKey(t *testing.T) {
	t.Parallel()
	store := session.NewMemoryStore()
	key := session.Key("owner-1", 7)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := store.Lock(key)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Errorf("lock did not serialize updates: counter = %d", counter)
	}
}
