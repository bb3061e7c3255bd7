package flow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CiroGamboa/bimoi/internal/contacts"
	"github.com/CiroGamboa/bimoi/internal/flow"
)

func newRunner(t *testing.T) *flow.Runner {
	t.Helper()
	def, err := flow.LoadDefault()
	require.NoError(t, err)
	runner, err := flow.NewRunner(nil, def, flow.DefaultEffects())
	require.NoError(t, err)
	return runner
}

func newEngine() *contacts.Service {
	return contacts.NewService(nil, contacts.NewMemoryRepository())
}

func messageTexts(actions []flow.Action) []string {
	var texts []string
	for _, a := range actions {
		if msg, ok := a.(flow.SendMessage); ok {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

func TestStartCommandSendsWelcome(t *testing.T) {
	t.Parallel()
	runner := newRunner(t)

	result, err := runner.Step(context.Background(), flow.StepState{},
		flow.Event{Symbol: flow.EvTextCommandStart}, newEngine())
	require.NoError(t, err)

	assert.Equal(t, "idle", result.State)
	assert.Empty(t, result.Slots)
	require.Len(t, result.Actions, 1)
	msg, ok := result.Actions[0].(flow.SendMessage)
	require.True(t, ok)
	assert.Contains(t, msg.Text, "sharing a card")
	assert.Equal(t, "main", msg.Keyboard)
}

func TestContactShareThenContextCreatesContact(t *testing.T) {
	t.Parallel()
	runner := newRunner(t)
	engine := newEngine()
	ctx := context.Background()

	shared, err := runner.Step(ctx, flow.StepState{}, flow.Event{
		Symbol:  flow.EvContactShared,
		Payload: map[string]string{flow.PayloadName: "Alice", flow.PayloadPhone: "+12025551234"},
	}, engine)
	require.NoError(t, err)

	assert.Equal(t, "awaiting_context", shared.State)
	assert.NotEmpty(t, shared.Slots[flow.SlotPendingID])
	require.NotEmpty(t, messageTexts(shared.Actions))
	assert.Contains(t, messageTexts(shared.Actions)[0], "Alice")

	created, err := runner.Step(ctx, flow.StepState{State: shared.State, Slots: shared.Slots},
		flow.Event{
			Symbol:  flow.EvTextFree,
			Payload: map[string]string{flow.PayloadText: "Met at the conference"},
		}, engine)
	require.NoError(t, err)

	assert.Equal(t, "idle", created.State)
	assert.Empty(t, created.Slots, "slots are cleared on return to idle")
	require.NotEmpty(t, messageTexts(created.Actions))
	assert.Contains(t, messageTexts(created.Actions)[0], "Contact Alice added")

	listed, err := engine.ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Met at the conference", listed[0].Context)
}

func TestDuplicateShareOffersAddContext(t *testing.T) {
	t.Parallel()
	runner := newRunner(t)
	engine := newEngine()
	ctx := context.Background()

	share := flow.Event{
		Symbol:  flow.EvContactShared,
		Payload: map[string]string{flow.PayloadName: "Bob", flow.PayloadPhone: "+12025559999"},
	}
	first, err := runner.Step(ctx, flow.StepState{}, share, engine)
	require.NoError(t, err)
	_, err = runner.Step(ctx, flow.StepState{State: first.State, Slots: first.Slots},
		flow.Event{Symbol: flow.EvTextFree, Payload: map[string]string{flow.PayloadText: "Old roommate"}}, engine)
	require.NoError(t, err)

	dup, err := runner.Step(ctx, flow.StepState{State: "idle"}, share, engine)
	require.NoError(t, err)
	assert.Equal(t, "awaiting_add_context", dup.State)
	assert.NotEmpty(t, dup.Slots[flow.SlotPersonID])
	assert.Contains(t, messageTexts(dup.Actions)[0], "already in your contacts")

	appended, err := runner.Step(ctx, flow.StepState{State: dup.State, Slots: dup.Slots},
		flow.Event{Symbol: flow.EvTextFree, Payload: map[string]string{flow.PayloadText: "Now works at Acme"}}, engine)
	require.NoError(t, err)
	assert.Equal(t, "idle", appended.State)

	contact, found, err := engine.GetContact(ctx, dup.Slots[flow.SlotPersonID])
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, contact.Context, "Old roommate")
	assert.Contains(t, contact.Context, "Now works at Acme")
}

func TestSearchFlow(t *testing.T) {
	t.Parallel()
	runner := newRunner(t)
	engine := newEngine()
	ctx := context.Background()

	share, err := runner.Step(ctx, flow.StepState{}, flow.Event{
		Symbol:  flow.EvContactShared,
		Payload: map[string]string{flow.PayloadName: "Carol"},
	}, engine)
	require.NoError(t, err)
	_, err = runner.Step(ctx, flow.StepState{State: share.State, Slots: share.Slots},
		flow.Event{Symbol: flow.EvTextFree, Payload: map[string]string{flow.PayloadText: "React and TypeScript"}}, engine)
	require.NoError(t, err)

	prompt, err := runner.Step(ctx, flow.StepState{State: "idle"},
		flow.Event{Symbol: flow.EvCallbackSearch}, engine)
	require.NoError(t, err)
	assert.Equal(t, "awaiting_search", prompt.State)

	found, err := runner.Step(ctx, flow.StepState{State: prompt.State, Slots: prompt.Slots},
		flow.Event{Symbol: flow.EvTextFree, Payload: map[string]string{flow.PayloadText: "react"}}, engine)
	require.NoError(t, err)
	assert.Equal(t, "idle", found.State)
	require.Len(t, found.Actions, 1)
	list, ok := found.Actions[0].(flow.SendContactList)
	require.True(t, ok)
	require.Len(t, list.Summaries, 1)
	assert.Equal(t, "Carol", list.Summaries[0].Name)

	miss, err := runner.Step(ctx, flow.StepState{State: "idle"},
		flow.Event{Symbol: flow.EvTextCommandSearch, Payload: map[string]string{flow.PayloadText: "golf"}}, engine)
	require.NoError(t, err)
	assert.Equal(t, "idle", miss.State)
	assert.Contains(t, messageTexts(miss.Actions)[0], "No contacts match")
}

func TestFreeTextAtIdleAsksForCard(t *testing.T) {
	t.Parallel()
	runner := newRunner(t)

	result, err := runner.Step(context.Background(), flow.StepState{State: "idle"},
		flow.Event{Symbol: flow.EvTextFree, Payload: map[string]string{flow.PayloadText: "hello"}}, newEngine())
	require.NoError(t, err)
	assert.Equal(t, "idle", result.State)
	assert.Contains(t, messageTexts(result.Actions)[0], "Send a contact card first")
}

func TestUnmappedEventIsNoOp(t *testing.T) {
	t.Parallel()
	runner := newRunner(t)

	result, err := runner.Step(context.Background(), flow.StepState{State: "awaiting_search"},
		flow.Event{Symbol: flow.EvCallbackAddCtxDone}, newEngine())
	require.NoError(t, err)
	assert.Equal(t, "awaiting_search", result.State)
	assert.Empty(t, result.Actions)
}

func TestNewCardReplacesPendingOne(t *testing.T) {
	t.Parallel()
	runner := newRunner(t)
	engine := newEngine()
	ctx := context.Background()

	first, err := runner.Step(ctx, flow.StepState{}, flow.Event{
		Symbol:  flow.EvContactShared,
		Payload: map[string]string{flow.PayloadName: "First"},
	}, engine)
	require.NoError(t, err)

	second, err := runner.Step(ctx, flow.StepState{State: first.State, Slots: first.Slots},
		flow.Event{
			Symbol:  flow.EvContactShared,
			Payload: map[string]string{flow.PayloadName: "Second"},
		}, engine)
	require.NoError(t, err)
	assert.Equal(t, "awaiting_context", second.State)
	assert.NotEqual(t, first.Slots[flow.SlotPendingID], second.Slots[flow.SlotPendingID])

	done, err := runner.Step(ctx, flow.StepState{State: second.State, Slots: second.Slots},
		flow.Event{Symbol: flow.EvTextFree, Payload: map[string]string{flow.PayloadText: "The one that counts"}}, engine)
	require.NoError(t, err)
	assert.Equal(t, "idle", done.State)

	listed, err := engine.ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Second", listed[0].Name)
}

func TestStepLimitSurfacesAsError(t *testing.T) {
	t.Parallel()
	def, err := flow.LoadDefault()
	require.NoError(t, err)
	// Replace the welcome effect with one that relays forever.
	effects := flow.DefaultEffects()
	effects["welcome"] = func(context.Context, flow.Env) ([]flow.Action, string, error) {
		return nil, flow.EvTextCommandStart, nil
	}
	def.States["welcome"] = flow.State{Effect: "welcome", On: map[string]string{flow.EvTextCommandStart: "welcome"}}
	runner, err := flow.NewRunner(nil, def, effects)
	require.NoError(t, err)

	_, err = runner.Step(context.Background(), flow.StepState{},
		flow.Event{Symbol: flow.EvTextCommandStart}, newEngine())
	require.Error(t, err)
	assert.True(t, errors.Is(err, flow.ErrStepLimit))
}
