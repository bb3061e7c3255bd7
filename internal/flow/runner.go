package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/CiroGamboa/bimoi/internal/contacts"
)

// maxSteps bounds one Step call. A definition that relays forever is a
// configuration bug and must surface as an error, not a spinning loop.
const maxSteps = 50

// ErrStepLimit means the machine did not reach a waiting state within maxSteps.
var ErrStepLimit = errors.New("flow: step limit exceeded, definition has a relay cycle")

// Env is what an effect sees: the triggering event, the current slots, and
// the owner's lifecycle engine.
type Env struct {
	Def     *Definition
	Event   Event
	Slots   map[string]string
	Service *contacts.Service
}

// Effect runs a relay state's behavior. It returns the actions to perform and
// the outcome symbol to feed back into the machine; an empty outcome stops
// the step loop.
type Effect func(ctx context.Context, env Env) ([]Action, string, error)

// StepState is the persisted conversation position.
type StepState struct {
	State string            `json:"state"`
	Slots map[string]string `json:"slots"`
}

// StepResult is the new position plus the actions accumulated during the step.
type StepResult struct {
	State   string
	Slots   map[string]string
	Actions []Action
}

// Runner interprets a Definition with a set of named effects.
type Runner struct {
	def     *Definition
	effects map[string]Effect
	logger  *slog.Logger
}

// NewRunner binds effects to the definition. Every effect a relay state names
// must be registered.
func NewRunner(log *slog.Logger, def *Definition, effects map[string]Effect) (*Runner, error) {
	if log == nil {
		log = slog.Default()
	}
	for name, st := range def.States {
		if st.Effect == "" {
			continue
		}
		if _, ok := effects[st.Effect]; !ok {
			return nil, fmt.Errorf("flow: state %q names unregistered effect %q", name, st.Effect)
		}
	}
	return &Runner{
		def:     def,
		effects: effects,
		logger:  log.With(slog.String("component", "flow")),
	}, nil
}

// Definition returns the machine the runner interprets.
func (r *Runner) Definition() *Definition {
	return r.def
}

// Step advances the conversation by one user event. The machine transitions,
// runs relay effects, and feeds their outcomes back in until it lands on a
// waiting state. An event with no edge from the current state is a no-op.
// Slots are cleared when the machine returns to the initial state.
func (r *Runner) Step(ctx context.Context, st StepState, ev Event, svc *contacts.Service) (StepResult, error) {
	current := st.State
	if current == "" {
		current = r.def.Initial
	}
	slots := make(map[string]string, len(st.Slots))
	for k, v := range st.Slots {
		slots[k] = v
	}

	var actions []Action
	symbol := ev.Symbol
	for steps := 0; ; steps++ {
		if steps == maxSteps {
			return StepResult{}, fmt.Errorf("%w (state %q)", ErrStepLimit, current)
		}
		next, ok := r.def.Next(current, symbol)
		if !ok {
			break
		}
		current = next
		if r.def.IsWaiting(current) {
			break
		}

		effect := r.effects[r.def.States[current].Effect]
		effectActions, outcome, err := effect(ctx, Env{Def: r.def, Event: ev, Slots: slots, Service: svc})
		if err != nil {
			return StepResult{}, fmt.Errorf("flow: effect %q: %w", r.def.States[current].Effect, err)
		}
		actions = append(actions, effectActions...)
		applySlots(slots, effectActions)
		if outcome == "" {
			break
		}
		symbol = outcome
	}

	if current == r.def.Initial {
		slots = map[string]string{}
	}
	r.logger.Debug("step completed",
		slog.String("event", ev.Symbol),
		slog.String("from", st.State),
		slog.String("to", current),
		slog.Int("actions", len(actions)))
	return StepResult{State: current, Slots: slots, Actions: actions}, nil
}

func applySlots(slots map[string]string, actions []Action) {
	for _, a := range actions {
		switch act := a.(type) {
		case SetSlots:
			for k, v := range act.Slots {
				slots[k] = v
			}
		case ClearSlots:
			for _, k := range act.Keys {
				delete(slots, k)
			}
		}
	}
}
