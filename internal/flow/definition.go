// Package flow drives the bot conversation as a declarative state machine.
// The definition (states, transitions, message copy, keyboards) lives in YAML;
// behavior lives in named effects bound to relay states. Waiting states pause
// the machine until the next user event.
package flow

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed telegram.yaml
var defaultDefinition []byte

// State is one node of the machine. Relay states name an effect to run on
// entry; waiting states have no effect and stop the step loop.
type State struct {
	On     map[string]string `yaml:"on"`
	Effect string            `yaml:"effect"`
}

// Definition is the whole machine plus its message templates and keyboards.
type Definition struct {
	Initial   string                `yaml:"initial"`
	Waiting   []string              `yaml:"waiting"`
	States    map[string]State      `yaml:"states"`
	Messages  map[string]string     `yaml:"messages"`
	Keyboards map[string][][]string `yaml:"keyboards"`

	waiting map[string]struct{}
}

// LoadDefault parses the embedded Telegram definition.
func LoadDefault() (*Definition, error) {
	return parse(defaultDefinition)
}

// LoadFile parses a definition from a YAML file, for overriding the embedded
// copy without rebuilding.
func LoadFile(path string) (*Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flow definition: %w", err)
	}
	return parse(raw)
}

// Load returns the definition at path, or the embedded default when path is
// empty.
func Load(path string) (*Definition, error) {
	if path == "" {
		return LoadDefault()
	}
	return LoadFile(path)
}

func parse(raw []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("parse flow definition: %w", err)
	}
	if err := def.validate(); err != nil {
		return nil, fmt.Errorf("invalid flow definition: %w", err)
	}
	def.waiting = make(map[string]struct{}, len(def.Waiting))
	for _, name := range def.Waiting {
		def.waiting[name] = struct{}{}
	}
	return &def, nil
}

func (d *Definition) validate() error {
	if len(d.States) == 0 {
		return fmt.Errorf("no states defined")
	}
	if d.Initial == "" {
		return fmt.Errorf("missing initial state")
	}
	if _, ok := d.States[d.Initial]; !ok {
		return fmt.Errorf("initial state %q not defined", d.Initial)
	}
	waiting := make(map[string]struct{}, len(d.Waiting))
	for _, name := range d.Waiting {
		if _, ok := d.States[name]; !ok {
			return fmt.Errorf("waiting state %q not defined", name)
		}
		waiting[name] = struct{}{}
	}
	if _, ok := waiting[d.Initial]; !ok {
		return fmt.Errorf("initial state %q must be a waiting state", d.Initial)
	}
	for name, st := range d.States {
		for event, target := range st.On {
			if _, ok := d.States[target]; !ok {
				return fmt.Errorf("state %q: event %q targets unknown state %q", name, event, target)
			}
		}
		_, isWaiting := waiting[name]
		if isWaiting && st.Effect != "" {
			return fmt.Errorf("waiting state %q must not have an effect", name)
		}
		if !isWaiting && st.Effect == "" {
			return fmt.Errorf("relay state %q must have an effect", name)
		}
	}
	return nil
}

// IsWaiting reports whether name is a waiting state.
func (d *Definition) IsWaiting(name string) bool {
	_, ok := d.waiting[name]
	return ok
}

// Next returns the target for (state, event), or ok=false when the state has
// no edge for the event.
func (d *Definition) Next(state, event string) (string, bool) {
	st, ok := d.States[state]
	if !ok {
		return "", false
	}
	target, ok := st.On[event]
	return target, ok
}

// Message renders the named template, substituting {placeholder} occurrences.
// An unknown id renders as the id itself so missing copy is visible in chat
// rather than silently dropped.
func (d *Definition) Message(id string, vars map[string]string) string {
	text, ok := d.Messages[id]
	if !ok {
		return id
	}
	for k, v := range vars {
		text = strings.ReplaceAll(text, "{"+k+"}", v)
	}
	return text
}
