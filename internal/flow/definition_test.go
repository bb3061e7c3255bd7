package flow_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CiroGamboa/bimoi/internal/flow"
)

func writeDefinition(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestLoadDefaultDefinition(t *testing.T) {
	t.Parallel()
	def, err := flow.LoadDefault()
	require.NoError(t, err)

	assert.Equal(t, "idle", def.Initial)
	assert.True(t, def.IsWaiting("idle"))
	assert.True(t, def.IsWaiting("awaiting_context"))
	assert.False(t, def.IsWaiting("receive_contact"))

	target, ok := def.Next("idle", flow.EvContactShared)
	require.True(t, ok)
	assert.Equal(t, "receive_contact", target)

	_, ok = def.Next("idle", "NO_SUCH_EVENT")
	assert.False(t, ok)
}

func TestLoadRejectsUnknownTarget(t *testing.T) {
	t.Parallel()
	path := writeDefinition(t, `
initial: idle
waiting: [idle]
states:
  idle:
    on:
      GO: nowhere
`)
	_, err := flow.LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown state")
}

func TestLoadRejectsMissingInitial(t *testing.T) {
	t.Parallel()
	path := writeDefinition(t, `
waiting: [idle]
states:
  idle:
    on: {}
`)
	_, err := flow.LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial")
}

func TestLoadRejectsRelayWithoutEffect(t *testing.T) {
	t.Parallel()
	path := writeDefinition(t, `
initial: idle
waiting: [idle]
states:
  idle:
    on:
      GO: relay
  relay:
    on:
      DONE: idle
`)
	_, err := flow.LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must have an effect")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	t.Parallel()
	path := writeDefinition(t, "states: [not, a, map")
	_, err := flow.LoadFile(path)
	require.Error(t, err)
}

func TestNewRunnerRejectsUnregisteredEffect(t *testing.T) {
	t.Parallel()
	def, err := flow.LoadDefault()
	require.NoError(t, err)

	_, err = flow.NewRunner(nil, def, map[string]flow.Effect{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unregistered effect")
}

func TestMessageTemplating(t *testing.T) {
	t.Parallel()
	def, err := flow.LoadDefault()
	require.NoError(t, err)

	text := def.Message("contact_created", map[string]string{"name": "Alice"})
	assert.Contains(t, text, "Contact Alice added")

	assert.Equal(t, "no_such_id", def.Message("no_such_id", nil))
}
