package injector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/grip/internal/core/feedback"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestProvideConfigDefaults(t *testing.T) {
	cfg, err := ProvideConfig("")
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestInitializeRuntime(t *testing.T) {
	cfgPath := write(t, "grip.yaml", "log:\n  level: silent\n")
	scriptPath := write(t, "demo.yaml", `
duration: 100ms
props: [{name: katana}]
hands: [{name: right, haptics: true}]
steps:
  - {at: 0s, action: grab, prop: katana, hand: right}
  - {at: 40ms, action: manual_slash, prop: katana}
`)

	rt, cleanup, err := InitializeRuntime(ConfigPath(cfgPath), ScenarioPath(scriptPath))
	require.NoError(t, err)
	defer cleanup()

	for !rt.World.Director.Done() {
		require.NoError(t, rt.Loop.Advance(rt.Config.Simulation.Step))
	}
	assert.EqualValues(t, 5, rt.Loop.GetMetrics().FixedTicks)
	assert.EqualValues(t, 1, rt.Sink.Played(feedback.Slash))
	assert.Len(t, rt.World.Hands["right"].Pulses(), 1)
}

func TestInitializeRuntimeMissingScript(t *testing.T) {
	_, _, err := InitializeRuntime("", ScenarioPath(filepath.Join(t.TempDir(), "none.yaml")))
	assert.Error(t, err)
}
