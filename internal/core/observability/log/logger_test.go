package log

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerLevelRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	l, err := NewWithOptions(Options{Level: LevelWarn, Outputs: []string{path}})
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, l.GetLevel())

	l.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, l.GetLevel())

	child := l.With(String("prop", "katana"), Float64("speed", 3.5))
	child.Debug("slash", Duration("cooldown", 300*time.Millisecond), Error(errors.New("x")))
	assert.NoError(t, l.Sync())
}

func TestNopLoggerDiscards(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Info("ignored", Bool("ok", true), Int("n", 1), Uint64("tick", 9))
		l.Log(LevelSilent, "never")
	})
}
