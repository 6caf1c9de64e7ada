package state

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateOperations(t *testing.T) {
	dir := t.TempDir()

	t.Run("Load empty state", func(t *testing.T) {
		state, err := Load(dir)
		require.NoError(t, err)
		assert.NotNil(t, state)
		assert.Empty(t, state)
	})

	t.Run("Set and Get", func(t *testing.T) {
		require.NoError(t, Set(dir, "theme", "kanagawa"))

		val, ok, err := Get(dir, "theme")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "kanagawa", val)

		_, err = os.Stat(Path(dir))
		assert.NoError(t, err)
	})

	t.Run("GetString ignores other types", func(t *testing.T) {
		require.NoError(t, Set(dir, "count", 3))

		s, err := GetString(dir, "count")
		require.NoError(t, err)
		assert.Empty(t, s)

		s, err = GetString(dir, "missing")
		require.NoError(t, err)
		assert.Empty(t, s)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, Delete(dir, "theme"))
		_, ok, err := Get(dir, "theme")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestLoadCorruptState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(dir+"/.justrun", 0755))
	require.NoError(t, os.WriteFile(Path(dir), []byte("{not yaml"), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLastRun(t *testing.T) {
	dir := t.TempDir()

	_, ok, err := LoadLastRun(dir)
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	require.NoError(t, SaveLastRun(dir, LastRun{
		Recipe: "deploy",
		Inputs: map[string]string{"env": "prod", "flags": "--a --b"},
		Mode:   "detached",
		RunID:  "abc",
		At:     at,
	}))
	require.NoError(t, Set(dir, "other", "kept"))

	run, ok, err := LoadLastRun(dir)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "deploy", run.Recipe)
	assert.Equal(t, map[string]string{"env": "prod", "flags": "--a --b"}, run.Inputs)
	assert.Equal(t, "detached", run.Mode)
	assert.Equal(t, "abc", run.RunID)
	assert.True(t, at.Equal(run.At))
}
