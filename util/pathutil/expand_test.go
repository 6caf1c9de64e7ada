package pathutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, "bin", "just"), ExpandHome("~/bin/just"))
	assert.Equal(t, "just", ExpandHome("just"))
	assert.Equal(t, "~other/x", ExpandHome("~other/x"))
	assert.Equal(t, "/opt/just", ExpandHome("/opt/just"))
}

func TestExpand(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("JUSTRUN_TEST_DIR", "projects")

	got, err := Expand("~/$JUSTRUN_TEST_DIR/app")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "projects", "app"), got)

	got, err = Expand("relative")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}
