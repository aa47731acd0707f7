package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGetSet(t *testing.T) {
	c := &Config{sections: map[string]map[string]string{}}
	require.NoError(t, c.parse(strings.NewReader("[core]\nworkingDirectory = /srv/xeno\neditor = nvim\n")))

	v, ok := c.Get("core", "workingDirectory")
	require.True(t, ok)
	assert.Equal(t, "/srv/xeno", v)

	_, ok = c.Get("core", "missing")
	assert.False(t, ok)

	c.Set("ssh", "keepAliveInterval", "30")
	v, ok = c.Get("ssh", "keepAliveInterval")
	require.True(t, ok)
	assert.Equal(t, "30", v)
}

func TestClearPrunesEmptySection(t *testing.T) {
	c := &Config{sections: map[string]map[string]string{}}
	c.Set("core", "editor", "nvim")
	c.Clear("core", "editor")

	_, ok := c.Get("core", "editor")
	assert.False(t, ok)
	assert.NotContains(t, c.Sections(), "core")
}

func TestWriteDeterministicOrder(t *testing.T) {
	c := &Config{sections: map[string]map[string]string{}}
	c.Set("core", "zeta", "1")
	c.Set("core", "alpha", "2")

	var buf bytes.Buffer
	require.NoError(t, c.Write(&buf))

	out := buf.String()
	assert.True(t, strings.Index(out, "alpha") < strings.Index(out, "zeta"))
	assert.Equal(t, "[core]\nalpha = 2\nzeta = 1\n", out)
}

func TestSplitKey(t *testing.T) {
	section, option, err := SplitKey("core.editor")
	require.NoError(t, err)
	assert.Equal(t, "core", section)
	assert.Equal(t, "editor", option)

	_, _, err = SplitKey("noDot")
	assert.Error(t, err)

	_, _, err = SplitKey("core.")
	assert.Error(t, err)
}

func TestEditorFallsBackToEnvThenDefault(t *testing.T) {
	c := &Config{sections: map[string]map[string]string{}}

	t.Setenv("EDITOR", "")
	assert.Equal(t, "vi", c.Editor())

	t.Setenv("EDITOR", "emacs")
	assert.Equal(t, "emacs", c.Editor())

	c.Set("core", "editor", "nvim")
	assert.Equal(t, "nvim", c.Editor())
}

func TestWorkingDirectoryDefaultsUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c := &Config{sections: map[string]map[string]string{}}
	dir, err := c.WorkingDirectory()
	require.NoError(t, err)
	assert.Equal(t, home+"/.xeno", dir)
}
