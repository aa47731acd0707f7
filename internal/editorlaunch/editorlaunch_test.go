package editorlaunch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xenoscopic/xeno/internal/xerr"
)

func TestLaunchEmptyEditor(t *testing.T) {
	_, err := Launch("", "/tmp/somefile")
	assert.True(t, xerr.Is(err, xerr.EditorUnavailable))
}

func TestLaunchUnknownEditor(t *testing.T) {
	_, err := Launch("xeno-definitely-not-a-real-editor-binary", "/tmp/somefile")
	assert.True(t, xerr.Is(err, xerr.EditorUnavailable))
}

func TestLaunchSuccess(t *testing.T) {
	code, err := Launch("true", "/tmp/somefile")
	assert.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestLaunchNonZeroExit(t *testing.T) {
	code, err := Launch("false", "/tmp/somefile")
	assert.NoError(t, err)
	assert.Equal(t, 1, code)
}
