package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xenoscopic/xeno/internal/pathspec"
)

func TestCloneURLFromSpec(t *testing.T) {
	spec, err := pathspec.Parse("alice@example.com:2222:/var/www")
	assert.NoError(t, err)
	assert.Equal(t, "ssh://alice@example.com:2222/repo", cloneURL(spec, "/repo"))
}

func TestCloneURLNoUserNoPort(t *testing.T) {
	spec, err := pathspec.Parse("example.com:/var/www")
	assert.NoError(t, err)
	assert.Equal(t, "ssh://example.com/repo", cloneURL(spec, "/repo"))
}
