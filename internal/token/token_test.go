package token

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("hi"), 0644))

	line := Encode(file, "/home/u/.xeno/remote-abc")
	got := Decode(line)
	require.NotNil(t, got)
	assert.True(t, got.IsFile)
	assert.Equal(t, file, got.RemotePath)
	assert.Equal(t, "/home/u/.xeno/remote-abc", got.RepoPath)
	assert.NotEmpty(t, got.RemoteVersion)
}

func TestAnchoring(t *testing.T) {
	line := EncodeKnown(false, "/tmp/dir", "/repo/path")

	assert.Nil(t, Decode(" "+line), "leading whitespace must defeat anchoring")

	withTrailing := line + "\njunk after newline"
	got := Decode(withTrailing)
	require.NotNil(t, got, "a token followed by trailing bytes on the same match is still accepted")
	assert.Equal(t, "/tmp/dir", got.RemotePath)
}

func TestDecodeMalformed(t *testing.T) {
	assert.Nil(t, Decode("not a token at all"))
	assert.Nil(t, Decode("<xeno-init>not-base64!!</xeno-init>"))
}
