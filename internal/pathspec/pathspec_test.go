package pathspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenoscopic/xeno/internal/xerr"
)

func TestParseRemoteWithPort(t *testing.T) {
	s, err := Parse("jacob@myhost:25:/the/path")
	require.NoError(t, err)
	assert.Equal(t, "jacob", s.User)
	assert.Equal(t, "myhost", s.Host)
	assert.Equal(t, 25, s.Port)
	assert.Equal(t, "/the/path", s.FilePath)
	assert.False(t, s.IsLocal())
}

func TestParseLocal(t *testing.T) {
	s, err := Parse("/the/path")
	require.NoError(t, err)
	assert.True(t, s.IsLocal())
	assert.Equal(t, "/the/path", s.FilePath)
}

func TestParseHostNoPort(t *testing.T) {
	s, err := Parse("myhost:/the/path")
	require.NoError(t, err)
	assert.Equal(t, "myhost", s.Host)
	assert.False(t, s.HasPort())
	assert.Equal(t, "/the/path", s.FilePath)
}

func TestParseInvalid(t *testing.T) {
	cases := []string{
		"jacob@/the/path",          // user without host
		"",                          // empty
		"a@b@c:/path",               // two '@'
		"host:notaport:/path",       // non-integer port
		"host:1:2:/path",            // too many colons
		"host:",                     // empty path
	}
	for _, c := range cases {
		_, err := Parse(c)
		require.Error(t, err, c)
		assert.True(t, xerr.Is(err, xerr.InvalidSpecification), c)
	}
}
