package env

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loykin/launchstub/internal/location"
)

func testLocation(t *testing.T) location.Location {
	t.Helper()
	sep := string(os.PathSeparator)
	loc, err := location.FromPath(sep + "prebuilts" + sep + "bin" + sep + "gdb.exe")
	require.NoError(t, err)
	return loc
}

func TestBuildPrefixesSearchPath(t *testing.T) {
	loc := testLocation(t)
	list := string(filepath.ListSeparator)
	for _, orig := range []string{"/usr/bin", "a" + list + "b", " ", "x"} {
		base := FromList([]string{"PATH=" + orig, "KEEP=1"})
		out, err := DefaultBuilder().Build(base, loc)
		require.NoError(t, err)

		got, _ := out.Lookup("PATH")
		assert.Equal(t, loc.Dir+"."+list+orig, got)
		assert.True(t, strings.HasSuffix(got, list+orig))

		keep, _ := out.Lookup("KEEP")
		assert.Equal(t, "1", keep)

		// base block is untouched
		v, _ := base.Lookup("PATH")
		assert.Equal(t, orig, v)
		_, ok := base.Lookup("PYTHONHOME")
		assert.False(t, ok)
	}
}

func TestBuildSetsInterpreterHome(t *testing.T) {
	loc := testLocation(t)
	base := FromList([]string{"PATH=/bin", "PYTHONHOME=/stale"})
	out, err := DefaultBuilder().Build(base, loc)
	require.NoError(t, err)
	home, ok := out.Lookup("PYTHONHOME")
	require.True(t, ok)
	assert.Equal(t, loc.Dir+"..", home)
}

func TestBuildMissingPath(t *testing.T) {
	loc := testLocation(t)
	for _, base := range []*Env{New(), FromList([]string{"PATH="})} {
		_, err := DefaultBuilder().Build(base, loc)
		assert.ErrorIs(t, err, ErrPathUnset)
	}
}

func TestBuildCustomVariables(t *testing.T) {
	loc := testLocation(t)
	b := Builder{PathVar: "TOOLPATH", HomeVar: "TOOLHOME", PathRel: "tools", HomeRel: "share"}
	out, err := b.Build(FromList([]string{"TOOLPATH=/opt"}), loc)
	require.NoError(t, err)
	p, _ := out.Lookup("TOOLPATH")
	assert.Equal(t, SearchPath(loc.Dir+"tools", "/opt"), p)
	h, _ := out.Lookup("TOOLHOME")
	assert.Equal(t, loc.Dir+"share", h)
}

func TestOSEnvironmentNotModified(t *testing.T) {
	t.Setenv("PYTHONHOME", "untouched")
	loc := testLocation(t)
	_, err := DefaultBuilder().Build(FromList([]string{"PATH=/bin"}), loc)
	require.NoError(t, err)
	assert.Equal(t, "untouched", os.Getenv("PYTHONHOME"))
}
