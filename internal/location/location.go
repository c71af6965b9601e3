package location

import (
	"errors"
	"os"
	"strings"
)

// ErrNoSeparator is returned when the launcher path has no directory part.
var ErrNoSeparator = errors.New("launcher path has no path separator")

// executable is swapped in tests.
var executable = os.Executable

// Location describes where the launcher binary lives on disk.
// Dir keeps its trailing separator so relative names can be appended
// verbatim, e.g. Rel(".") yields "C:\tools\bin\.".
type Location struct {
	Path string // launcher executable as reported by the OS
	Dir  string // Path truncated after its last separator
}

// Locate asks the OS for the launcher's own path and derives its directory.
func Locate() (Location, error) {
	p, err := executable()
	if err != nil {
		return Location{}, err
	}
	if p == "" {
		return Location{}, errors.New("empty executable path")
	}
	return FromPath(p)
}

// FromPath truncates p after its last path separator.
func FromPath(p string) (Location, error) {
	i := len(p) - 1
	for i >= 0 && !os.IsPathSeparator(p[i]) {
		i--
	}
	if i < 0 {
		return Location{}, ErrNoSeparator
	}
	return Location{Path: p, Dir: p[:i+1]}, nil
}

// Rel appends name to the launcher directory without cleaning the result.
func (l Location) Rel(name string) string { return l.Dir + name }

// Base returns the launcher file name.
func (l Location) Base() string { return l.Path[len(l.Dir):] }

// Ext returns the launcher file extension including the dot, or "".
func (l Location) Ext() string {
	b := l.Base()
	if i := strings.LastIndexByte(b, '.'); i > 0 {
		return b[i:]
	}
	return ""
}

// Stem returns the launcher file name without its extension.
func (l Location) Stem() string {
	b := l.Base()
	return b[:len(b)-len(l.Ext())]
}

// Sibling returns the default name of the wrapped executable: the
// launcher's own name with "-orig" inserted before the extension.
func (l Location) Sibling() string {
	return l.Stem() + "-orig" + l.Ext()
}
