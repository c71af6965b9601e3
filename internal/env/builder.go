package env

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/loykin/launchstub/internal/location"
)

// Defaults for a gdb build with an embedded Python: the stub lives in
// $PREBUILTS/bin and the interpreter home is $PREBUILTS.
const (
	DefaultPathVar = "PATH"
	DefaultHomeVar = "PYTHONHOME"
	DefaultPathRel = "."
	DefaultHomeRel = ".."
)

// ErrPathUnset is returned when the base block has no search path.
var ErrPathUnset = errors.New("search path variable is not set")

// Builder derives the child's search path and interpreter home from the
// launcher location.
type Builder struct {
	PathVar string // search path variable, PATH
	HomeVar string // interpreter home variable, PYTHONHOME
	PathRel string // directory prepended to the search path, relative to the launcher
	HomeRel string // interpreter home, relative to the launcher
}

func DefaultBuilder() Builder {
	return Builder{
		PathVar: DefaultPathVar,
		HomeVar: DefaultHomeVar,
		PathRel: DefaultPathRel,
		HomeRel: DefaultHomeRel,
	}
}

// WithDefaults fills empty fields with the Default* values.
func (b Builder) WithDefaults() Builder {
	if b.PathVar == "" {
		b.PathVar = DefaultPathVar
	}
	if b.HomeVar == "" {
		b.HomeVar = DefaultHomeVar
	}
	if b.PathRel == "" {
		b.PathRel = DefaultPathRel
	}
	if b.HomeRel == "" {
		b.HomeRel = DefaultHomeRel
	}
	return b
}

// Build returns a copy of base with the search path prefixed by
// <dir>/<PathRel> and the interpreter home set to <dir>/<HomeRel>.
// base itself is left unchanged.
func (b Builder) Build(base *Env, loc location.Location) (*Env, error) {
	b = b.WithDefaults()
	orig, ok := base.Lookup(b.PathVar)
	if !ok || orig == "" {
		return nil, fmt.Errorf("%s: %w", b.PathVar, ErrPathUnset)
	}
	out := base.Clone()
	out.Set(b.PathVar, SearchPath(loc.Rel(b.PathRel), orig))
	out.Set(b.HomeVar, loc.Rel(b.HomeRel))
	return out, nil
}

// SearchPath prepends dir to list using the platform list separator.
func SearchPath(dir, list string) string {
	return dir + string(filepath.ListSeparator) + list
}
