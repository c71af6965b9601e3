// Package cmdline composes the command line handed to the wrapped program.
//
// Arguments are joined with single spaces and never quoted, so an argument
// containing whitespace reaches the target as several tokens.
package cmdline

import "strings"

// Line is a composed command line.
type Line struct {
	Target    string   // path of the wrapped executable
	Args      []string // forwarded arguments as received
	Text      string   // full command line, target first
	Truncated bool
}

// Compose builds "<target> <arg1> <arg2> ... " into a buffer of the given
// capacity. Each piece is followed by one space, so zero arguments yield
// the target and a trailing space. On overflow the truncated Line is
// returned together with a *TruncatedError.
func Compose(target string, args []string, capacity int) (Line, error) {
	buf := NewBuffer(capacity)
	var firstErr error
	write := func(s string) {
		if _, err := buf.WriteString(s); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	write(target)
	write(" ")
	for _, a := range args {
		write(a)
		write(" ")
	}
	line := Line{
		Target:    target,
		Args:      args,
		Text:      buf.String(),
		Truncated: buf.Truncated(),
	}
	if firstErr != nil {
		// report the final shortfall, not the first one
		return line, buf.err()
	}
	return line, nil
}

// Fields returns the argument tokens the target will see after the
// program name, splitting the composed text on whitespace.
func (l Line) Fields() []string {
	rest := strings.TrimPrefix(l.Text, l.Target)
	if len(rest) == len(l.Text) {
		// truncated inside the target path
		return nil
	}
	return strings.Fields(rest)
}

// Argv returns the target followed by Fields, for exec on POSIX.
func (l Line) Argv() []string {
	return append([]string{l.Target}, l.Fields()...)
}
