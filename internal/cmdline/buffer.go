package cmdline

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultCapacity matches the CreateProcess command-line limit: 32767
// characters plus the terminator.
const DefaultCapacity = 32 * 1024

// TruncatedError reports a write that did not fit into a Buffer.
type TruncatedError struct {
	Capacity int // usable bytes
	Want     int // bytes that would have been needed
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("command line truncated: need %d bytes, capacity %d", e.Want, e.Capacity)
}

// Buffer is a string builder with a fixed upper bound. Capacity counts
// the terminating NUL that CreateProcess needs, so Cap() is one less.
// Lengths are in bytes; a UTF-8 string never has fewer bytes than UTF-16
// code units, so the bound also holds after conversion on Windows.
type Buffer struct {
	sb    strings.Builder
	limit int
	want  int
	trunc bool
}

func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{limit: capacity - 1}
}

// WriteString appends s, cutting it at the capacity on a rune boundary.
// Once truncated every further write reports a *TruncatedError.
func (b *Buffer) WriteString(s string) (int, error) {
	b.want += len(s)
	if b.trunc {
		return 0, b.err()
	}
	room := b.limit - b.sb.Len()
	if len(s) <= room {
		b.sb.WriteString(s)
		return len(s), nil
	}
	cut := room
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	b.sb.WriteString(s[:cut])
	b.trunc = true
	return cut, b.err()
}

func (b *Buffer) err() error {
	return &TruncatedError{Capacity: b.limit, Want: b.want}
}

func (b *Buffer) Len() int        { return b.sb.Len() }
func (b *Buffer) Cap() int        { return b.limit }
func (b *Buffer) Truncated() bool { return b.trunc }
func (b *Buffer) String() string  { return b.sb.String() }
