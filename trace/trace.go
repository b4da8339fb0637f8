// Package trace provides the simulator's log sink: a small wrapper around
// an io.Writer used for the per-instruction execution trace (spec.md §4.4)
// and for diagnostics (unaligned access and unknown syscall, which are not
// fatal, and unknown opcode, which also ends the run — spec.md §7). The
// format is human-readable text, not a
// machine-parseable contract.
package trace

import (
	"fmt"
	"io"
)

// Sink emits trace lines and warnings to an underlying writer.
type Sink struct {
	w io.Writer
}

// New wraps w as a Sink. A nil w is valid: Emit and Warn become no-ops.
func New(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Emit writes one already-formatted trace line, terminated with a newline.
func (s *Sink) Emit(line string) {
	if s == nil || s.w == nil {
		return
	}
	fmt.Fprintln(s.w, line)
}

// Warn writes a single diagnostic line prefixed with "warning: ".
func (s *Sink) Warn(format string, args ...any) {
	if s == nil || s.w == nil {
		return
	}
	fmt.Fprintf(s.w, "warning: "+format+"\n", args...)
}

// Write implements io.Writer so a Sink can be handed directly to a
// collaborator (such as mem.Memory) that only knows how to warn through a
// plain writer.
func (s *Sink) Write(p []byte) (int, error) {
	if s == nil || s.w == nil {
		return len(p), nil
	}
	return s.w.Write(p)
}
