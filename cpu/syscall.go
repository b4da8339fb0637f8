package cpu

import (
	"fmt"
	"io"

	"github.com/sarchlab/rv32sim/trace"
)

// Host-service numbers dispatched through a7 (register 17).
const (
	SyscallGetchar   uint32 = 1
	SyscallPutchar   uint32 = 2
	SyscallExit      uint32 = 3
	SyscallExitGroup uint32 = 93
)

// SyscallResult reports whether a host-service call terminated the run.
type SyscallResult struct {
	Exited   bool
	ExitCode int32
}

// SyscallHandler dispatches the host service named by a7 (register 17).
type SyscallHandler interface {
	Handle() (SyscallResult, error)
}

// DefaultSyscallHandler implements the getchar/putchar/exit/exit_group
// services specified for ecall.
type DefaultSyscallHandler struct {
	regs   *RegFile
	stdin  io.Reader
	stdout io.Writer
	warn   *trace.Sink
}

// NewDefaultSyscallHandler returns a handler operating on regs, reading
// getchar from stdin and writing putchar to stdout. warn may be nil.
func NewDefaultSyscallHandler(regs *RegFile, stdin io.Reader, stdout io.Writer, warn *trace.Sink) *DefaultSyscallHandler {
	return &DefaultSyscallHandler{regs: regs, stdin: stdin, stdout: stdout, warn: warn}
}

// Handle dispatches on a7 (register 17).
func (h *DefaultSyscallHandler) Handle() (SyscallResult, error) {
	switch h.regs.Read(17) {
	case SyscallGetchar:
		return SyscallResult{}, h.getchar()
	case SyscallPutchar:
		return SyscallResult{}, h.putchar()
	case SyscallExit, SyscallExitGroup:
		return SyscallResult{Exited: true, ExitCode: int32(h.regs.Read(10))}, nil
	default:
		h.warn.Warn("unknown syscall a7=%d", h.regs.Read(17))
		return SyscallResult{}, nil
	}
}

// getchar reads one byte from stdin into a0 (register 10), placing -1 on EOF
// or any read error that yields no bytes.
func (h *DefaultSyscallHandler) getchar() error {
	buf := make([]byte, 1)
	n, err := h.stdin.Read(buf)
	if n == 0 {
		h.regs.Write(10, 0xFFFFFFFF) // -1
		if err != nil && err != io.EOF {
			return fmt.Errorf("%w: getchar: %v", ErrHostIO, err)
		}
		return nil
	}
	h.regs.Write(10, uint32(buf[0]))
	return nil
}

// putchar writes the low byte of a0 (register 10) to stdout.
func (h *DefaultSyscallHandler) putchar() error {
	b := byte(h.regs.Read(10))
	if _, err := h.stdout.Write([]byte{b}); err != nil {
		return fmt.Errorf("%w: putchar: %v", ErrHostIO, err)
	}
	return nil
}
