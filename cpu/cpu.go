// Package cpu provides the RV32I/M fetch/decode/execute loop: a register
// file, a composed set of execution units (ALU, branch unit, load/store
// unit, syscall handler), and the running statistics a guest run produces.
package cpu

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/rv32sim/disasm"
	"github.com/sarchlab/rv32sim/insts"
	"github.com/sarchlab/rv32sim/mem"
	"github.com/sarchlab/rv32sim/trace"
)

// Sentinel errors surfaced at the boundary of a run.
var (
	ErrDecodeUnknown    = errors.New("unknown instruction")
	ErrInstructionLimit = errors.New("instruction limit reached")
	ErrHostIO           = errors.New("host I/O failure")
)

// Stats tallies the dynamic statistics of a run.
type Stats struct {
	Insns         uint64
	Branches      uint64
	TakenBranches uint64
}

// CPU interprets RV32I/M instructions against a register file and a
// Memory. It is not goroutine-safe: a single CPU drives exactly one guest
// hart, sequentially.
type CPU struct {
	regs *RegFile
	mem  *mem.Memory

	alu        *ALU
	branchUnit *BranchUnit
	lsu        *LoadStoreUnit
	syscalls   SyscallHandler

	stdin  io.Reader
	stdout io.Writer
	trace  *trace.Sink

	stats           Stats
	maxInstructions uint64
	lastBranch      *bool
}

// Option configures a CPU at construction time.
type Option func(*CPU)

// WithTrace attaches a per-instruction execution trace, and routes mem's
// unaligned-access diagnostics through the same sink.
func WithTrace(w io.Writer) Option {
	return func(c *CPU) { c.trace = trace.New(w) }
}

// WithStdin sets the reader backing the getchar host service. Defaults to
// os.Stdin.
func WithStdin(r io.Reader) Option {
	return func(c *CPU) { c.stdin = r }
}

// WithStdout sets the writer backing the putchar host service. Defaults to
// os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(c *CPU) { c.stdout = w }
}

// WithMaxInstructions bounds the number of instructions a run will execute
// before reporting ErrInstructionLimit. 0 (the default) means unlimited.
func WithMaxInstructions(max uint64) Option {
	return func(c *CPU) { c.maxInstructions = max }
}

// New composes a CPU over m. m is not copied; the CPU reads and writes it
// directly for the lifetime of the CPU.
func New(m *mem.Memory, opts ...Option) *CPU {
	regs := &RegFile{}
	c := &CPU{
		regs:   regs,
		mem:    m,
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.alu = NewALU(regs)
	c.branchUnit = NewBranchUnit(regs)
	c.lsu = NewLoadStoreUnit(regs, m)
	c.syscalls = NewDefaultSyscallHandler(regs, c.stdin, c.stdout, c.trace)

	if c.trace != nil {
		m.SetWarnSink(c.trace)
	}

	return c
}

// Stats returns the statistics accumulated so far.
func (c *CPU) Stats() Stats {
	return c.stats
}

// PC returns the current program counter.
func (c *CPU) PC() uint32 {
	return c.regs.PC
}

// Reg returns the current value of register reg (0..31).
func (c *CPU) Reg(reg uint8) uint32 {
	return c.regs.Read(reg)
}

// Run resets the register file, sets PC to entry, and steps until the
// guest exits or an error occurs.
func (c *CPU) Run(entry uint32) (Stats, error) {
	c.regs.X = [32]uint32{}
	c.regs.PC = entry
	c.stats = Stats{}

	for {
		exited, err := c.Step()
		if err != nil {
			return c.stats, err
		}
		if exited {
			return c.stats, nil
		}
	}
}

// Step performs one fetch/decode/execute cycle. It reports whether the
// guest requested termination via ecall a7 ∈ {3, 93}.
func (c *CPU) Step() (bool, error) {
	if c.maxInstructions > 0 && c.stats.Insns >= c.maxInstructions {
		return false, ErrInstructionLimit
	}

	c.regs.X[0] = 0
	c.lastBranch = nil

	pc := c.regs.PC
	word := c.mem.Read32(pc)
	c.stats.Insns++

	inst := insts.Decode(word)
	exited, err := c.execute(inst, pc)

	if c.trace != nil {
		c.emitTrace(pc, word, inst)
	}
	if errors.Is(err, ErrDecodeUnknown) {
		c.trace.Warn("%v", err)
	}

	return exited, err
}

func (c *CPU) execute(inst insts.Instruction, pc uint32) (bool, error) {
	switch inst.Format {
	case insts.FormatR:
		if inst.Op == insts.OpUnknown {
			return false, decodeErr(pc)
		}
		c.alu.ExecR(inst)
		c.regs.PC = pc + 4

	case insts.FormatI:
		if inst.Op == insts.OpJALR {
			c.execJALR(inst, pc)
			return false, nil
		}
		if inst.Op == insts.OpUnknown {
			return false, decodeErr(pc)
		}
		c.alu.ExecI(inst)
		c.regs.PC = pc + 4

	case insts.FormatIShift:
		if inst.Op == insts.OpUnknown {
			return false, decodeErr(pc)
		}
		c.alu.ExecI(inst)
		c.regs.PC = pc + 4

	case insts.FormatILoad:
		if inst.Op == insts.OpUnknown {
			return false, decodeErr(pc)
		}
		c.lsu.Load(inst)
		c.regs.PC = pc + 4

	case insts.FormatS:
		if inst.Op == insts.OpUnknown {
			return false, decodeErr(pc)
		}
		c.lsu.Store(inst)
		c.regs.PC = pc + 4

	case insts.FormatB:
		if inst.Op == insts.OpUnknown {
			return false, decodeErr(pc)
		}
		c.execBranch(inst, pc)

	case insts.FormatU:
		switch inst.Op {
		case insts.OpLUI:
			c.regs.Write(inst.Rd, uint32(inst.Imm))
		case insts.OpAUIPC:
			c.regs.Write(inst.Rd, pc+uint32(inst.Imm))
		default:
			return false, decodeErr(pc)
		}
		c.regs.PC = pc + 4

	case insts.FormatJ:
		c.regs.Write(inst.Rd, pc+4)
		c.regs.PC = pc + uint32(inst.Imm)

	case insts.FormatSystem:
		if inst.Op != insts.OpECALL {
			return false, decodeErr(pc)
		}
		c.regs.PC = pc + 4
		result, err := c.syscalls.Handle()
		if err != nil {
			return false, err
		}
		return result.Exited, nil

	default:
		return false, decodeErr(pc)
	}

	return false, nil
}

func decodeErr(pc uint32) error {
	return fmt.Errorf("%w: at 0x%08x", ErrDecodeUnknown, pc)
}

// execJALR computes the jump target from the pre-write value of rs1 before
// writing rd, so rd == rs1 does not corrupt the target.
func (c *CPU) execJALR(inst insts.Instruction, pc uint32) {
	target := (c.regs.Read(inst.Rs1) + uint32(inst.Imm)) &^ 1
	c.regs.Write(inst.Rd, pc+4)
	c.regs.PC = target
}

func (c *CPU) execBranch(inst insts.Instruction, pc uint32) {
	c.stats.Branches++
	taken := c.branchUnit.Taken(inst)
	c.lastBranch = &taken
	if taken {
		c.stats.TakenBranches++
		c.regs.PC = pc + uint32(inst.Imm)
	} else {
		c.regs.PC = pc + 4
	}
}

func (c *CPU) emitTrace(pc, word uint32, inst insts.Instruction) {
	line := fmt.Sprintf("%08d pc=%08x word=%08x %s", c.stats.Insns, pc, word, disasm.Disassemble(pc, word, nil))
	if inst.Format == insts.FormatB && c.lastBranch != nil {
		if *c.lastBranch {
			line += " [taken]"
		} else {
			line += " [not-taken]"
		}
	}
	c.trace.Emit(line)
}
