package cpu

import (
	"github.com/sarchlab/rv32sim/insts"
	"github.com/sarchlab/rv32sim/mem"
)

// LoadStoreUnit executes the load and store instruction families against
// guest memory. Unaligned effective addresses are legal; mem decomposes
// them into byte operations.
type LoadStoreUnit struct {
	regs *RegFile
	mem  *mem.Memory
}

// NewLoadStoreUnit returns a LoadStoreUnit operating on regs and m.
func NewLoadStoreUnit(regs *RegFile, m *mem.Memory) *LoadStoreUnit {
	return &LoadStoreUnit{regs: regs, mem: m}
}

// Load executes a decoded load instruction, sign- or zero-extending the
// result per its width as lb/lh/lbu/lhu require.
func (l *LoadStoreUnit) Load(inst insts.Instruction) {
	addr := l.regs.Read(inst.Rs1) + uint32(inst.Imm)

	var value uint32
	switch inst.Op {
	case insts.OpLB:
		value = uint32(int32(int8(l.mem.Read8(addr))))
	case insts.OpLH:
		value = uint32(int32(int16(l.mem.Read16(addr))))
	case insts.OpLW:
		value = l.mem.Read32(addr)
	case insts.OpLBU:
		value = uint32(l.mem.Read8(addr))
	case insts.OpLHU:
		value = uint32(l.mem.Read16(addr))
	}
	l.regs.Write(inst.Rd, value)
}

// Store executes a decoded store instruction.
func (l *LoadStoreUnit) Store(inst insts.Instruction) {
	addr := l.regs.Read(inst.Rs1) + uint32(inst.Imm)
	value := l.regs.Read(inst.Rs2)

	switch inst.Op {
	case insts.OpSB:
		l.mem.Write8(addr, uint8(value))
	case insts.OpSH:
		l.mem.Write16(addr, uint16(value))
	case insts.OpSW:
		l.mem.Write32(addr, value)
	}
}
