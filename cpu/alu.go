package cpu

import (
	"math"

	"github.com/sarchlab/rv32sim/insts"
)

// ALU executes the R-type and I-type-arithmetic instruction families
// against a register file. All arithmetic wraps modulo 2^32.
type ALU struct {
	regs *RegFile
}

// NewALU returns an ALU operating on regs.
func NewALU(regs *RegFile) *ALU {
	return &ALU{regs: regs}
}

// ExecR executes a decoded R-type instruction (base integer or M extension).
func (a *ALU) ExecR(inst insts.Instruction) {
	rs1 := a.regs.Read(inst.Rs1)
	rs2 := a.regs.Read(inst.Rs2)

	var result uint32
	switch inst.Op {
	case insts.OpADD:
		result = rs1 + rs2
	case insts.OpSUB:
		result = rs1 - rs2
	case insts.OpSLL:
		result = rs1 << (rs2 & 0x1f)
	case insts.OpSLT:
		result = boolToWord(int32(rs1) < int32(rs2))
	case insts.OpSLTU:
		result = boolToWord(rs1 < rs2)
	case insts.OpXOR:
		result = rs1 ^ rs2
	case insts.OpSRL:
		result = rs1 >> (rs2 & 0x1f)
	case insts.OpSRA:
		result = uint32(int32(rs1) >> (rs2 & 0x1f))
	case insts.OpOR:
		result = rs1 | rs2
	case insts.OpAND:
		result = rs1 & rs2
	case insts.OpMUL:
		result = uint32(int64(int32(rs1)) * int64(int32(rs2)))
	case insts.OpMULH:
		result = uint32((int64(int32(rs1)) * int64(int32(rs2))) >> 32)
	case insts.OpMULHSU:
		result = uint32((int64(int32(rs1)) * int64(rs2)) >> 32)
	case insts.OpMULHU:
		result = uint32((uint64(rs1) * uint64(rs2)) >> 32)
	case insts.OpDIV:
		result = divSigned(int32(rs1), int32(rs2))
	case insts.OpDIVU:
		result = divUnsigned(rs1, rs2)
	case insts.OpREM:
		result = remSigned(int32(rs1), int32(rs2))
	case insts.OpREMU:
		result = remUnsigned(rs1, rs2)
	}
	a.regs.Write(inst.Rd, result)
}

// ExecI executes a decoded I-type-arithmetic instruction, including the
// shift-immediate family (slli/srli/srai).
func (a *ALU) ExecI(inst insts.Instruction) {
	rs1 := a.regs.Read(inst.Rs1)
	imm := inst.Imm

	var result uint32
	switch inst.Op {
	case insts.OpADDI:
		result = rs1 + uint32(imm)
	case insts.OpSLTI:
		result = boolToWord(int32(rs1) < imm)
	case insts.OpSLTIU:
		result = boolToWord(rs1 < uint32(imm))
	case insts.OpXORI:
		result = rs1 ^ uint32(imm)
	case insts.OpORI:
		result = rs1 | uint32(imm)
	case insts.OpANDI:
		result = rs1 & uint32(imm)
	case insts.OpSLLI:
		result = rs1 << uint32(imm)
	case insts.OpSRLI:
		result = rs1 >> uint32(imm)
	case insts.OpSRAI:
		result = uint32(int32(rs1) >> uint32(imm))
	}
	a.regs.Write(inst.Rd, result)
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// divSigned implements RISC-V div semantics: all-ones on division by zero,
// INT_MIN on the INT_MIN/-1 overflow case.
func divSigned(a, b int32) uint32 {
	if b == 0 {
		return 0xFFFFFFFF
	}
	if a == math.MinInt32 && b == -1 {
		return uint32(a)
	}
	return uint32(a / b)
}

// remSigned implements RISC-V rem semantics: the dividend on division by
// zero, zero on the INT_MIN/-1 overflow case.
func remSigned(a, b int32) uint32 {
	if b == 0 {
		return uint32(a)
	}
	if a == math.MinInt32 && b == -1 {
		return 0
	}
	return uint32(a % b)
}

func divUnsigned(a, b uint32) uint32 {
	if b == 0 {
		return 0xFFFFFFFF
	}
	return a / b
}

func remUnsigned(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return a % b
}
