package cpu

import "github.com/sarchlab/rv32sim/insts"

// BranchUnit evaluates the condition of a decoded branch instruction.
type BranchUnit struct {
	regs *RegFile
}

// NewBranchUnit returns a BranchUnit operating on regs.
func NewBranchUnit(regs *RegFile) *BranchUnit {
	return &BranchUnit{regs: regs}
}

// Taken reports whether inst's branch condition holds.
func (b *BranchUnit) Taken(inst insts.Instruction) bool {
	rs1 := b.regs.Read(inst.Rs1)
	rs2 := b.regs.Read(inst.Rs2)

	switch inst.Op {
	case insts.OpBEQ:
		return rs1 == rs2
	case insts.OpBNE:
		return rs1 != rs2
	case insts.OpBLT:
		return int32(rs1) < int32(rs2)
	case insts.OpBGE:
		return int32(rs1) >= int32(rs2)
	case insts.OpBLTU:
		return rs1 < rs2
	case insts.OpBGEU:
		return rs1 >= rs2
	default:
		return false
	}
}
