// Package disasm renders a decoded RV32I/M instruction as canonical
// assembly text, sharing its decode step with the cpu package so the two
// never disagree about what an encoding means (spec.md §9).
package disasm

import (
	"fmt"

	"github.com/sarchlab/rv32sim/insts"
)

// SymbolResolver looks up a human-readable name for an address. A resolver
// that never resolves (or a nil one) is legal; disassembly simply proceeds
// without a trailing annotation.
type SymbolResolver interface {
	Lookup(addr uint32) (string, bool)
}

// Disassemble returns the canonical textual form of the instruction encoded
// by word, as it appears at addr. The result is annotated with " ; <name>"
// when symbols is non-nil and resolves addr. Disassemble never fails: every
// 32-bit word produces a non-empty string, even when unrecognized.
func Disassemble(addr uint32, word uint32, symbols SymbolResolver) string {
	inst := insts.Decode(word)
	line := render(addr, inst)
	if symbols != nil {
		if name, ok := symbols.Lookup(addr); ok {
			line += " ; " + name
		}
	}
	return line
}

func render(addr uint32, inst insts.Instruction) string {
	switch inst.Format {
	case insts.FormatR:
		return renderR(inst)
	case insts.FormatI:
		if inst.Op == insts.OpJALR {
			return fmt.Sprintf("jalr x%d, %d(x%d)", inst.Rd, inst.Imm, inst.Rs1)
		}
		return renderIArith(inst)
	case insts.FormatIShift:
		return renderIShift(inst)
	case insts.FormatILoad:
		return renderLoad(inst)
	case insts.FormatS:
		return renderStore(inst)
	case insts.FormatB:
		return renderBranch(addr, inst)
	case insts.FormatU:
		return renderUpper(inst)
	case insts.FormatJ:
		return fmt.Sprintf("jal x%d, %08x", inst.Rd, addr+uint32(inst.Imm))
	case insts.FormatSystem:
		if inst.Op == insts.OpECALL {
			return "ecall"
		}
		return "unknown_Sys"
	default:
		return "unknown"
	}
}

var rMnemonics = map[insts.Op]string{
	insts.OpADD: "add", insts.OpSLL: "sll", insts.OpSLT: "slt", insts.OpSLTU: "sltu",
	insts.OpXOR: "xor", insts.OpSRL: "srl", insts.OpOR: "or", insts.OpAND: "and",
	insts.OpSUB: "sub", insts.OpSRA: "sra",
	insts.OpMUL: "mul", insts.OpMULH: "mulh", insts.OpMULHSU: "mulhsu", insts.OpMULHU: "mulhu",
	insts.OpDIV: "div", insts.OpDIVU: "divu", insts.OpREM: "rem", insts.OpREMU: "remu",
}

func renderR(inst insts.Instruction) string {
	name, ok := rMnemonics[inst.Op]
	if !ok {
		return "unknown_R"
	}
	return fmt.Sprintf("%s x%d, x%d, x%d", name, inst.Rd, inst.Rs1, inst.Rs2)
}

var iArithMnemonics = map[insts.Op]string{
	insts.OpADDI: "addi", insts.OpSLTI: "slti", insts.OpSLTIU: "sltiu",
	insts.OpXORI: "xori", insts.OpORI: "ori", insts.OpANDI: "andi",
}

func renderIArith(inst insts.Instruction) string {
	name, ok := iArithMnemonics[inst.Op]
	if !ok {
		return "unknown_I"
	}
	return fmt.Sprintf("%s x%d, x%d, %d", name, inst.Rd, inst.Rs1, inst.Imm)
}

func renderIShift(inst insts.Instruction) string {
	var name string
	switch inst.Op {
	case insts.OpSLLI:
		name = "slli"
	case insts.OpSRLI:
		name = "srli"
	case insts.OpSRAI:
		name = "srai"
	default:
		return "unknown_I"
	}
	return fmt.Sprintf("%s x%d, x%d, %d", name, inst.Rd, inst.Rs1, inst.Imm)
}

var loadMnemonics = map[insts.Op]string{
	insts.OpLB: "lb", insts.OpLH: "lh", insts.OpLW: "lw", insts.OpLBU: "lbu", insts.OpLHU: "lhu",
}

func renderLoad(inst insts.Instruction) string {
	name, ok := loadMnemonics[inst.Op]
	if !ok {
		return "unknown_L"
	}
	return fmt.Sprintf("%s x%d, %d(x%d)", name, inst.Rd, inst.Imm, inst.Rs1)
}

var storeMnemonics = map[insts.Op]string{insts.OpSB: "sb", insts.OpSH: "sh", insts.OpSW: "sw"}

func renderStore(inst insts.Instruction) string {
	name, ok := storeMnemonics[inst.Op]
	if !ok {
		return "unknown_S"
	}
	return fmt.Sprintf("%s x%d, %d(x%d)", name, inst.Rs2, inst.Imm, inst.Rs1)
}

var branchMnemonics = map[insts.Op]string{
	insts.OpBEQ: "beq", insts.OpBNE: "bne", insts.OpBLT: "blt",
	insts.OpBGE: "bge", insts.OpBLTU: "bltu", insts.OpBGEU: "bgeu",
}

func renderBranch(addr uint32, inst insts.Instruction) string {
	name, ok := branchMnemonics[inst.Op]
	if !ok {
		return "unknown_B"
	}
	target := addr + uint32(inst.Imm)
	return fmt.Sprintf("%s x%d, x%d, %08x", name, inst.Rs1, inst.Rs2, target)
}

func renderUpper(inst insts.Instruction) string {
	switch inst.Op {
	case insts.OpLUI:
		return fmt.Sprintf("lui x%d, 0x%x", inst.Rd, uint32(inst.Imm)>>12)
	case insts.OpAUIPC:
		return fmt.Sprintf("auipc x%d, 0x%x", inst.Rd, uint32(inst.Imm)>>12)
	default:
		return "unknown_U"
	}
}
