// Package insts provides the shared RV32I/M instruction decode: a pure
// function from a 32-bit instruction word to a tagged Instruction, consumed
// by both the interpreter (cpu) and the disassembler (disasm) so the two
// never drift apart on what a given encoding means.
package insts

import "github.com/sarchlab/rv32sim/bits"

// Op identifies the decoded operation.
type Op uint8

// Decoded operations. OpUnknown covers every encoding the decoder does not
// recognize; the Format field still records which family it fell out of.
const (
	OpUnknown Op = iota

	// R-type base integer
	OpADD
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpOR
	OpAND
	OpSUB
	OpSRA

	// R-type M extension
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU

	// I-type arithmetic
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI

	// Loads
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU

	// Stores
	OpSB
	OpSH
	OpSW

	// Branches
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU

	// Jumps and upper-immediate
	OpJAL
	OpJALR
	OpLUI
	OpAUIPC

	// System
	OpECALL
)

// Format identifies the instruction-word layout an Instruction was decoded
// from. It doubles as the family tag attached to unknown encodings so
// "unknown_R", "unknown_S", etc. can be reconstructed from Op==OpUnknown
// plus Format.
type Format uint8

// Instruction formats, per spec.md §3 and §4.3.
const (
	FormatUnknown Format = iota
	FormatR
	FormatI
	FormatIShift // slli/srli/srai: 5-bit shamt, bit 30 discriminates srai
	FormatILoad
	FormatS
	FormatB
	FormatU
	FormatJ
	FormatSystem
)

// Instruction is the decoded form of one 32-bit instruction word.
type Instruction struct {
	Op     Op
	Format Format

	Rd, Rs1, Rs2 uint8

	// Imm holds the format's reconstructed immediate, sign-extended unless
	// the format says otherwise (U is not sign-extended; IShift's Imm is an
	// unsigned shift amount in 0..31).
	Imm int32
}

// opcodes (instruction word bits [6:0]).
const (
	opcodeR      = 0b0110011
	opcodeIArith = 0b0010011
	opcodeLoad   = 0b0000011
	opcodeStore  = 0b0100011
	opcodeBranch = 0b1100011
	opcodeJAL    = 0b1101111
	opcodeJALR   = 0b1100111
	opcodeLUI    = 0b0110111
	opcodeAUIPC  = 0b0010111
	opcodeSystem = 0b1110011
)

func extract(word uint32, start, length uint) uint32 {
	return bits.Extract(word, start, length)
}

func signExtend(value uint32, n uint) int32 {
	return bits.SignExtend(value, n)
}

// Decode decodes a 32-bit RV32I/M instruction word. It never fails: an
// encoding this decoder does not recognize yields Op==OpUnknown, tagged
// with the Format family (or FormatUnknown if even the opcode is foreign).
func Decode(word uint32) Instruction {
	opcode := extract(word, 0, 7)

	switch opcode {
	case opcodeR:
		return decodeR(word)
	case opcodeIArith:
		return decodeIArith(word)
	case opcodeLoad:
		return decodeLoad(word)
	case opcodeStore:
		return decodeStore(word)
	case opcodeBranch:
		return decodeBranch(word)
	case opcodeJAL:
		return Instruction{Op: OpJAL, Format: FormatJ, Rd: rd(word), Imm: jImm(word)}
	case opcodeJALR:
		return Instruction{Op: OpJALR, Format: FormatI, Rd: rd(word), Rs1: rs1(word), Imm: iImm(word)}
	case opcodeLUI:
		return Instruction{Op: OpLUI, Format: FormatU, Rd: rd(word), Imm: uImm(word)}
	case opcodeAUIPC:
		return Instruction{Op: OpAUIPC, Format: FormatU, Rd: rd(word), Imm: uImm(word)}
	case opcodeSystem:
		return decodeSystem(word)
	default:
		return Instruction{Op: OpUnknown, Format: FormatUnknown}
	}
}

func rd(word uint32) uint8   { return uint8(extract(word, 7, 5)) }
func rs1(word uint32) uint8  { return uint8(extract(word, 15, 5)) }
func rs2(word uint32) uint8  { return uint8(extract(word, 20, 5)) }
func funct3(word uint32) uint32 { return extract(word, 12, 3) }
func funct7(word uint32) uint32 { return extract(word, 25, 7) }

func iImm(word uint32) int32 { return signExtend(extract(word, 20, 12), 12) }

func sImm(word uint32) int32 {
	v := extract(word, 7, 5) | extract(word, 25, 7)<<5
	return signExtend(v, 12)
}

func bImm(word uint32) int32 {
	v := extract(word, 8, 4)<<1 |
		extract(word, 25, 6)<<5 |
		extract(word, 7, 1)<<11 |
		extract(word, 31, 1)<<12
	return signExtend(v, 13)
}

func uImm(word uint32) int32 {
	return int32(extract(word, 12, 20) << 12)
}

func jImm(word uint32) int32 {
	v := extract(word, 21, 10)<<1 |
		extract(word, 20, 1)<<11 |
		extract(word, 12, 8)<<12 |
		extract(word, 31, 1)<<20
	return signExtend(v, 21)
}

func decodeR(word uint32) Instruction {
	inst := Instruction{Format: FormatR, Rd: rd(word), Rs1: rs1(word), Rs2: rs2(word)}

	switch funct7(word) {
	case 0:
		switch funct3(word) {
		case 0:
			inst.Op = OpADD
		case 1:
			inst.Op = OpSLL
		case 2:
			inst.Op = OpSLT
		case 3:
			inst.Op = OpSLTU
		case 4:
			inst.Op = OpXOR
		case 5:
			inst.Op = OpSRL
		case 6:
			inst.Op = OpOR
		case 7:
			inst.Op = OpAND
		default:
			inst.Op = OpUnknown
		}
	case 1: // RV32M
		switch funct3(word) {
		case 0:
			inst.Op = OpMUL
		case 1:
			inst.Op = OpMULH
		case 2:
			inst.Op = OpMULHSU
		case 3:
			inst.Op = OpMULHU
		case 4:
			inst.Op = OpDIV
		case 5:
			inst.Op = OpDIVU
		case 6:
			inst.Op = OpREM
		case 7:
			inst.Op = OpREMU
		default:
			inst.Op = OpUnknown
		}
	case 32:
		switch funct3(word) {
		case 0:
			inst.Op = OpSUB
		case 5:
			inst.Op = OpSRA
		default:
			inst.Op = OpUnknown
		}
	default:
		inst.Op = OpUnknown
	}
	return inst
}

func decodeIArith(word uint32) Instruction {
	inst := Instruction{Rd: rd(word), Rs1: rs1(word)}

	switch funct3(word) {
	case 0:
		inst.Format = FormatI
		inst.Op = OpADDI
		inst.Imm = iImm(word)
	case 1: // slli
		inst.Format = FormatIShift
		inst.Op = OpSLLI
		inst.Imm = int32(extract(word, 20, 5))
	case 2:
		inst.Format = FormatI
		inst.Op = OpSLTI
		inst.Imm = iImm(word)
	case 3:
		inst.Format = FormatI
		inst.Op = OpSLTIU
		inst.Imm = iImm(word)
	case 4:
		inst.Format = FormatI
		inst.Op = OpXORI
		inst.Imm = iImm(word)
	case 5: // srli/srai, discriminated by bit 30
		inst.Format = FormatIShift
		inst.Imm = int32(extract(word, 20, 5))
		if extract(word, 30, 1) != 0 {
			inst.Op = OpSRAI
		} else {
			inst.Op = OpSRLI
		}
	case 6:
		inst.Format = FormatI
		inst.Op = OpORI
		inst.Imm = iImm(word)
	case 7:
		inst.Format = FormatI
		inst.Op = OpANDI
		inst.Imm = iImm(word)
	}
	return inst
}

func decodeLoad(word uint32) Instruction {
	inst := Instruction{Format: FormatILoad, Rd: rd(word), Rs1: rs1(word), Imm: iImm(word)}

	switch funct3(word) {
	case 0:
		inst.Op = OpLB
	case 1:
		inst.Op = OpLH
	case 2:
		inst.Op = OpLW
	case 4:
		inst.Op = OpLBU
	case 5:
		inst.Op = OpLHU
	default:
		inst.Op = OpUnknown
	}
	return inst
}

func decodeStore(word uint32) Instruction {
	inst := Instruction{Format: FormatS, Rs1: rs1(word), Rs2: rs2(word), Imm: sImm(word)}

	switch funct3(word) {
	case 0:
		inst.Op = OpSB
	case 1:
		inst.Op = OpSH
	case 2:
		inst.Op = OpSW
	default:
		inst.Op = OpUnknown
	}
	return inst
}

func decodeBranch(word uint32) Instruction {
	inst := Instruction{Format: FormatB, Rs1: rs1(word), Rs2: rs2(word), Imm: bImm(word)}

	switch funct3(word) {
	case 0:
		inst.Op = OpBEQ
	case 1:
		inst.Op = OpBNE
	case 4:
		inst.Op = OpBLT
	case 5:
		inst.Op = OpBGE
	case 6:
		inst.Op = OpBLTU
	case 7:
		inst.Op = OpBGEU
	default:
		inst.Op = OpUnknown
	}
	return inst
}

func decodeSystem(word uint32) Instruction {
	// ecall: any encoding with funct3==0 is treated as ecall, whatever its
	// rd/rs1/imm fields hold (§4.4/§9 — not only the literal 0x00000073).
	if funct3(word) == 0 {
		return Instruction{Op: OpECALL, Format: FormatSystem}
	}
	return Instruction{Op: OpUnknown, Format: FormatSystem}
}
