package insts_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/insts"
)

func TestInsts(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Insts Suite")
}

var _ = Describe("Decode", func() {
	Describe("R-type base integer", func() {
		It("decodes add x1, x2, x3", func() {
			inst := insts.Decode(0x003100B3)
			Expect(inst.Op).To(Equal(insts.OpADD))
			Expect(inst.Format).To(Equal(insts.FormatR))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rs1).To(Equal(uint8(2)))
			Expect(inst.Rs2).To(Equal(uint8(3)))
		})

		It("decodes sub via funct7=32", func() {
			// sub x1, x2, x3 -> funct7=0100000, rs2=3, rs1=2, funct3=0, rd=1, opcode=0110011
			word := uint32(32<<25 | 3<<20 | 2<<15 | 0<<12 | 1<<7 | 0b0110011)
			inst := insts.Decode(word)
			Expect(inst.Op).To(Equal(insts.OpSUB))
		})
	})

	Describe("RV32M extension", func() {
		It("decodes mul x5, x6, x7", func() {
			word := uint32(1<<25 | 7<<20 | 6<<15 | 0<<12 | 5<<7 | 0b0110011)
			inst := insts.Decode(word)
			Expect(inst.Op).To(Equal(insts.OpMUL))
		})

		It("decodes divu via funct3=5 under funct7=1", func() {
			word := uint32(1<<25 | 7<<20 | 6<<15 | 5<<12 | 5<<7 | 0b0110011)
			inst := insts.Decode(word)
			Expect(inst.Op).To(Equal(insts.OpDIVU))
		})
	})

	Describe("I-type arithmetic", func() {
		It("decodes addi x1, x0, 5", func() {
			inst := insts.Decode(0x00500093)
			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rs1).To(Equal(uint8(0)))
			Expect(inst.Imm).To(Equal(int32(5)))
		})

		It("decodes addi x2, x1, 3", func() {
			inst := insts.Decode(0x00308113)
			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Rd).To(Equal(uint8(2)))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Imm).To(Equal(int32(3)))
		})

		It("decodes addi x1, x0, -1 with a sign-extended immediate", func() {
			inst := insts.Decode(0xfff00093)
			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Imm).To(Equal(int32(-1)))
		})

		It("decodes slli using only the low 5 bits as an unsigned shift amount", func() {
			// slli x1, x1, 31 -> imm12 field is 0b0000000_11111, but only
			// the bottom 5 bits (shamt) matter for RV32.
			word := uint32(31<<20 | 1<<15 | 1<<12 | 1<<7 | 0b0010011)
			inst := insts.Decode(word)
			Expect(inst.Op).To(Equal(insts.OpSLLI))
			Expect(inst.Format).To(Equal(insts.FormatIShift))
			Expect(inst.Imm).To(Equal(int32(31)))
		})

		It("distinguishes srli from srai via bit 30", func() {
			srli := uint32(5<<20 | 1<<15 | 5<<12 | 1<<7 | 0b0010011)
			srai := srli | 1<<30
			Expect(insts.Decode(srli).Op).To(Equal(insts.OpSRLI))
			Expect(insts.Decode(srai).Op).To(Equal(insts.OpSRAI))
		})
	})

	Describe("loads and stores", func() {
		It("decodes lw x5, 4(x1)", func() {
			word := uint32(4<<20 | 1<<15 | 2<<12 | 5<<7 | 0b0000011)
			inst := insts.Decode(word)
			Expect(inst.Op).To(Equal(insts.OpLW))
			Expect(inst.Imm).To(Equal(int32(4)))
		})

		It("decodes sw x2, 8(x1)", func() {
			word := uint32(0<<25 | 2<<20 | 1<<15 | 2<<12 | 8<<7 | 0b0100011)
			inst := insts.Decode(word)
			Expect(inst.Op).To(Equal(insts.OpSW))
			Expect(inst.Imm).To(Equal(int32(8)))
		})
	})

	Describe("branches", func() {
		It("decodes blt x1, x2, +8 (0x0020c463)", func() {
			inst := insts.Decode(0x0020c463)
			Expect(inst.Op).To(Equal(insts.OpBLT))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Rs2).To(Equal(uint8(2)))
			Expect(inst.Imm).To(Equal(int32(8)))
		})

		It("decodes beq 0xFE420AE3 with the documented B-immediate", func() {
			inst := insts.Decode(0xFE420AE3)
			Expect(inst.Op).To(Equal(insts.OpBEQ))
			Expect(inst.Imm).To(Equal(int32(-12)))
		})
	})

	Describe("jumps and upper-immediate", func() {
		It("decodes jal", func() {
			word := uint32(1<<21 | 1<<7 | 0b1101111) // jal x1, +2
			inst := insts.Decode(word)
			Expect(inst.Op).To(Equal(insts.OpJAL))
			Expect(inst.Rd).To(Equal(uint8(1)))
		})

		It("decodes jalr", func() {
			word := uint32(3<<20 | 2<<15 | 1<<7 | 0b1100111) // jalr x1, 3(x2)
			inst := insts.Decode(word)
			Expect(inst.Op).To(Equal(insts.OpJALR))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rs1).To(Equal(uint8(2)))
			Expect(inst.Imm).To(Equal(int32(3)))
		})

		It("decodes lui without sign-extending the upper bits", func() {
			word := uint32(0xDEADB<<12 | 1<<7 | 0b0110111)
			inst := insts.Decode(word)
			Expect(inst.Op).To(Equal(insts.OpLUI))
			Expect(uint32(inst.Imm)).To(Equal(uint32(0xDEADB000)))
		})
	})

	Describe("system", func() {
		It("decodes ecall", func() {
			inst := insts.Decode(0x00000073)
			Expect(inst.Op).To(Equal(insts.OpECALL))
		})

		It("treats any funct3=0 system encoding as ecall", func() {
			word := uint32(1<<7 | 0b1110011) // nonzero rd, funct3=0
			inst := insts.Decode(word)
			Expect(inst.Op).To(Equal(insts.OpECALL))
		})

		It("tags an unrecognized system encoding as unknown_Sys", func() {
			word := uint32(1<<12 | 0b1110011) // funct3=1
			inst := insts.Decode(word)
			Expect(inst.Op).To(Equal(insts.OpUnknown))
			Expect(inst.Format).To(Equal(insts.FormatSystem))
		})
	})

	Describe("totality", func() {
		It("never panics and always returns a tagged instruction, even for garbage opcodes", func() {
			inst := insts.Decode(0xFFFFFFF1)
			Expect(inst.Op).To(Equal(insts.OpUnknown))
			Expect(inst.Format).To(Equal(insts.FormatUnknown))
		})
	})
})
