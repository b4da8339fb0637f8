package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/cpu"
)

func TestMain2(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "CLI Suite")
}

var _ = Describe("loadImage", func() {
	It("loads an ELF image into fresh guest memory, ready for cpu.New", func() {
		tempDir, err := os.MkdirTemp("", "rv32sim-cli-test")
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = os.RemoveAll(tempDir) }()

		path := filepath.Join(tempDir, "prog.elf")
		code := []byte{
			0x93, 0x08, 0x30, 0x00, // addi x17, x0, 3
			0x13, 0x05, 0x00, 0x00, // addi x10, x0, 0
			0x73, 0x00, 0x00, 0x00, // ecall
		}
		writeMinimalELF(path, 0x1000, 0x1000, code)

		prog, m, err := loadImage(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.EntryPoint).To(Equal(uint32(0x1000)))

		c := cpu.New(m)
		stats, runErr := c.Run(prog.EntryPoint)
		Expect(runErr).NotTo(HaveOccurred())
		Expect(stats.Insns).To(Equal(uint64(3)))
	})
})

func writeMinimalELF(path string, loadAddr, entry uint32, code []byte) {
	const (
		ehdrSize = 52
		phdrSize = 32
		emRISCV  = 243
	)

	ehdr := make([]byte, ehdrSize)
	copy(ehdr[0:4], []byte{0x7f, 'E', 'L', 'F'})
	ehdr[4] = 1
	ehdr[5] = 1
	ehdr[6] = 1
	binary.LittleEndian.PutUint16(ehdr[16:18], 2)
	binary.LittleEndian.PutUint16(ehdr[18:20], emRISCV)
	binary.LittleEndian.PutUint32(ehdr[20:24], 1)
	binary.LittleEndian.PutUint32(ehdr[24:28], entry)
	binary.LittleEndian.PutUint32(ehdr[28:32], ehdrSize)
	binary.LittleEndian.PutUint16(ehdr[40:42], ehdrSize)
	binary.LittleEndian.PutUint16(ehdr[42:44], phdrSize)
	binary.LittleEndian.PutUint16(ehdr[44:46], 1)

	phdr := make([]byte, phdrSize)
	binary.LittleEndian.PutUint32(phdr[0:4], 1)
	binary.LittleEndian.PutUint32(phdr[4:8], ehdrSize+phdrSize)
	binary.LittleEndian.PutUint32(phdr[8:12], loadAddr)
	binary.LittleEndian.PutUint32(phdr[12:16], loadAddr)
	binary.LittleEndian.PutUint32(phdr[16:20], uint32(len(code)))
	binary.LittleEndian.PutUint32(phdr[20:24], uint32(len(code)))
	binary.LittleEndian.PutUint32(phdr[24:28], 0x5)
	binary.LittleEndian.PutUint32(phdr[28:32], 0x1000)

	f, err := os.Create(path)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = f.Close() }()
	_, _ = f.Write(ehdr)
	_, _ = f.Write(phdr)
	_, _ = f.Write(code)
}
