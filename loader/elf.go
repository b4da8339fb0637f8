// Package loader parses a 32-bit RISC-V ELF executable into the segments
// and entry point the interpreter needs to start a run.
package loader

import (
	"debug/elf"
	"fmt"
	"io"
)

// SegmentFlags mirrors the ELF program-header protection bits. The
// interpreter does not enforce them; they are carried through for callers
// that want to report or validate segment permissions.
type SegmentFlags uint32

const (
	SegmentFlagExecute SegmentFlags = 1 << iota
	SegmentFlagWrite
	SegmentFlagRead
)

// Segment is one PT_LOAD entry: its load address, file contents, and the
// in-memory size (which may exceed len(Data) for a BSS tail).
type Segment struct {
	VirtAddr uint32
	Data     []byte
	MemSize  uint32
	Flags    SegmentFlags
}

// Program is a loaded ELF image ready to be materialized into guest memory.
type Program struct {
	EntryPoint uint32
	Segments   []Segment
}

// Load parses a 32-bit RISC-V ELF executable at path.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("not a 32-bit ELF file")
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("not a RISC-V ELF file (machine type: %v)", f.Machine)
	}

	prog := &Program{EntryPoint: uint32(f.Entry)}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: uint32(phdr.Vaddr),
			Data:     data,
			MemSize:  uint32(phdr.Memsz),
			Flags:    flags,
		})
	}

	return prog, nil
}

// LoadInto materializes prog's segments into m.
func (p *Program) LoadInto(m memWriter) {
	for _, seg := range p.Segments {
		m.LoadSegment(seg.VirtAddr, seg.Data, seg.MemSize)
	}
}

// memWriter is the narrow slice of *mem.Memory's interface LoadInto needs,
// kept local so loader does not import mem just to name the parameter type.
type memWriter interface {
	LoadSegment(addr uint32, data []byte, memSize uint32)
}
