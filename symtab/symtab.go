// Package symtab resolves addresses to symbol names from an ELF's symbol
// table, implementing disasm.SymbolResolver for the disassembly output of
// cmd/rv32sim.
package symtab

import (
	"debug/elf"
	"fmt"
	"sort"
)

// entry is one resolvable symbol: a name covering [addr, addr+size).
type entry struct {
	addr uint32
	size uint32
	name string
}

// Table resolves a guest address to the name of the function symbol that
// contains it. It is read-only once built.
type Table struct {
	entries []entry
}

// Load reads the STT_FUNC symbols from path's .symtab (falling back to
// .dynsym when .symtab is stripped) and returns a Table for them.
func Load(path string) (*Table, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return FromFile(f)
}

// FromFile builds a Table from an already-open ELF file. If neither symbol
// table can be read, it returns an empty Table.
func FromFile(f *elf.File) (*Table, error) {
	syms, err := f.Symbols()
	if err != nil {
		syms, err = f.DynamicSymbols()
		if err != nil {
			return &Table{}, nil
		}
	}

	return fromSymbols(syms)
}

func fromSymbols(syms []elf.Symbol) (*Table, error) {
	t := &Table{}
	for _, s := range syms {
		if elf.ST_TYPE(s.Info) != elf.STT_FUNC || s.Name == "" {
			continue
		}
		t.entries = append(t.entries, entry{
			addr: uint32(s.Value),
			size: uint32(s.Size),
			name: s.Name,
		})
	}
	sort.Slice(t.entries, func(i, j int) bool { return t.entries[i].addr < t.entries[j].addr })

	return t, nil
}

// Lookup returns the name of the function symbol containing addr, and
// whether one was found. A zero-size symbol matches only its exact address.
func (t *Table) Lookup(addr uint32) (string, bool) {
	if t == nil || len(t.entries) == 0 {
		return "", false
	}

	i := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].addr > addr }) - 1
	if i < 0 {
		return "", false
	}

	e := t.entries[i]
	if e.size == 0 {
		if e.addr == addr {
			return e.name, true
		}
		return "", false
	}
	if addr >= e.addr && addr < e.addr+e.size {
		return e.name, true
	}
	return "", false
}
