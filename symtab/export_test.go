package symtab

import "debug/elf"

// FromSymbolsForTest exposes the private symbol-filtering path to the
// external test package, without hand-building ELF files just to exercise
// the Lookup semantics.
func FromSymbolsForTest(syms []elf.Symbol) (*Table, error) {
	return fromSymbols(syms)
}
