// Command rv32sim loads and runs, or disassembles, a 32-bit RISC-V ELF
// executable against the functional interpreter in cpu.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/rv32sim/cpu"
	"github.com/sarchlab/rv32sim/disasm"
	"github.com/sarchlab/rv32sim/loader"
	"github.com/sarchlab/rv32sim/mem"
	"github.com/sarchlab/rv32sim/symtab"
)

func main() {
	root := &cobra.Command{
		Use:   "rv32sim",
		Short: "A functional simulator for 32-bit RISC-V (RV32I/M) executables",
	}

	root.AddCommand(newRunCmd(), newDisasmCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var (
		entry     uint32
		tracePath string
		maxInsns  uint64
		useEntry  bool
	)

	cmd := &cobra.Command{
		Use:   "run <image>",
		Short: "Load and execute a RISC-V ELF image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, m, err := loadImage(args[0])
			if err != nil {
				return err
			}

			entryPoint := prog.EntryPoint
			if useEntry {
				entryPoint = entry
			}

			opts := []cpu.Option{}
			if maxInsns > 0 {
				opts = append(opts, cpu.WithMaxInstructions(maxInsns))
			}
			if tracePath != "" {
				f, err := os.Create(tracePath)
				if err != nil {
					return fmt.Errorf("failed to create trace file: %w", err)
				}
				defer func() { _ = f.Close() }()
				opts = append(opts, cpu.WithTrace(f))
			}

			c := cpu.New(m, opts...)
			stats, runErr := c.Run(entryPoint)

			fmt.Printf("instructions: %d\n", stats.Insns)
			fmt.Printf("branches: %d (taken %d)\n", stats.Branches, stats.TakenBranches)

			if runErr != nil {
				fmt.Fprintf(os.Stderr, "rv32sim: %v\n", runErr)
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().Uint32Var(&entry, "entry", 0, "override the ELF entry point")
	cmd.Flags().StringVar(&tracePath, "trace", "", "write a per-instruction execution trace to this file")
	cmd.Flags().Uint64Var(&maxInsns, "max-insns", 0, "stop after this many instructions (0 = unlimited)")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		useEntry = cmd.Flags().Changed("entry")
	}

	return cmd
}

func newDisasmCmd() *cobra.Command {
	var (
		entry    uint32
		useEntry bool
	)

	cmd := &cobra.Command{
		Use:   "disasm <image>",
		Short: "Disassemble a RISC-V ELF image's text segment without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, m, err := loadImage(args[0])
			if err != nil {
				return err
			}

			symbols, err := symtab.Load(args[0])
			if err != nil {
				return fmt.Errorf("failed to read symbol table: %w", err)
			}

			for _, seg := range prog.Segments {
				if seg.Flags&loader.SegmentFlagExecute == 0 {
					continue
				}
				start := seg.VirtAddr
				if useEntry {
					if entry < seg.VirtAddr || entry >= seg.VirtAddr+seg.MemSize {
						continue
					}
					start = entry
				}
				for addr := start; addr+4 <= seg.VirtAddr+seg.MemSize; addr += 4 {
					word := m.Read32(addr)
					fmt.Printf("%08x: %08x  %s\n", addr, word, disasm.Disassemble(addr, word, symbols))
				}
			}

			return nil
		},
	}

	cmd.Flags().Uint32Var(&entry, "entry", 0, "start disassembly at this address, within the executable segment that contains it")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		useEntry = cmd.Flags().Changed("entry")
	}

	return cmd
}

func loadImage(path string) (*loader.Program, *mem.Memory, error) {
	prog, err := loader.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	m := mem.New()
	prog.LoadInto(m)

	return prog, m, nil
}
