// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator drives a machine from the host side: it assembles and
// loads programs, loads and saves machine files, and runs the machine in
// bounded rounds so a host can cancel a program that never halts.
package emulator

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/novir/codec"
	"github.com/ezrec/novir/cpu"
	"github.com/ezrec/novir/internal"
)

var _emulator_defines = map[string]string{
	"CYCLES_PER_ROUND": fmt.Sprintf("%v", cpu.CYCLES_PER_ROUND),
}

// Emulator state. CPU + assembled program listing.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently loaded program listing.
}

// NewEmulator creates a new emulator of an architecture.
func NewEmulator(arch *cpu.Arch) (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(arch),
		Program: &cpu.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Arch.Defines(),
	)
}

// Assemble parses a program for the emulator's architecture, and loads it
// into a reset machine.
func (emu *Emulator) Assemble(input io.Reader) (err error) {
	asm := &cpu.Assembler{
		Verbose: emu.Verbose,
		Arch:    emu.Cpu.Arch,
	}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	emu.Program = prog
	emu.Reset()

	return
}

// Reset zeroes the machine, and reloads the program.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.Program.Load(emu.Cpu)
}

// Load replaces the machine from a .mem or .state file. The program
// listing no longer describes the memory, and is dropped.
func (emu *Emulator) Load(path string) (err error) {
	if emu.Verbose {
		log.Printf("emulator: load %v", path)
	}

	err = codec.Load(path, emu.Cpu)
	if err != nil {
		return
	}

	emu.Program = &cpu.Program{}
	return
}

// Save writes the machine to a .mem or .state file.
func (emu *Emulator) Save(path string) (err error) {
	if emu.Verbose {
		log.Printf("emulator: save %v", path)
	}

	err = codec.Save(path, emu.Cpu)
	return
}

// LineNo returns the source line number of the opcode at the program
// counter, or 0 if unknown.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Step performs exactly count cycles, even past a HLT. The running state
// is left as the program set it. It returns true if the machine is halted.
func (emu *Emulator) Step(count int) (done bool) {
	emu.Cpu.Verbose = emu.Verbose

	for range count {
		emu.Cpu.Cycle()
	}

	done = !emu.Cpu.Running
	return
}

// Tick performs a single bounded round of the emulator.
func (emu *Emulator) Tick() (done bool) {
	emu.Cpu.Verbose = emu.Verbose

	done = emu.Cpu.ExecuteRound(cpu.CYCLES_PER_ROUND)
	if emu.Verbose {
		log.Printf("emulator: round pc=%02x cycles=%v done=%v", emu.Cpu.Pc, emu.Cpu.Cycles, done)
	}

	return
}

// Run ticks until the machine halts, or the context is done.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	for {
		select {
		case <-ctx.Done():
			err = &ErrRuntime{LineNo: emu.LineNo(), Err: ctx.Err()}
			return
		default:
		}

		if emu.Tick() {
			return
		}
	}
}
