package cpu

import (
	"fmt"
	"log"
)

// CYCLES_PER_ROUND is the default quota of cycles of a bounded round.
const CYCLES_PER_ROUND = 100

// Cpu is the simulation context of one machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Arch *Arch // Architecture variant.

	Ir       byte    // Instruction register: last byte fetched.
	Pc       byte    // Program counter.
	Register [3]byte // Register bank (A, B, X).
	Flags    Flag    // Stored condition flags.
	Running  bool    // Cleared by HLT.

	Cycles   uint64 // Fetch-decode-execute cycles counter.
	Accesses uint64 // Accounted memory accesses counter.

	memory [MEMORY_SIZE]byte
}

// NewCpu creates a zeroed machine of an architecture.
func NewCpu(arch *Arch) (cpu *Cpu) {
	cpu = &Cpu{
		Arch: arch,
	}

	return
}

// Reset zeroes the memory, registers, flags and statistics.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.memory[:])
	clear(cpu.Register[:])
	cpu.Ir = 0
	cpu.Pc = 0
	cpu.Flags = 0
	cpu.Running = false
	cpu.Cycles = 0
	cpu.Accesses = 0
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %02X\n", "pc", cpu.Pc)
	text += fmt.Sprintf("% 5s: %02X\n", "ir", cpu.Ir)
	for _, reg := range cpu.Arch.Registers {
		text += fmt.Sprintf("% 5s: %02X\n", "r"+reg.String(), cpu.GetRegister(reg))
	}
	for _, fl := range cpu.Arch.Derived {
		text += fmt.Sprintf("% 5s: %v\n", fl.String(), cpu.Flag(fl))
	}
	for _, fl := range cpu.Arch.Flags {
		text += fmt.Sprintf("% 5s: %v\n", fl.String(), cpu.Flag(fl))
	}

	return
}

// Read reads a byte, counting one memory access.
func (cpu *Cpu) Read(addr byte) byte {
	cpu.Accesses++
	return cpu.memory[addr]
}

// Write writes a byte, counting one memory access.
func (cpu *Cpu) Write(addr byte, value byte) {
	cpu.Accesses++
	cpu.memory[addr] = value
}

// WriteRaw writes a byte without counting an access. Used to load and patch
// programs outside of execution.
func (cpu *Cpu) WriteRaw(addr byte, value byte) {
	cpu.memory[addr] = value
}

// Peek reads a byte without counting an access. Used for display.
func (cpu *Cpu) Peek(addr byte) byte {
	return cpu.memory[addr]
}

// Memory returns a copy of the whole memory.
func (cpu *Cpu) Memory() (mem [MEMORY_SIZE]byte) {
	return cpu.memory
}

// SetMemory replaces the whole memory without counting accesses.
func (cpu *Cpu) SetMemory(mem [MEMORY_SIZE]byte) {
	cpu.memory = mem
}

// SetPc starts a fresh run at addr: the statistics counters are zeroed.
func (cpu *Cpu) SetPc(addr byte) {
	cpu.Pc = addr
	cpu.Cycles = 0
	cpu.Accesses = 0
}

// GetRegister returns a register without side effects.
func (cpu *Cpu) GetRegister(reg Register) byte {
	if reg == REG_NONE {
		return 0
	}
	return cpu.Register[reg]
}

// Flag returns the state of a flag. Derived flags are computed from A.
func (cpu *Cpu) Flag(fl Flag) bool {
	if cpu.Arch.IsDerived(fl) {
		ac := cpu.Register[REG_A]
		switch fl {
		case FLAG_N:
			return ac&0x80 != 0
		case FLAG_Z:
			return ac == 0
		}
	}

	return cpu.Flags&fl != 0
}

// SetFlag updates a stored flag. Flags the architecture does not store are
// left alone.
func (cpu *Cpu) SetFlag(fl Flag, value bool) {
	fl &= cpu.Arch.Stored()
	if value {
		cpu.Flags |= fl
	} else {
		cpu.Flags &^= fl
	}
}

// Fetch reads the byte at the program counter into the instruction
// register, and advances the program counter.
func (cpu *Cpu) Fetch() byte {
	cpu.Ir = cpu.Read(cpu.Pc)
	cpu.Pc++
	return cpu.Ir
}

// Halt stops a continuous execution.
func (cpu *Cpu) Halt() {
	cpu.Running = false
}

// Cycle performs a whole fetch-decode-execute cycle. Opcodes missing from
// the instruction table execute as no-ops.
func (cpu *Cpu) Cycle() {
	cpu.Cycles++

	pc := cpu.Pc
	opcode := cpu.Fetch()

	inst, ok := cpu.Arch.Table.Decode(opcode)
	if cpu.Verbose {
		mnemonic := "???"
		if ok {
			mnemonic = inst.Mnemonic
		}
		log.Printf("cpu: %02x: %02x %v", pc, opcode, mnemonic)
	}
	if !ok {
		return
	}

	cpu.Arch.Executor.Execute(cpu, opcode, inst)
}

// Execute runs cycles until HLT. A program that never halts never returns.
func (cpu *Cpu) Execute() {
	cpu.Running = true
	for cpu.Running {
		cpu.Cycle()
	}
}

// ExecuteRound runs at most quota cycles, stopping early on HLT. It returns
// true if the machine halted.
func (cpu *Cpu) ExecuteRound(quota int) (halted bool) {
	cpu.Running = true
	for range quota {
		cpu.Cycle()
		if !cpu.Running {
			break
		}
	}

	halted = !cpu.Running
	return
}
