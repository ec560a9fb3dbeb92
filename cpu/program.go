package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and
// generated bytes.
type Opcode struct {
	LineNo    int
	Addr      byte
	Words     []string
	Bytes     []byte
	LinkLabel string // Label linked into the last byte.
}

type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the source line that generated the byte at addr.
func (prog *Program) Debug(addr byte) (dbg Debug) {
	for n, op := range prog.Opcodes {
		start := int(op.Addr)
		if int(addr) >= start && int(addr) < start+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - start,
			}
			break
		}
	}

	return
}

// Binary iterates over the (address, byte) pairs of the program.
func (prog *Program) Binary() iter.Seq2[byte, byte] {
	return func(yield func(addr byte, value byte) bool) {
		for _, op := range prog.Opcodes {
			for n, value := range op.Bytes {
				if !yield(op.Addr+byte(n), value) {
					return
				}
			}
		}
	}
}

// Load pokes the program into memory, without counting accesses.
func (prog *Program) Load(cpu *Cpu) {
	for addr, value := range prog.Binary() {
		cpu.WriteRaw(addr, value)
	}
}
