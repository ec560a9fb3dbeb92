package cpu

import (
	"fmt"
	"iter"
	"maps"
	"strings"
)

// Executor is the execute strategy of an architecture. It is called once
// the opcode has been fetched and decoded, and fetches its own operand.
type Executor interface {
	Execute(cpu *Cpu, opcode byte, inst *Instruction)
}

// Arch describes one machine variant.
type Arch struct {
	Name      string     // Lower case architecture name.
	Tag       [3]byte    // File format tag.
	Registers []Register // Registers, in display and snapshot order.
	Flags     []Flag     // Stored flags, in display and snapshot order.
	Derived   []Flag     // Flags computed from the A register.
	Table     *Table     // Instruction table.
	Executor  Executor   // Execute strategy.
}

// Stored returns the set of flags the architecture keeps in the flag register.
func (arch *Arch) Stored() (stored Flag) {
	for _, fl := range arch.Flags {
		stored |= fl
	}
	return
}

// IsDerived returns true if the flag is computed from the A register.
func (arch *Arch) IsDerived(fl Flag) bool {
	for _, derived := range arch.Derived {
		if derived == fl {
			return true
		}
	}
	return false
}

// Code returns the opcode byte of an operation. It panics if the
// architecture does not implement the operation.
func (arch *Arch) Code(op Op, reg Register, mode Mode) byte {
	inst, ok := arch.Table.Lookup(op)
	if !ok {
		panic(fmt.Sprintf("%v: no %v instruction", arch.Name, op))
	}
	return inst.Code(reg, mode)
}

// Opcode returns the opcode byte of an operation using register A and
// direct addressing.
func (arch *Arch) Opcode(op Op) byte {
	return arch.Code(op, REG_A, MODE_DIRECT)
}

// Defines returns the assembler predefines of the architecture.
func (arch *Arch) Defines() iter.Seq2[string, string] {
	defines := map[string]string{
		"MEMORY_SIZE": fmt.Sprintf("%v", MEMORY_SIZE),
		"CODE_BASE":   fmt.Sprintf("%#x", ARENA_CODE),
		"DATA_BASE":   fmt.Sprintf("%#x", ARENA_DATA),
	}

	for _, inst := range arch.Table.Instructions {
		defines["OP_"+inst.Mnemonic] = fmt.Sprintf("%#x", inst.Match)
	}

	return maps.All(defines)
}

var NEANDER = &Arch{
	Name:      "neander",
	Tag:       [3]byte{'N', 'D', 'R'},
	Registers: []Register{REG_A},
	Derived:   []Flag{FLAG_N, FLAG_Z},
	Table: NewTable(
		Instruction{Mask: 0xf0, Match: 0x00, Op: OP_NOP, Mnemonic: "NOP"},
		Instruction{Mask: 0xf0, Match: 0x10, Op: OP_STA, Mnemonic: "STA", Operand: true},
		Instruction{Mask: 0xf0, Match: 0x20, Op: OP_LDA, Mnemonic: "LDA", Operand: true},
		Instruction{Mask: 0xf0, Match: 0x30, Op: OP_ADD, Mnemonic: "ADD", Operand: true},
		Instruction{Mask: 0xf0, Match: 0x40, Op: OP_OR, Mnemonic: "OR", Operand: true},
		Instruction{Mask: 0xf0, Match: 0x50, Op: OP_AND, Mnemonic: "AND", Operand: true},
		Instruction{Mask: 0xf0, Match: 0x60, Op: OP_NOT, Mnemonic: "NOT"},
		Instruction{Mask: 0xf0, Match: 0x80, Op: OP_JMP, Mnemonic: "JMP", Operand: true},
		Instruction{Mask: 0xf0, Match: 0x90, Op: OP_JN, Mnemonic: "JN", Operand: true},
		Instruction{Mask: 0xf0, Match: 0xa0, Op: OP_JZ, Mnemonic: "JZ", Operand: true},
		Instruction{Mask: 0xf0, Match: 0xf0, Op: OP_HLT, Mnemonic: "HLT"},
	),
	Executor: accumulator{},
}

// AHMES extends NEANDER with subtraction, more conditional jumps, shifts and
// rotates. Jumps decode on the upper six bits, shifts on the whole byte.
var AHMES = &Arch{
	Name:      "ahmes",
	Tag:       [3]byte{'A', 'H', 'M'},
	Registers: []Register{REG_A},
	Flags:     []Flag{FLAG_V, FLAG_C, FLAG_B},
	Derived:   []Flag{FLAG_N, FLAG_Z},
	Table: NewTable(
		Instruction{Mask: 0xf0, Match: 0x00, Op: OP_NOP, Mnemonic: "NOP"},
		Instruction{Mask: 0xf0, Match: 0x10, Op: OP_STA, Mnemonic: "STA", Operand: true},
		Instruction{Mask: 0xf0, Match: 0x20, Op: OP_LDA, Mnemonic: "LDA", Operand: true},
		Instruction{Mask: 0xf0, Match: 0x30, Op: OP_ADD, Mnemonic: "ADD", Operand: true},
		Instruction{Mask: 0xf0, Match: 0x40, Op: OP_OR, Mnemonic: "OR", Operand: true},
		Instruction{Mask: 0xf0, Match: 0x50, Op: OP_AND, Mnemonic: "AND", Operand: true},
		Instruction{Mask: 0xf0, Match: 0x60, Op: OP_NOT, Mnemonic: "NOT"},
		Instruction{Mask: 0xf0, Match: 0x70, Op: OP_SUB, Mnemonic: "SUB", Operand: true},
		Instruction{Mask: 0xfc, Match: 0x80, Op: OP_JMP, Mnemonic: "JMP", Operand: true},
		Instruction{Mask: 0xfc, Match: 0x90, Op: OP_JN, Mnemonic: "JN", Operand: true},
		Instruction{Mask: 0xfc, Match: 0x94, Op: OP_JP, Mnemonic: "JP", Operand: true},
		Instruction{Mask: 0xfc, Match: 0x98, Op: OP_JV, Mnemonic: "JV", Operand: true},
		Instruction{Mask: 0xfc, Match: 0x9c, Op: OP_JNV, Mnemonic: "JNV", Operand: true},
		Instruction{Mask: 0xfc, Match: 0xa0, Op: OP_JZ, Mnemonic: "JZ", Operand: true},
		Instruction{Mask: 0xfc, Match: 0xa4, Op: OP_JNZ, Mnemonic: "JNZ", Operand: true},
		Instruction{Mask: 0xfc, Match: 0xb0, Op: OP_JC, Mnemonic: "JC", Operand: true},
		Instruction{Mask: 0xfc, Match: 0xb4, Op: OP_JNC, Mnemonic: "JNC", Operand: true},
		Instruction{Mask: 0xfc, Match: 0xb8, Op: OP_JB, Mnemonic: "JB", Operand: true},
		Instruction{Mask: 0xfc, Match: 0xbc, Op: OP_JNB, Mnemonic: "JNB", Operand: true},
		Instruction{Mask: 0xff, Match: 0xe0, Op: OP_SHR, Mnemonic: "SHR"},
		Instruction{Mask: 0xff, Match: 0xe1, Op: OP_SHL, Mnemonic: "SHL"},
		Instruction{Mask: 0xff, Match: 0xe2, Op: OP_ROR, Mnemonic: "ROR"},
		Instruction{Mask: 0xff, Match: 0xe3, Op: OP_ROL, Mnemonic: "ROL"},
		Instruction{Mask: 0xf0, Match: 0xf0, Op: OP_HLT, Mnemonic: "HLT"},
	),
	Executor: accumulator{},
}

// RAMSES has three registers and four addressing modes. The register
// selector sits in bits 3..2 and the addressing mode in bits 1..0.
var RAMSES = &Arch{
	Name:      "ramses",
	Tag:       [3]byte{'R', 'M', 'S'},
	Registers: []Register{REG_A, REG_B, REG_X},
	Flags:     []Flag{FLAG_N, FLAG_Z, FLAG_C},
	Table: NewTable(
		Instruction{Mask: 0xf0, Match: 0x00, Op: OP_NOP, Mnemonic: "NOP"},
		Instruction{Mask: 0xf0, Match: 0x10, Op: OP_STA, Mnemonic: "STR", Operand: true, Register: true, Mode: true},
		Instruction{Mask: 0xf0, Match: 0x20, Op: OP_LDA, Mnemonic: "LDR", Operand: true, Register: true, Mode: true},
		Instruction{Mask: 0xf0, Match: 0x30, Op: OP_ADD, Mnemonic: "ADD", Operand: true, Register: true, Mode: true},
		Instruction{Mask: 0xf0, Match: 0x40, Op: OP_OR, Mnemonic: "OR", Operand: true, Register: true, Mode: true},
		Instruction{Mask: 0xf0, Match: 0x50, Op: OP_AND, Mnemonic: "AND", Operand: true, Register: true, Mode: true},
		Instruction{Mask: 0xf0, Match: 0x60, Op: OP_NOT, Mnemonic: "NOT", Register: true},
		Instruction{Mask: 0xf0, Match: 0x70, Op: OP_SUB, Mnemonic: "SUB", Operand: true, Register: true, Mode: true},
		Instruction{Mask: 0xf0, Match: 0x80, Op: OP_JMP, Mnemonic: "JMP", Operand: true, Mode: true},
		Instruction{Mask: 0xf0, Match: 0x90, Op: OP_JN, Mnemonic: "JN", Operand: true, Mode: true},
		Instruction{Mask: 0xf0, Match: 0xa0, Op: OP_JZ, Mnemonic: "JZ", Operand: true, Mode: true},
		Instruction{Mask: 0xf0, Match: 0xb0, Op: OP_JC, Mnemonic: "JC", Operand: true, Mode: true},
		Instruction{Mask: 0xf0, Match: 0xc0, Op: OP_JSR, Mnemonic: "JSR", Operand: true, Mode: true},
		Instruction{Mask: 0xf0, Match: 0xd0, Op: OP_NEG, Mnemonic: "NEG", Register: true},
		Instruction{Mask: 0xf0, Match: 0xe0, Op: OP_SHR, Mnemonic: "SHR", Register: true},
		Instruction{Mask: 0xf0, Match: 0xf0, Op: OP_HLT, Mnemonic: "HLT"},
	),
	Executor: registerFile{},
}

// Arches lists the supported architectures.
var Arches = []*Arch{NEANDER, AHMES, RAMSES}

// ArchByName finds an architecture by (case insensitive) name.
func ArchByName(name string) (arch *Arch, err error) {
	for _, arch = range Arches {
		if strings.EqualFold(arch.Name, name) {
			return
		}
	}

	arch = nil
	err = fmt.Errorf("%w: %v", ErrArchUnknown, name)
	return
}
