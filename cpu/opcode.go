package cpu

import (
	"fmt"
)

// Op is an operation tag, shared by all the architecture variants.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_NOP = Op(0)  // nop
	OP_STA = Op(1)  // sta
	OP_LDA = Op(2)  // lda
	OP_ADD = Op(3)  // add
	OP_OR  = Op(4)  // or
	OP_AND = Op(5)  // and
	OP_NOT = Op(6)  // not
	OP_SUB = Op(7)  // sub
	OP_JMP = Op(8)  // jmp
	OP_JN  = Op(9)  // jn
	OP_JP  = Op(10) // jp
	OP_JV  = Op(11) // jv
	OP_JNV = Op(12) // jnv
	OP_JZ  = Op(13) // jz
	OP_JNZ = Op(14) // jnz
	OP_JC  = Op(15) // jc
	OP_JNC = Op(16) // jnc
	OP_JB  = Op(17) // jb
	OP_JNB = Op(18) // jnb
	OP_SHR = Op(19) // shr
	OP_SHL = Op(20) // shl
	OP_ROR = Op(21) // ror
	OP_ROL = Op(22) // rol
	OP_JSR = Op(23) // jsr
	OP_NEG = Op(24) // neg
	OP_HLT = Op(25) // hlt
)

// Register selects a general register. On register-file machines it is
// carried in bits 3..2 of the opcode.
type Register int

//go:generate go tool stringer -linecomment -type=Register
const (
	REG_A    = Register(0) // a
	REG_B    = Register(1) // b
	REG_X    = Register(2) // x
	REG_NONE = Register(3) // -
)

// RegisterOf extracts the register selector of an opcode.
func RegisterOf(opcode byte) Register {
	return Register((opcode >> 2) & 0x3)
}

// Mode is an addressing mode, carried in bits 1..0 of the opcode.
// All four encodings are defined.
type Mode byte

//go:generate go tool stringer -linecomment -type=Mode
const (
	MODE_DIRECT    = Mode(0) // direct
	MODE_INDIRECT  = Mode(1) // indirect
	MODE_IMMEDIATE = Mode(2) // immediate
	MODE_INDEXED   = Mode(3) // indexed
)

// ModeOf extracts the addressing mode of an opcode.
func ModeOf(opcode byte) Mode {
	return Mode(opcode & 0x3)
}

// Flag is a set of condition flags.
type Flag uint8

const (
	FLAG_N = Flag(1 << 0) // Negative
	FLAG_Z = Flag(1 << 1) // Zero
	FLAG_V = Flag(1 << 2) // Overflow
	FLAG_C = Flag(1 << 3) // Carry
	FLAG_B = Flag(1 << 4) // Borrow
)

var flagNames = map[Flag]string{
	FLAG_N: "n",
	FLAG_Z: "z",
	FLAG_V: "v",
	FLAG_C: "c",
	FLAG_B: "b",
}

// String returns the one-letter name of a single flag.
func (fl Flag) String() string {
	name, ok := flagNames[fl]
	if !ok {
		return fmt.Sprintf("Flag(%#02x)", uint8(fl))
	}
	return name
}

// Instruction describes the opcodes matching Match under Mask.
type Instruction struct {
	Mask     byte   // Bits of the opcode that select the instruction.
	Match    byte   // Value of the selected bits.
	Op       Op     // Operation performed.
	Mnemonic string // Assembly mnemonic.
	Operand  bool   // Followed by an operand byte.
	Register bool   // Register selector in bits 3..2.
	Mode     bool   // Addressing mode in bits 1..0.
}

// Matches returns true if the opcode decodes as this instruction.
func (inst *Instruction) Matches(opcode byte) bool {
	return opcode&inst.Mask == inst.Match
}

// Table is an ordered instruction table; the first matching entry wins.
type Table struct {
	Instructions []Instruction

	decode [256]*Instruction
}

// NewTable builds the decode lookup of an instruction list.
func NewTable(instructions ...Instruction) (table *Table) {
	table = &Table{Instructions: instructions}

	for opcode := range 256 {
		for n := range table.Instructions {
			inst := &table.Instructions[n]
			if inst.Matches(byte(opcode)) {
				table.decode[opcode] = inst
				break
			}
		}
	}

	return
}

// Decode finds the instruction of an opcode. Unknown opcodes are not found.
func (table *Table) Decode(opcode byte) (inst *Instruction, ok bool) {
	inst = table.decode[opcode]
	ok = inst != nil
	return
}

// Lookup finds an instruction by operation.
func (table *Table) Lookup(op Op) (inst *Instruction, ok bool) {
	for n := range table.Instructions {
		if table.Instructions[n].Op == op {
			return &table.Instructions[n], true
		}
	}
	return
}

// Mnemonic finds an instruction by its (upper case) mnemonic.
func (table *Table) Mnemonic(mnemonic string) (inst *Instruction, ok bool) {
	for n := range table.Instructions {
		if table.Instructions[n].Mnemonic == mnemonic {
			return &table.Instructions[n], true
		}
	}
	return
}

// Code composes an opcode byte. The register and mode are ignored by
// instructions that do not carry them.
func (inst *Instruction) Code(reg Register, mode Mode) (opcode byte) {
	opcode = inst.Match
	if inst.Register {
		opcode |= byte(reg&0x3) << 2
	}
	if inst.Mode {
		opcode |= byte(mode & 0x3)
	}
	return
}
