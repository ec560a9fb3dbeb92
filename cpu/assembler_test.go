package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("256", asm.Equate["MEMORY_SIZE"])
	assert.Equal("0x0", asm.Equate["CODE_BASE"])
	assert.Equal("0x80", asm.Equate["DATA_BASE"])
	assert.Equal("0xf0", asm.Equate["OP_HLT"])
}

func opEqual(t *testing.T, expected, opcodes []Opcode) {
	assert := assert.New(t)

	assert.Equal(len(expected), len(opcodes))
	if len(expected) == len(opcodes) {
		for n := range len(expected) {
			assert.Equal(expected[n], opcodes[n])
		}
	}
}

func TestAssemblerLabels(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"start: lda $(DATA_BASE + 1) ; load",
		"       jmp start",
		"       jz end",
		"end:   hlt",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Opcode{
		{1, 0, []string{"lda", "0x81"}, []byte{0x20, 0x81}, ""},
		{2, 2, []string{"jmp", "start"}, []byte{0x80, 0x00}, "start"},
		{3, 4, []string{"jz", "end"}, []byte{0xa0, 0x06}, "end"},
		{4, 6, []string{"hlt"}, []byte{0xf0}, ""},
	}

	opEqual(t, expected, prog.Opcodes)
	assert.Equal(0, asm.Label["start"])
	assert.Equal(6, asm.Label["end"])
}

func TestAssemblerMultiplication(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"; R = X * Y",
		".equ X      0x80",
		".equ Y      0x81",
		".equ R      0x82",
		".equ CNT    0x83",
		".equ MINUS1 0x84",
		".equ ZERO   0x85",
		"",
		"        lda ZERO",
		"        sta R",
		"        lda Y",
		"        sta CNT",
		"loop:   jz done",
		"        add MINUS1",
		"        sta CNT",
		"        lda X",
		"        add R",
		"        sta R",
		"        lda CNT",
		"        jmp loop",
		"done:   hlt",
		"",
		"        .org DATA_BASE",
		"        .byte 5 11",
		"        .org MINUS1",
		"        .byte -1 0",
	}

	for _, arch := range []*Arch{NEANDER, AHMES} {
		asm := &Assembler{Arch: arch}
		prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
		assert.NoError(err, arch.Name)
		if err != nil {
			continue
		}

		assert.Equal(0x08, asm.Label["loop"], arch.Name)
		assert.Equal(0x18, asm.Label["done"], arch.Name)

		cpu := NewCpu(arch)
		prog.Load(cpu)
		assert.Equal(uint64(0), cpu.Accesses, arch.Name)

		cpu.Execute()
		assert.Equal(byte(55), cpu.Peek(0x82), arch.Name)
		assert.Equal(uint64(94), cpu.Cycles, arch.Name)
		assert.Equal(uint64(257), cpu.Accesses, arch.Name)
	}
}

func TestAssemblerRamses(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".equ PTR 0x80",
		".equ LEN 0x81",
		"        nop",
		"        ldr a #0",
		"        ldr x PTR",
		"loop:   ldr b 0,x",
		"        jz done",
		"        add x #1",
		"        add a #1",
		"        jmp loop",
		"done:   str a LEN",
		"        hlt",
		"        .org PTR",
		"        .byte $(0xa0)",
		"        .org 0xa0",
		"        .byte 'd' 'c' 'b' 'a' 0",
	}

	asm := &Assembler{Arch: RAMSES}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	dbg := prog.Debug(0x05)
	assert.NotNil(dbg.Opcode)
	assert.Equal([]byte{0x27, 0x00}, dbg.Bytes)

	cpu := NewCpu(RAMSES)
	prog.Load(cpu)
	cpu.Execute()
	assert.Equal(byte(4), cpu.Peek(0x81))
}

func TestAssemblerModes(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		arch  *Arch
		line  string
		bytes []byte
	}){
		{RAMSES, "ldr a #5", []byte{0x22, 0x05}},
		{RAMSES, "LDR B 0x10,I", []byte{0x25, 0x10}},
		{RAMSES, "add x 0x10,X", []byte{0x3b, 0x10}},
		{RAMSES, "str a, 0x90", []byte{0x10, 0x90}},
		{RAMSES, "jmp 0x10,i", []byte{0x81, 0x10}},
		{RAMSES, "jsr 0x40", []byte{0xc0, 0x40}},
		{RAMSES, "neg b", []byte{0xd4}},
		{RAMSES, "shr x", []byte{0xe8}},
		{RAMSES, "sub a #'0'", []byte{0x72, 0x30}},
		{AHMES, "shl", []byte{0xe1}},
		{AHMES, "jnc 0x10", []byte{0xb4, 0x10}},
		{AHMES, "sub ~0", []byte{0x70, 0xff}},
		{NEANDER, "not", []byte{0x60}},
		{NEANDER, "lda OP_HLT", []byte{0x20, 0xf0}},
	}

	for _, entry := range table {
		asm := &Assembler{Arch: entry.arch}
		prog, err := asm.Parse(strings.NewReader(entry.line))
		assert.NoError(err, entry.line)
		if err != nil {
			continue
		}
		assert.Equal(1, len(prog.Opcodes), entry.line)
		if len(prog.Opcodes) == 1 {
			assert.Equal(entry.bytes, prog.Opcodes[0].Bytes, entry.line)
		}
	}
}

func TestAssemblerMacro(t *testing.T) {
	asm := &Assembler{}

	program := []string{
		".macro move SRC DST",
		"        lda SRC",
		"        sta DST",
		".endm",
		"        move 0x80 0x81",
		"        hlt",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(t, err)
	if err != nil {
		return
	}

	expected := []Opcode{
		{2, 0, []string{"lda", "0x80"}, []byte{0x20, 0x80}, ""},
		{3, 2, []string{"sta", "0x81"}, []byte{0x10, 0x81}, ""},
		{6, 4, []string{"hlt"}, []byte{0xf0}, ""},
	}

	opEqual(t, expected, prog.Opcodes)
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("LIMIT", "10")
	asm.Predefine("LIMIT", "12")

	prog, err := asm.Parse(strings.NewReader("lda LIMIT\nadd $(LIMIT * 2)"))
	assert.NoError(err)
	if err != nil {
		return
	}

	assert.Equal([]byte{0x20, 12}, prog.Opcodes[0].Bytes)
	assert.Equal([]byte{0x30, 24}, prog.Opcodes[1].Bytes)
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		arch   *Arch
		source string
		err    error
		lineno int
	}){
		{NEANDER, "foo", ErrOpcodeInvalid, 1},
		{NEANDER, "nop\nlda", ErrOperandMissing, 2},
		{NEANDER, "lda 1 2", ErrOpcodeExtraArgs, 1},
		{NEANDER, "lda #1", ErrModeInvalid, 1},
		{NEANDER, "lda 300", ErrValueRange, 1},
		{NEANDER, ".equ A", ErrEquateSyntax, 1},
		{NEANDER, ".equ A 1\n.equ A 2", ErrEquateDuplicate, 2},
		{NEANDER, "l: nop\nl: nop", ErrLabelDuplicate, 2},
		{NEANDER, ".endm", ErrMacroLonelyEndm, 1},
		{NEANDER, ".macro m\nnop", ErrMacroLonely, 2},
		{NEANDER, ".macro m\n.macro n", ErrMacroNesting, 2},
		{NEANDER, ".org", ErrOrgSyntax, 1},
		{NEANDER, ".org 0xff\nlda 1", ErrProgramOverflow, 2},
		{NEANDER, "lda $(\"x\")", nil, 1},
		{RAMSES, "ldr q 1", ErrRegisterInvalid, 1},
		{RAMSES, "not", ErrRegisterInvalid, 1},
	}

	for _, entry := range table {
		asm := &Assembler{Arch: entry.arch}
		_, err := asm.Parse(strings.NewReader(entry.source))
		assert.Error(err, entry.source)
		if entry.err != nil {
			assert.ErrorIs(err, entry.err, entry.source)
		}

		var syntax_err *ErrSyntax
		if assert.True(errors.As(err, &syntax_err), entry.source) {
			assert.Equal(entry.lineno, syntax_err.LineNo, entry.source)
		}
	}
}

func TestAssemblerLabelMissing(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := asm.Parse(strings.NewReader("nop\njmp nowhere\nhlt"))

	var missing ErrLabelMissing
	assert.True(errors.As(err, &missing))
	assert.Equal(ErrLabelMissing("nowhere"), missing)

	var syntax_err *ErrSyntax
	assert.True(errors.As(err, &syntax_err))
	assert.Equal(2, syntax_err.LineNo)
}
