package emulator

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/novir/codec"
	"github.com/ezrec/novir/cpu"
)

var multiply = []string{
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
	"X:      .byte 5",
	"Y:      .byte 11",
	"R:      .byte 0",
	"CNT:    .byte 0",
	"MINUS1: .byte -1",
	"ZERO:   .byte 0",
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(cpu.RAMSES)

	assert.False(emu.Verbose)
	assert.Equal(cpu.RAMSES, emu.Cpu.Arch)
	assert.NotNil(emu.Program)

	defines := map[string]string{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}
	assert.Equal("100", defines["CYCLES_PER_ROUND"])
	assert.Equal("0xc0", defines["OP_JSR"])
}

func TestEmulatorRun(t *testing.T) {
	assert := assert.New(t)

	for _, arch := range []*cpu.Arch{cpu.NEANDER, cpu.AHMES} {
		emu := NewEmulator(arch)
		err := emu.Assemble(strings.NewReader(strings.Join(multiply, "\n")))
		assert.NoError(err, arch.Name)
		if err != nil {
			continue
		}

		assert.Equal(1, emu.LineNo(), arch.Name)

		err = emu.Run(context.Background())
		assert.NoError(err, arch.Name)
		assert.False(emu.Cpu.Running, arch.Name)
		assert.Equal(byte(55), emu.Cpu.Peek(0x82), arch.Name)
		assert.Equal(uint64(94), emu.Cpu.Cycles, arch.Name)
		assert.Equal(uint64(257), emu.Cpu.Accesses, arch.Name)

		// Reset reloads the program.
		emu.Reset()
		assert.Equal(byte(0), emu.Cpu.Peek(0x82), arch.Name)
		assert.Equal(byte(11), emu.Cpu.Peek(0x81), arch.Name)
		assert.Equal(uint64(0), emu.Cpu.Cycles, arch.Name)
	}
}

func TestEmulatorStep(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(cpu.NEANDER)
	err := emu.Assemble(strings.NewReader(strings.Join(multiply, "\n")))
	assert.NoError(err)
	emu.Cpu.Running = true

	done := emu.Step(4)
	assert.False(done)
	assert.Equal(uint64(4), emu.Cpu.Cycles)
	assert.Equal(5, emu.LineNo())

	done = emu.Step(90)
	assert.True(done)
	assert.Equal(uint64(94), emu.Cpu.Cycles)
	assert.Equal(0, emu.LineNo())
}

func TestEmulatorStepHalted(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		running bool
		count   int
		cycles  uint64
		pc      byte
	}){
		{false, 3, 3, 3},
		{true, 3, 3, 3},
		{true, 1, 1, 1},
		{false, 0, 0, 0},
	}

	for _, entry := range table {
		emu := NewEmulator(cpu.NEANDER)
		err := emu.Assemble(strings.NewReader("hlt"))
		assert.NoError(err)
		emu.Cpu.Running = entry.running

		done := emu.Step(entry.count)
		assert.Equal(entry.cycles, emu.Cpu.Cycles, entry)
		assert.Equal(entry.pc, emu.Cpu.Pc, entry)
		if entry.count > 0 {
			assert.True(done, entry)
			assert.False(emu.Cpu.Running, entry)
		} else {
			assert.Equal(!entry.running, done, entry)
		}
	}

	emu := NewEmulator(cpu.NEANDER)
	err := emu.Assemble(strings.NewReader("nop\nnop"))
	assert.NoError(err)

	done := emu.Step(2)
	assert.True(done)
	assert.False(emu.Cpu.Running)
	assert.Equal(uint64(2), emu.Cpu.Cycles)
}

func TestEmulatorCancel(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(cpu.AHMES)
	err := emu.Assemble(strings.NewReader("nop\nloop: jmp loop"))
	assert.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = emu.Run(ctx)
	assert.ErrorIs(err, context.Canceled)
	var runtime_err *ErrRuntime
	if assert.True(errors.As(err, &runtime_err)) {
		assert.Equal(1, runtime_err.LineNo)
	}
	assert.Equal(uint64(0), emu.Cpu.Cycles)

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err = emu.Run(ctx)
	assert.ErrorIs(err, context.DeadlineExceeded)
	assert.True(errors.As(err, &runtime_err))
	assert.Equal(2, runtime_err.LineNo)
	assert.Equal(uint64(0), emu.Cpu.Cycles%cpu.CYCLES_PER_ROUND)
	assert.True(emu.Cpu.Running)
}

func TestEmulatorLoadSave(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "mul.state")

	emu := NewEmulator(cpu.NEANDER)
	err := emu.Assemble(strings.NewReader(strings.Join(multiply, "\n")))
	assert.NoError(err)
	emu.Step(10)

	err = emu.Save(path)
	assert.NoError(err)

	other := NewEmulator(cpu.NEANDER)
	err = other.Load(path)
	assert.NoError(err)
	assert.Equal(emu.Cpu.Memory(), other.Cpu.Memory())
	assert.Equal(emu.Cpu.Pc, other.Cpu.Pc)
	assert.Equal(emu.Cpu.Cycles, other.Cpu.Cycles)

	err = other.Run(context.Background())
	assert.NoError(err)
	assert.Equal(byte(55), other.Cpu.Peek(0x82))
	assert.Equal(uint64(94), other.Cpu.Cycles)

	// Wrong architecture
	err = NewEmulator(cpu.RAMSES).Load(path)
	assert.ErrorIs(err, codec.ErrInvalidFile)
}

func TestEmulatorAssembleError(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(cpu.NEANDER)
	err := emu.Assemble(strings.NewReader("lda\n"))
	var syntax_err *cpu.ErrSyntax
	assert.True(errors.As(err, &syntax_err))
	assert.ErrorIs(err, cpu.ErrOperandMissing)
}
