// Package disasm formats the memory, registers and statistics of a machine
// as text listings.
//
// Listings only peek at memory, so displaying a machine never changes its
// statistics.
package disasm

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ezrec/novir/cpu"
	"github.com/ezrec/novir/internal"
	"github.com/ezrec/novir/translate"
)

// Base is the numeric base of a listing.
type Base int

const (
	BASE_DEC = Base(10) // Decimal, three digits.
	BASE_HEX = Base(16) // Hexadecimal, two digits.
)

// BaseOf returns BASE_HEX if hex is set, BASE_DEC otherwise.
func BaseOf(hex bool) Base {
	if hex {
		return BASE_HEX
	}
	return BASE_DEC
}

// pair formats an address and value pair.
func (base Base) pair(addr byte, value byte) string {
	if base == BASE_HEX {
		return fmt.Sprintf("%02X = %02X", addr, value)
	}
	return fmt.Sprintf("%03d = %03d", addr, value)
}

func (base Base) named(name string, value byte) string {
	if base == BASE_HEX {
		return fmt.Sprintf("%-2s = %02X", name, value)
	}
	return fmt.Sprintf("%-2s = %03d", name, value)
}

// Data lists the memory cells from start to end inclusive.
func Data(w io.Writer, machine *cpu.Cpu, start, end byte, base Base) (err error) {
	for addr := range internal.Addresses(start, end) {
		_, err = fmt.Fprintln(w, base.pair(addr, machine.Peek(addr)))
		if err != nil {
			return
		}
	}

	return
}

// Code lists the memory cells from start to end inclusive, annotating each
// opcode with its mnemonic. A cell consumed as the operand of the previous
// instruction is not annotated.
func Code(w io.Writer, machine *cpu.Cpu, start, end byte, base Base) (err error) {
	needs_operand := false

	for addr := range internal.Addresses(start, end) {
		value := machine.Peek(addr)
		line := base.pair(addr, value)

		if needs_operand {
			needs_operand = false
		} else {
			inst, ok := machine.Arch.Table.Decode(value)
			if ok {
				needs_operand = inst.Operand
				line += "  " + inst.Mnemonic
			}
		}

		_, err = fmt.Fprintln(w, line)
		if err != nil {
			return
		}
	}

	return
}

// registerName returns the display name of a register.
func registerName(arch *cpu.Arch, reg cpu.Register) string {
	if len(arch.Registers) == 1 {
		return "ac"
	}
	return "r" + reg.String()
}

// Registers lists the registers, the program counter and the flags.
func Registers(w io.Writer, machine *cpu.Cpu, base Base) (err error) {
	arch := machine.Arch

	var lines []string
	for _, reg := range arch.Registers {
		lines = append(lines, base.named(registerName(arch, reg), machine.GetRegister(reg)))
	}
	lines = append(lines, base.named("pc", machine.Pc))
	for _, fl := range arch.Derived {
		lines = append(lines, base.named(fl.String(), flagByte(machine.Flag(fl))))
	}
	for _, fl := range arch.Flags {
		lines = append(lines, base.named(fl.String(), flagByte(machine.Flag(fl))))
	}

	for _, line := range lines {
		_, err = fmt.Fprintln(w, line)
		if err != nil {
			return
		}
	}

	return
}

func flagByte(value bool) byte {
	if value {
		return 1
	}
	return 0
}

// Stats lists the cycle and memory access counters. Counters are printed
// without digit grouping.
func Stats(w io.Writer, machine *cpu.Cpu) (err error) {
	_, err = translate.Fprintf(w, "cycles = %v\n", strconv.FormatUint(machine.Cycles, 10))
	if err != nil {
		return
	}

	_, err = translate.Fprintf(w, "accesses = %v\n", strconv.FormatUint(machine.Accesses, 10))
	return
}
