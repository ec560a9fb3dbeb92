// Package codec reads and writes memory images (.mem) and whole machine
// snapshots (.state).
//
// Both formats start with a four byte magic: a format byte (MAGIC_MEM or
// MAGIC_STATE) followed by the three byte architecture tag. Every memory
// cell is stored as the value followed by a zero byte.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ezrec/novir/cpu"
)

const (
	MAGIC_MEM   = 0x03 // Memory image format byte.
	MAGIC_STATE = 0x04 // Machine snapshot format byte.
)

// Format is a file format.
type Format int

//go:generate go tool stringer -linecomment -type=Format
const (
	FORMAT_MEM   = Format(0) // mem
	FORMAT_STATE = Format(1) // state
)

// FormatOf returns the file format selected by the extension of path.
func FormatOf(path string) (format Format, err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mem":
		format = FORMAT_MEM
	case ".state":
		format = FORMAT_STATE
	default:
		err = fmt.Errorf("%w: %v", ErrInvalidFile, filepath.Ext(path))
	}

	return
}

func magic(kind byte, arch *cpu.Arch) []byte {
	return []byte{kind, arch.Tag[0], arch.Tag[1], arch.Tag[2]}
}

func appendMemory(buff []byte, machine *cpu.Cpu) []byte {
	mem := machine.Memory()
	for _, value := range mem {
		buff = append(buff, value, 0x00)
	}
	return buff
}

func boolByte(value bool) byte {
	if value {
		return 1
	}
	return 0
}

// stateSize returns the size of a snapshot of an architecture.
func stateSize(arch *cpu.Arch) int {
	return 4 + 2 + len(arch.Registers) + len(arch.Flags) + 1 + 8 + 8 + 2*cpu.MEMORY_SIZE
}

// EncodeMem writes the memory image of a machine.
func EncodeMem(w io.Writer, machine *cpu.Cpu) (err error) {
	buff := magic(MAGIC_MEM, machine.Arch)
	buff = appendMemory(buff, machine)

	_, err = w.Write(buff)
	return
}

// readAll reads exactly size bytes. The magic is verified as soon as it
// is read, so a foreign or short file with a bad header is invalid.
func readAll(r io.Reader, size int, want []byte) (data []byte, err error) {
	data = make([]byte, size)

	n, err := io.ReadFull(r, data[:len(want)])
	if !bytes.Equal(data[:n], want[:n]) {
		err = ErrInvalidFile
		return
	}
	if err == nil {
		_, err = io.ReadFull(r, data[len(want):])
	}
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}

	return
}

func decodeMemory(data []byte) (mem [cpu.MEMORY_SIZE]byte) {
	for addr := range mem {
		mem[addr] = data[2*addr]
	}
	return
}

// DecodeMem replaces the memory of a machine from an image. The machine is
// untouched on error.
func DecodeMem(r io.Reader, machine *cpu.Cpu) (err error) {
	want := magic(MAGIC_MEM, machine.Arch)
	data, err := readAll(r, len(want)+2*cpu.MEMORY_SIZE, want)
	if err != nil {
		return
	}

	machine.SetMemory(decodeMemory(data[len(want):]))

	return
}

// EncodeState writes a whole machine snapshot.
func EncodeState(w io.Writer, machine *cpu.Cpu) (err error) {
	arch := machine.Arch

	buff := make([]byte, 0, stateSize(arch))
	buff = append(buff, magic(MAGIC_STATE, arch)...)
	buff = append(buff, machine.Ir, machine.Pc)
	for _, reg := range arch.Registers {
		buff = append(buff, machine.GetRegister(reg))
	}
	for _, fl := range arch.Flags {
		buff = append(buff, boolByte(machine.Flag(fl)))
	}
	buff = append(buff, boolByte(machine.Running))
	buff = binary.LittleEndian.AppendUint64(buff, machine.Cycles)
	buff = binary.LittleEndian.AppendUint64(buff, machine.Accesses)
	buff = appendMemory(buff, machine)

	_, err = w.Write(buff)
	return
}

// DecodeState restores a whole machine snapshot. The machine is untouched
// on error.
func DecodeState(r io.Reader, machine *cpu.Cpu) (err error) {
	arch := machine.Arch

	want := magic(MAGIC_STATE, arch)
	data, err := readAll(r, stateSize(arch), want)
	if err != nil {
		return
	}

	data = data[len(want):]
	machine.Ir = data[0]
	machine.Pc = data[1]
	data = data[2:]

	for n, reg := range arch.Registers {
		machine.Register[reg] = data[n]
	}
	data = data[len(arch.Registers):]

	machine.Flags = 0
	for n, fl := range arch.Flags {
		machine.SetFlag(fl, data[n] != 0)
	}
	data = data[len(arch.Flags):]

	machine.Running = data[0] != 0
	data = data[1:]

	machine.Cycles = binary.LittleEndian.Uint64(data[0:8])
	machine.Accesses = binary.LittleEndian.Uint64(data[8:16])
	data = data[16:]

	machine.SetMemory(decodeMemory(data))

	return
}

// Encode writes a machine in a format.
func Encode(w io.Writer, machine *cpu.Cpu, format Format) (err error) {
	switch format {
	case FORMAT_MEM:
		err = EncodeMem(w, machine)
	case FORMAT_STATE:
		err = EncodeState(w, machine)
	default:
		err = ErrInvalidFile
	}

	return
}

// Decode reads a machine in a format.
func Decode(r io.Reader, machine *cpu.Cpu, format Format) (err error) {
	switch format {
	case FORMAT_MEM:
		err = DecodeMem(r, machine)
	case FORMAT_STATE:
		err = DecodeState(r, machine)
	default:
		err = ErrInvalidFile
	}

	return
}

// Load decodes the file at path, in the format of its extension.
func Load(path string, machine *cpu.Cpu) (err error) {
	defer func() {
		if err != nil {
			err = &ErrPath{Path: path, Err: err}
		}
	}()

	format, err := FormatOf(path)
	if err != nil {
		return
	}

	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	err = Decode(inf, machine, format)
	return
}

// Save encodes to the file at path, in the format of its extension.
func Save(path string, machine *cpu.Cpu) (err error) {
	defer func() {
		if err != nil {
			err = &ErrPath{Path: path, Err: err}
		}
	}()

	format, err := FormatOf(path)
	if err != nil {
		return
	}

	var buff bytes.Buffer
	err = Encode(&buff, machine, format)
	if err != nil {
		return
	}

	err = os.WriteFile(path, buff.Bytes(), 0o644)
	return
}
