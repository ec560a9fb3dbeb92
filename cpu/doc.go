// Package cpu implements the simulation engine and assembler for the
// Neander, Ahmes and Ramses didactic machines.
//
// All three machines share one engine: a 256 byte memory, an 8-bit program
// counter and instruction register, up to three 8-bit registers (A, B, X),
// condition flags, and cycle and memory access counters. An Arch supplies
// the instruction table, the stored flags and the execute strategy of a
// variant.
//
// Decoding is total: an opcode missing from the instruction table executes
// as a no-op, and no engine operation can fail.
//
// The assembler reads a small line-oriented assembly language for any of the
// architectures, supporting labels, equates, macros and compile-time
// expression evaluation.
package cpu
