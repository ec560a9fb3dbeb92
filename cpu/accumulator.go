package cpu

// accumulator executes the instructions of the single register machines.
// Register A is the accumulator; N and Z are derived from it.
type accumulator struct{}

var _ Executor = accumulator{}

// Execute executes a decoded accumulator machine instruction.
func (accumulator) Execute(cpu *Cpu, opcode byte, inst *Instruction) {
	ac := &cpu.Register[REG_A]

	switch inst.Op {
	case OP_NOP:
		// pass
	case OP_STA:
		addr := cpu.Fetch()
		cpu.Write(addr, *ac)
	case OP_LDA:
		addr := cpu.Fetch()
		*ac = cpu.Read(addr)
	case OP_ADD:
		addr := cpu.Fetch()
		operand := cpu.Read(addr)
		sum := uint16(*ac) + uint16(operand)
		result := byte(sum)
		cpu.SetFlag(FLAG_C, sum > 0xff)
		cpu.SetFlag(FLAG_V, (*ac^result)&(operand^result)&0x80 != 0)
		*ac = result
	case OP_SUB:
		addr := cpu.Fetch()
		operand := cpu.Read(addr)
		result := *ac - operand
		cpu.SetFlag(FLAG_B, operand > *ac)
		cpu.SetFlag(FLAG_V, (*ac^operand)&(*ac^result)&0x80 != 0)
		*ac = result
	case OP_OR:
		addr := cpu.Fetch()
		*ac |= cpu.Read(addr)
	case OP_AND:
		addr := cpu.Fetch()
		*ac &= cpu.Read(addr)
	case OP_NOT:
		*ac = ^*ac
	case OP_JMP:
		cpu.Pc = cpu.Fetch()
	case OP_JN:
		jumpIf(cpu, cpu.Flag(FLAG_N))
	case OP_JP:
		jumpIf(cpu, !cpu.Flag(FLAG_N))
	case OP_JV:
		jumpIf(cpu, cpu.Flag(FLAG_V))
	case OP_JNV:
		jumpIf(cpu, !cpu.Flag(FLAG_V))
	case OP_JZ:
		jumpIf(cpu, cpu.Flag(FLAG_Z))
	case OP_JNZ:
		jumpIf(cpu, !cpu.Flag(FLAG_Z))
	case OP_JC:
		jumpIf(cpu, cpu.Flag(FLAG_C))
	case OP_JNC:
		jumpIf(cpu, !cpu.Flag(FLAG_C))
	case OP_JB:
		jumpIf(cpu, cpu.Flag(FLAG_B))
	case OP_JNB:
		jumpIf(cpu, !cpu.Flag(FLAG_B))
	case OP_SHR:
		cpu.SetFlag(FLAG_C, *ac&0x01 != 0)
		*ac >>= 1
	case OP_SHL:
		cpu.SetFlag(FLAG_C, *ac&0x80 != 0)
		*ac <<= 1
	case OP_ROR:
		var prior byte
		if cpu.Flag(FLAG_C) {
			prior = 0x80
		}
		cpu.SetFlag(FLAG_C, *ac&0x01 != 0)
		*ac = (*ac >> 1) | prior
	case OP_ROL:
		var prior byte
		if cpu.Flag(FLAG_C) {
			prior = 0x01
		}
		cpu.SetFlag(FLAG_C, *ac&0x80 != 0)
		*ac = (*ac << 1) | prior
	case OP_HLT:
		cpu.Halt()
	default:
		// Not an accumulator machine operation.
	}
}

// jumpIf fetches the target address, and jumps there if cond holds.
func jumpIf(cpu *Cpu, cond bool) {
	addr := cpu.Fetch()
	if cond {
		cpu.Pc = addr
	}
}
