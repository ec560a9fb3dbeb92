package cpu

// registerFile executes the instructions of the register file machine.
// Every register read and write recomputes N and Z.
type registerFile struct{}

var _ Executor = registerFile{}

// load reads a register, updating N and Z from its value.
func load(cpu *Cpu, reg Register) (value byte) {
	value = cpu.GetRegister(reg)
	setNZ(cpu, value)
	return
}

// store writes a register, updating N and Z from its value. Writes to
// REG_NONE are discarded.
func store(cpu *Cpu, reg Register, value byte) {
	if reg != REG_NONE {
		cpu.Register[reg] = value
	}
	setNZ(cpu, value)
}

func setNZ(cpu *Cpu, value byte) {
	cpu.SetFlag(FLAG_N, value&0x80 != 0)
	cpu.SetFlag(FLAG_Z, value == 0)
}

// Execute executes a decoded register file machine instruction.
func (registerFile) Execute(cpu *Cpu, opcode byte, inst *Instruction) {
	reg := RegisterOf(opcode)
	mode := ModeOf(opcode)

	var operand byte
	if inst.Operand {
		operand = cpu.Fetch()
	}

	switch inst.Op {
	case OP_NOP:
		// pass
	case OP_STA:
		addr := cpu.Address(mode, operand)
		cpu.Write(addr, load(cpu, reg))
	case OP_LDA:
		store(cpu, reg, cpu.Value(mode, operand))
	case OP_ADD:
		value := cpu.Value(mode, operand)
		sum := uint16(load(cpu, reg)) + uint16(value)
		store(cpu, reg, byte(sum))
		cpu.SetFlag(FLAG_C, sum > 0xff)
	case OP_OR:
		value := cpu.Value(mode, operand)
		store(cpu, reg, load(cpu, reg)|value)
	case OP_AND:
		value := cpu.Value(mode, operand)
		store(cpu, reg, load(cpu, reg)&value)
	case OP_NOT:
		store(cpu, reg, ^load(cpu, reg))
	case OP_SUB:
		value := cpu.Value(mode, operand)
		input := load(cpu, reg)
		borrow := value > input
		store(cpu, reg, input-value)
		// Carry is set when no borrow occurred.
		cpu.SetFlag(FLAG_C, !borrow)
	case OP_JMP:
		cpu.Pc = cpu.Address(mode, operand)
	case OP_JN:
		branchIf(cpu, mode, operand, cpu.Flag(FLAG_N))
	case OP_JZ:
		branchIf(cpu, mode, operand, cpu.Flag(FLAG_Z))
	case OP_JC:
		branchIf(cpu, mode, operand, cpu.Flag(FLAG_C))
	case OP_JSR:
		addr := cpu.Address(mode, operand)
		cpu.Write(addr, cpu.Pc)
		cpu.Pc = addr + 1
	case OP_NEG:
		input := load(cpu, reg)
		store(cpu, reg, -input)
		cpu.SetFlag(FLAG_C, input == 0)
	case OP_SHR:
		input := load(cpu, reg)
		store(cpu, reg, input>>1)
		cpu.SetFlag(FLAG_C, input&0x01 != 0)
	case OP_HLT:
		cpu.Halt()
	default:
		// Not a register file machine operation.
	}
}

// branchIf resolves the target address, and jumps there if cond holds.
func branchIf(cpu *Cpu, mode Mode, operand byte, cond bool) {
	addr := cpu.Address(mode, operand)
	if cond {
		cpu.Pc = addr
	}
}
