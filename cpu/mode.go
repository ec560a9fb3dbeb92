package cpu

// Address resolves the effective address of an operand just fetched.
// The index register is read by the address unit directly, so indexed
// addressing does not disturb the flags.
func (cpu *Cpu) Address(mode Mode, operand byte) (addr byte) {
	switch mode & 0x3 {
	case MODE_DIRECT:
		addr = operand
	case MODE_INDIRECT:
		addr = cpu.Read(operand)
	case MODE_IMMEDIATE:
		// The operand byte itself.
		addr = cpu.Pc - 1
	case MODE_INDEXED:
		addr = operand + cpu.Register[REG_X]
	}

	return
}

// Value resolves the effective value of an operand just fetched.
func (cpu *Cpu) Value(mode Mode, operand byte) (value byte) {
	if mode&0x3 == MODE_IMMEDIATE {
		value = operand
		return
	}

	value = cpu.Read(cpu.Address(mode, operand))
	return
}
