package cpu

const (
	MEMORY_SIZE = 256  // Bytes of addressable memory.
	ARENA_CODE  = 0x00 // Conventional start of program text.
	ARENA_DATA  = 0x80 // Conventional start of program data.
	ARENA_TOP   = 0xff // Last address.
)
