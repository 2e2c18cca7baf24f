package cpu

// CHIP-8 memory map.
const (
	MEMORY_SIZE   = 0xfff                       // Bytes of addressable memory.
	ADDRESS_MASK  = 0xfff                       // PC and I wrap within 12 bits.
	FONT_BASE     = 0x050                       // First byte of the hex digit font.
	FONT_HEIGHT   = 5                           // Bytes (rows) per font glyph.
	PROGRAM_START = 0x200                       // Load and entry address of a ROM.
	PROGRAM_SIZE  = MEMORY_SIZE - PROGRAM_START // Largest ROM that fits.
)

// Memory is the byte arena of the machine. All access is validated.
type Memory [MEMORY_SIZE]byte

// Read a byte from memory.
func (mem *Memory) Read(addr uint16) (value byte, err error) {
	if int(addr) >= len(mem) {
		err = ErrAddress(addr)
		return
	}

	value = mem[addr]
	return
}

// Write a byte to memory.
func (mem *Memory) Write(addr uint16, value byte) (err error) {
	if int(addr) >= len(mem) {
		err = ErrAddress(addr)
		return
	}

	mem[addr] = value
	return
}

// Word reads the big-endian 16-bit word at addr.
func (mem *Memory) Word(addr uint16) (word uint16, err error) {
	hi, err := mem.Read(addr)
	if err != nil {
		return
	}
	lo, err := mem.Read(addr + 1)
	if err != nil {
		return
	}

	word = (uint16(hi) << 8) | uint16(lo)
	return
}

// Span returns the n bytes starting at addr, or an error if any of them
// fall outside of memory. The returned slice aliases the arena.
func (mem *Memory) Span(addr uint16, n int) (span []byte, err error) {
	end := int(addr) + n
	if n < 0 || end > len(mem) {
		err = ErrAddress(uint16(max(int(addr), len(mem))))
		return
	}

	span = mem[addr:end]
	return
}

// Reset zeros memory and installs the font.
func (mem *Memory) Reset() {
	clear(mem[:])
	copy(mem[FONT_BASE:], fontData[:])
}
