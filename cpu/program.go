package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and
// the bytes it generated.
type Opcode struct {
	LineNo     int      // Source line.
	Addr       uint16   // Load address of Data.
	Words      []string // Source words, after equate and macro expansion.
	Data       []byte   // Generated bytes.
	Raw        bool     // Data came from .byte or .word, and is not an instruction.
	LinkLabel  string   // Label whose address is ORed into the word at LinkOffset.
	LinkOffset int      // Byte offset into Data of the linked word.
}

// Program is the output of the assembler.
type Program struct {
	Opcodes []Opcode
}

// Debug locates the source of an address.
type Debug struct {
	*Opcode
	Index int // Byte offset into the opcode's Data.
}

// Debug returns the opcode covering addr, or a Debug with a nil Opcode if
// no opcode does.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if addr >= op.Addr && int(addr) < int(op.Addr)+len(op.Data) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr - op.Addr),
			}
			break
		}
	}

	return
}

// Binary returns the ROM image, to be loaded at PROGRAM_START.
func (prog *Program) Binary() (rom []byte) {
	for _, op := range prog.Opcodes {
		rom = append(rom, op.Data...)
	}

	return
}

// Codes iterates over the instructions of the program and their addresses.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(addr uint16, code Code) bool) {
		for _, op := range prog.Opcodes {
			if op.Raw {
				continue
			}
			for n := 0; n+1 < len(op.Data); n += 2 {
				code := Code(uint16(op.Data[n])<<8 | uint16(op.Data[n+1]))
				if !yield(op.Addr+uint16(n), code) {
					return
				}
			}
		}
	}
}
