// Package cpu implements the CHIP-8 virtual machine and its assembler.
//
// The machine has 4K of byte addressable memory with the hexadecimal font
// at FONT_BASE and programs loaded at PROGRAM_START, sixteen 8-bit
// registers (V0-VF, with VF doubling as the flag register), a 12-bit index
// register, a bounded return stack, delay and sound timers, a sixteen key
// hexadecimal keypad and a 64x32 monochrome framebuffer.
//
// The assembler accepts the conventional CHIP-8 mnemonics, and supports
// macros, labels, equates and compile-time expression evaluation.
package cpu
