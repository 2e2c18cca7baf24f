package cpu

import (
	"fmt"
	"iter"
)

// CodeFamily is the top nibble of an opcode.
type CodeFamily int

//go:generate go tool stringer -linecomment -type=CodeFamily
const (
	FAMILY_SYS      = CodeFamily(0x0) // sys
	FAMILY_JP       = CodeFamily(0x1) // jp
	FAMILY_CALL     = CodeFamily(0x2) // call
	FAMILY_SE_BYTE  = CodeFamily(0x3) // se
	FAMILY_SNE_BYTE = CodeFamily(0x4) // sne
	FAMILY_SE_REG   = CodeFamily(0x5) // sereg
	FAMILY_LD_BYTE  = CodeFamily(0x6) // ld
	FAMILY_ADD_BYTE = CodeFamily(0x7) // add
	FAMILY_ALU      = CodeFamily(0x8) // alu
	FAMILY_SNE_REG  = CodeFamily(0x9) // snereg
	FAMILY_LD_I     = CodeFamily(0xa) // ldi
	FAMILY_JP_V0    = CodeFamily(0xb) // jpv0
	FAMILY_RND      = CodeFamily(0xc) // rnd
	FAMILY_DRW      = CodeFamily(0xd) // drw
	FAMILY_KEY      = CodeFamily(0xe) // key
	FAMILY_MISC     = CodeFamily(0xf) // misc
)

// CodeOp is a fully decoded operation.
type CodeOp int

//go:generate go tool stringer -linecomment -type=CodeOp
const (
	OP_INVALID  = CodeOp(iota) // invalid
	OP_CLS                     // cls
	OP_RET                     // ret
	OP_JP                      // jp
	OP_CALL                    // call
	OP_SE_BYTE                 // se.byte
	OP_SNE_BYTE                // sne.byte
	OP_SE_REG                  // se.reg
	OP_LD_BYTE                 // ld.byte
	OP_ADD_BYTE                // add.byte
	OP_LD_REG                  // ld.reg
	OP_OR                      // or
	OP_AND                     // and
	OP_XOR                     // xor
	OP_ADD_REG                 // add.reg
	OP_SUB                     // sub
	OP_SHR                     // shr
	OP_SUBN                    // subn
	OP_SHL                     // shl
	OP_SNE_REG                 // sne.reg
	OP_LD_I                    // ld.i
	OP_JP_V0                   // jp.v0
	OP_RND                     // rnd
	OP_DRW                     // drw
	OP_SKP                     // skp
	OP_SKNP                    // sknp
	OP_LD_VX_DT                // ld.vx.dt
	OP_LD_VX_K                 // ld.vx.k
	OP_LD_DT                   // ld.dt
	OP_LD_ST                   // ld.st
	OP_ADD_I                   // add.i
	OP_LD_F                    // ld.f
	OP_LD_B                    // ld.b
	OP_LD_STORE                // ld.store
	OP_LD_LOAD                 // ld.load
)

// Code is a single 16-bit instruction word, nibbles N3 N2 N1 N0 from most
// to least significant.
type Code uint16

// MakeCodeNNN creates an instruction with a 12-bit address tail.
func MakeCodeNNN(family CodeFamily, nnn uint16) Code {
	return Code((uint16(family) << 12) | (nnn & 0xfff))
}

// MakeCodeXNN creates an instruction with a register and a byte.
func MakeCodeXNN(family CodeFamily, x uint8, nn uint8) Code {
	return Code((uint16(family) << 12) | (uint16(x&0xf) << 8) | uint16(nn))
}

// MakeCodeXYN creates an instruction with two registers and a nibble.
func MakeCodeXYN(family CodeFamily, x, y, n uint8) Code {
	return Code((uint16(family) << 12) | (uint16(x&0xf) << 8) | (uint16(y&0xf) << 4) | uint16(n&0xf))
}

// Family returns the instruction family (N3).
func (code Code) Family() CodeFamily {
	return CodeFamily(code >> 12)
}

// X returns the first register operand (N2).
func (code Code) X() uint8 {
	return uint8(code>>8) & 0xf
}

// Y returns the second register operand (N1).
func (code Code) Y() uint8 {
	return uint8(code>>4) & 0xf
}

// N returns the low nibble (N0).
func (code Code) N() uint8 {
	return uint8(code) & 0xf
}

// NN returns the low byte.
func (code Code) NN() uint8 {
	return uint8(code)
}

// NNN returns the 12-bit address tail.
func (code Code) NNN() uint16 {
	return uint16(code) & 0xfff
}

// Op decodes the operation, or OP_INVALID if the word is not a recognized
// instruction.
func (code Code) Op() CodeOp {
	switch code.Family() {
	case FAMILY_SYS:
		switch code {
		case 0x00e0:
			return OP_CLS
		case 0x00ee:
			return OP_RET
		}
	case FAMILY_JP:
		return OP_JP
	case FAMILY_CALL:
		return OP_CALL
	case FAMILY_SE_BYTE:
		return OP_SE_BYTE
	case FAMILY_SNE_BYTE:
		return OP_SNE_BYTE
	case FAMILY_SE_REG:
		if code.N() == 0 {
			return OP_SE_REG
		}
	case FAMILY_LD_BYTE:
		return OP_LD_BYTE
	case FAMILY_ADD_BYTE:
		return OP_ADD_BYTE
	case FAMILY_ALU:
		switch code.N() {
		case 0x0:
			return OP_LD_REG
		case 0x1:
			return OP_OR
		case 0x2:
			return OP_AND
		case 0x3:
			return OP_XOR
		case 0x4:
			return OP_ADD_REG
		case 0x5:
			return OP_SUB
		case 0x6:
			return OP_SHR
		case 0x7:
			return OP_SUBN
		case 0xe:
			return OP_SHL
		}
	case FAMILY_SNE_REG:
		if code.N() == 0 {
			return OP_SNE_REG
		}
	case FAMILY_LD_I:
		return OP_LD_I
	case FAMILY_JP_V0:
		return OP_JP_V0
	case FAMILY_RND:
		return OP_RND
	case FAMILY_DRW:
		return OP_DRW
	case FAMILY_KEY:
		switch code.NN() {
		case 0x9e:
			return OP_SKP
		case 0xa1:
			return OP_SKNP
		}
	case FAMILY_MISC:
		switch code.NN() {
		case 0x07:
			return OP_LD_VX_DT
		case 0x0a:
			return OP_LD_VX_K
		case 0x15:
			return OP_LD_DT
		case 0x18:
			return OP_LD_ST
		case 0x1e:
			return OP_ADD_I
		case 0x29:
			return OP_LD_F
		case 0x33:
			return OP_LD_B
		case 0x55:
			return OP_LD_STORE
		case 0x65:
			return OP_LD_LOAD
		}
	}

	return OP_INVALID
}

// Repaints returns true if executing the instruction may change the
// framebuffer.
func (code Code) Repaints() bool {
	return code == 0x00e0 || code.Family() == FAMILY_DRW
}

// String returns the assembly language representation of this instruction.
func (code Code) String() (out string) {
	x, y := code.X(), code.Y()

	switch op := code.Op(); op {
	case OP_CLS:
		out = "CLS"
	case OP_RET:
		out = "RET"
	case OP_JP:
		out = fmt.Sprintf("JP 0x%03x", code.NNN())
	case OP_CALL:
		out = fmt.Sprintf("CALL 0x%03x", code.NNN())
	case OP_SE_BYTE:
		out = fmt.Sprintf("SE V%X, 0x%02x", x, code.NN())
	case OP_SNE_BYTE:
		out = fmt.Sprintf("SNE V%X, 0x%02x", x, code.NN())
	case OP_SE_REG:
		out = fmt.Sprintf("SE V%X, V%X", x, y)
	case OP_LD_BYTE:
		out = fmt.Sprintf("LD V%X, 0x%02x", x, code.NN())
	case OP_ADD_BYTE:
		out = fmt.Sprintf("ADD V%X, 0x%02x", x, code.NN())
	case OP_LD_REG:
		out = fmt.Sprintf("LD V%X, V%X", x, y)
	case OP_OR, OP_AND, OP_XOR, OP_SUB, OP_SUBN, OP_SHR, OP_SHL:
		out = fmt.Sprintf("%v V%X, V%X", mnemonic(op), x, y)
	case OP_ADD_REG:
		out = fmt.Sprintf("ADD V%X, V%X", x, y)
	case OP_SNE_REG:
		out = fmt.Sprintf("SNE V%X, V%X", x, y)
	case OP_LD_I:
		out = fmt.Sprintf("LD I, 0x%03x", code.NNN())
	case OP_JP_V0:
		out = fmt.Sprintf("JP V0, 0x%03x", code.NNN())
	case OP_RND:
		out = fmt.Sprintf("RND V%X, 0x%02x", x, code.NN())
	case OP_DRW:
		out = fmt.Sprintf("DRW V%X, V%X, 0x%x", x, y, code.N())
	case OP_SKP:
		out = fmt.Sprintf("SKP V%X", x)
	case OP_SKNP:
		out = fmt.Sprintf("SKNP V%X", x)
	case OP_LD_VX_DT:
		out = fmt.Sprintf("LD V%X, DT", x)
	case OP_LD_VX_K:
		out = fmt.Sprintf("LD V%X, K", x)
	case OP_LD_DT:
		out = fmt.Sprintf("LD DT, V%X", x)
	case OP_LD_ST:
		out = fmt.Sprintf("LD ST, V%X", x)
	case OP_ADD_I:
		out = fmt.Sprintf("ADD I, V%X", x)
	case OP_LD_F:
		out = fmt.Sprintf("LD F, V%X", x)
	case OP_LD_B:
		out = fmt.Sprintf("LD B, V%X", x)
	case OP_LD_STORE:
		out = fmt.Sprintf("LD [I], V%X", x)
	case OP_LD_LOAD:
		out = fmt.Sprintf("LD V%X, [I]", x)
	default:
		out = fmt.Sprintf("DW 0x%04x", uint16(code))
	}

	return
}

// mnemonic is the upper case assembler name of a register-register ALU op.
func mnemonic(op CodeOp) string {
	switch op {
	case OP_OR:
		return "OR"
	case OP_AND:
		return "AND"
	case OP_XOR:
		return "XOR"
	case OP_SUB:
		return "SUB"
	case OP_SUBN:
		return "SUBN"
	case OP_SHR:
		return "SHR"
	case OP_SHL:
		return "SHL"
	}
	return op.String()
}

// Disassemble iterates over the instruction words of a ROM image loaded
// at base. A trailing odd byte is ignored.
func Disassemble(data []byte, base uint16) iter.Seq2[uint16, Code] {
	return func(yield func(addr uint16, code Code) bool) {
		for n := 0; n+1 < len(data); n += 2 {
			code := Code((uint16(data[n]) << 8) | uint16(data[n+1]))
			if !yield(base+uint16(n), code) {
				return
			}
		}
	}
}
