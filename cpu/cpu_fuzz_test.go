package cpu

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func FuzzCpu(f *testing.F) {
	for rv := range 0x10 {
		stack := (rv & 1) == 1
		key := uint8(rv << 2)
		f.Add(uint16(rv<<12), stack, uint16(0x300), key)
		f.Add(uint16(rv<<12)|0x0fff, stack, uint16(0xffe), key)
	}

	f.Fuzz(func(t *testing.T, opcode uint16, stack bool, index uint16, key uint8) {
		assert := assert.New(t)

		code := Code(opcode)

		config := DefaultConfig()
		config.Seed = 1
		cpu := NewCpu(config)
		cpu.Pc = 0x2ac
		cpu.Index = index & ADDRESS_MASK
		for n := range cpu.Register {
			cpu.Register[n] = uint8(n*0x11) ^ key
		}
		cpu.Input[key&0xf] = true
		if stack {
			cpu.Stack.Push(0x456)
		}

		pre := *cpu
		pre.Stack.Data = append([]uint16(nil), cpu.Stack.Data...)
		next_pc := (cpu.Pc + 2) & ADDRESS_MASK
		cpu.Pc = next_pc

		err := cpu.Execute(code)

		code_str := fmt.Sprintf("0x%04x (%v) stack:%v index:%03x key:%x\ncpu:%v",
			uint16(code), code, stack, index, key, cpu.String())

		if err != nil {
			assert.ErrorIs(err, ErrOpcode(0), code_str)
			switch {
			case errors.Is(err, ErrStackEmpty):
				assert.Equal(Code(0x00ee), code, code_str)
				assert.False(stack, code_str)
			case errors.Is(err, ErrAddressRange):
				switch code.Family() {
				case FAMILY_DRW, FAMILY_MISC:
					// expected error
				default:
					assert.NoError(err, code_str)
				}
			case errors.Is(err, ErrKeyInvalid):
				assert.Equal(FAMILY_KEY, code.Family(), code_str)
				assert.Greater(pre.Register[code.X()], uint8(0xf), code_str)
			case errors.Is(err, ErrOpcodeSuffix):
				assert.Equal(OP_INVALID, code.Op(), code_str)
			default:
				assert.NoError(err, code_str)
			}
			return
		}

		assert.NotEqual(OP_INVALID, code.Op(), code_str)
		assert.Equal(uint16(0), cpu.Pc&^ADDRESS_MASK, code_str)
		assert.Equal(uint16(0), cpu.Index&^ADDRESS_MASK, code_str)

		x, y := code.X(), code.Y()
		switch code.Op() {
		case OP_CLS:
			assert.Equal(0, cpu.Screen.Lit(), code_str)
			assert.Equal(next_pc, cpu.Pc, code_str)
		case OP_RET:
			assert.Equal(uint16(0x456), cpu.Pc, code_str)
			assert.True(cpu.Stack.Empty(), code_str)
		case OP_JP:
			assert.Equal(code.NNN(), cpu.Pc, code_str)
		case OP_CALL:
			assert.Equal(code.NNN(), cpu.Pc, code_str)
			top, _ := cpu.Stack.Peek()
			assert.Equal(next_pc, top, code_str)
		case OP_SE_BYTE, OP_SNE_BYTE, OP_SE_REG, OP_SNE_REG, OP_SKP, OP_SKNP:
			var taken bool
			switch code.Op() {
			case OP_SE_BYTE:
				taken = pre.Register[x] == code.NN()
			case OP_SNE_BYTE:
				taken = pre.Register[x] != code.NN()
			case OP_SE_REG:
				taken = pre.Register[x] == pre.Register[y]
			case OP_SNE_REG:
				taken = pre.Register[x] != pre.Register[y]
			case OP_SKP:
				taken = pre.Input[pre.Register[x]]
			case OP_SKNP:
				taken = !pre.Input[pre.Register[x]]
			}
			if taken {
				assert.Equal((next_pc+2)&ADDRESS_MASK, cpu.Pc, code_str)
			} else {
				assert.Equal(next_pc, cpu.Pc, code_str)
			}
		case OP_LD_BYTE:
			assert.Equal(code.NN(), cpu.Register[x], code_str)
		case OP_ADD_BYTE:
			assert.Equal(pre.Register[x]+code.NN(), cpu.Register[x], code_str)
			if x != 0xf {
				assert.Equal(pre.Register[0xf], cpu.Register[0xf], code_str)
			}
		case OP_LD_REG:
			assert.Equal(pre.Register[y], cpu.Register[x], code_str)
		case OP_OR:
			assert.Equal(pre.Register[x]|pre.Register[y], cpu.Register[x], code_str)
		case OP_AND:
			assert.Equal(pre.Register[x]&pre.Register[y], cpu.Register[x], code_str)
		case OP_XOR:
			assert.Equal(pre.Register[x]^pre.Register[y], cpu.Register[x], code_str)
		case OP_ADD_REG:
			sum := int(pre.Register[x]) + int(pre.Register[y])
			assert.Equal(uint8(sum), cpu.Register[x], code_str)
			if x != 0xf {
				assert.Equal(flag(sum > 0xff), cpu.Register[0xf], code_str)
			}
		case OP_SUB:
			if x != 0xf {
				assert.Equal(pre.Register[x]-pre.Register[y], cpu.Register[x], code_str)
			}
		case OP_SUBN:
			if x != 0xf {
				assert.Equal(pre.Register[y]-pre.Register[x], cpu.Register[x], code_str)
			}
		case OP_SHR:
			if x != 0xf {
				assert.Equal(pre.Register[x]>>1, cpu.Register[x], code_str)
				assert.Equal(pre.Register[x]&1, cpu.Register[0xf], code_str)
			}
		case OP_SHL:
			if x != 0xf {
				assert.Equal(pre.Register[x]<<1, cpu.Register[x], code_str)
				assert.Equal(pre.Register[x]>>7, cpu.Register[0xf], code_str)
			}
		case OP_LD_I:
			assert.Equal(code.NNN(), cpu.Index, code_str)
		case OP_JP_V0:
			assert.Equal((code.NNN()+uint16(pre.Register[0]))&ADDRESS_MASK, cpu.Pc, code_str)
		case OP_RND:
			assert.Equal(uint8(0), cpu.Register[x]&^code.NN(), code_str)
		case OP_DRW:
			assert.LessOrEqual(cpu.Register[0xf], uint8(1), code_str)
		case OP_LD_VX_DT:
			assert.Equal(pre.DelayTimer, cpu.Register[x], code_str)
		case OP_LD_VX_K:
			assert.Equal(key&0xf, cpu.Register[x], code_str)
			assert.Equal(next_pc, cpu.Pc, code_str)
		case OP_LD_DT:
			assert.Equal(pre.Register[x], cpu.DelayTimer, code_str)
		case OP_LD_ST:
			assert.Equal(pre.Register[x], cpu.SoundTimer, code_str)
		case OP_ADD_I:
			assert.Equal((pre.Index+uint16(pre.Register[x]))&ADDRESS_MASK, cpu.Index, code_str)
		case OP_LD_F:
			assert.Equal(FontAddress(pre.Register[x]), cpu.Index, code_str)
		case OP_LD_B:
			v := pre.Register[x]
			assert.Equal([]byte{v / 100, (v / 10) % 10, v % 10}, cpu.Memory[pre.Index:pre.Index+3], code_str)
		case OP_LD_STORE:
			assert.Equal(pre.Register[:x+1], cpu.Memory[pre.Index:pre.Index+uint16(x)+1], code_str)
			assert.Equal((pre.Index+uint16(x)+1)&ADDRESS_MASK, cpu.Index, code_str)
		case OP_LD_LOAD:
			assert.Equal(pre.Memory[pre.Index:pre.Index+uint16(x)+1], cpu.Register[:x+1], code_str)
			assert.Equal((pre.Index+uint16(x)+1)&ADDRESS_MASK, cpu.Index, code_str)
		}
	})
}
