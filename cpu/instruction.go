package cpu

// skipIf skips the next instruction when cond holds.
func (cpu *Cpu) skipIf(cond bool) {
	if cond {
		cpu.stepPc()
	}
}

// execSys executes the 0NNN family.
func (cpu *Cpu) execSys(code Code) (err error) {
	switch code {
	case 0x00e0: // CLS
		cpu.Screen.Clear()
	case 0x00ee: // RET
		var pc uint16
		pc, err = cpu.Stack.Pop()
		if err != nil {
			return
		}
		cpu.Pc = pc
	default:
		err = ErrOpcodeSuffix
	}

	return
}

// execAlu executes the 8XYN register-register family.
func (cpu *Cpu) execAlu(code Code) (err error) {
	x, y := code.X(), code.Y()
	xn := cpu.Register[x]
	yn := cpu.Register[y]

	// Shift source; the quirk shifts Vx in place.
	sn := yn
	if cpu.Config.ShiftQuirk {
		sn = xn
	}

	switch code.N() {
	case 0x0: // LD Vx, Vy
		cpu.Register[x] = yn
	case 0x1: // OR Vx, Vy
		cpu.Register[x] = xn | yn
	case 0x2: // AND Vx, Vy
		cpu.Register[x] = xn & yn
	case 0x3: // XOR Vx, Vy
		cpu.Register[x] = xn ^ yn
	case 0x4: // ADD Vx, Vy
		sum := uint16(xn) + uint16(yn)
		cpu.Register[0xf] = flag(sum > 0xff)
		cpu.Register[x] = uint8(sum)
	case 0x5: // SUB Vx, Vy
		cpu.Register[0xf] = flag(xn >= yn)
		cpu.Register[x] = xn - yn
	case 0x6: // SHR Vx {, Vy}
		cpu.Register[0xf] = sn & 0x01
		cpu.Register[x] = sn >> 1
	case 0x7: // SUBN Vx, Vy
		cpu.Register[0xf] = flag(yn >= xn)
		cpu.Register[x] = yn - xn
	case 0xe: // SHL Vx {, Vy}
		cpu.Register[0xf] = (sn >> 7) & 0x01
		cpu.Register[x] = sn << 1
	default:
		err = ErrOpcodeSuffix
	}

	return
}

func flag(cond bool) uint8 {
	if cond {
		return 1
	}
	return 0
}

// execDraw executes DXYN, XORing an 8xN sprite from memory[I] onto the
// screen. The origin wraps; pixels past the right or bottom edge are
// clipped.
func (cpu *Cpu) execDraw(code Code) (err error) {
	ox := int(cpu.Register[code.X()] % SCREEN_WIDTH)
	oy := int(cpu.Register[code.Y()] % SCREEN_HEIGHT)
	rows := int(code.N())

	sprite, err := cpu.Memory.Span(cpu.Index, rows)
	if err != nil {
		return
	}

	cpu.Register[0xf] = 0

	for row, line := range sprite {
		y := oy + row
		if y >= SCREEN_HEIGHT {
			break
		}
		for column := range 8 {
			x := ox + column
			if x >= SCREEN_WIDTH {
				break
			}
			if line&(0x80>>column) == 0 {
				continue
			}
			var collision bool
			collision, err = cpu.Screen.Toggle(x, y)
			if err != nil {
				return
			}
			if collision {
				cpu.Register[0xf] = 1
			}
		}
	}

	return
}

// execKey executes the EXNN keypad skips.
func (cpu *Cpu) execKey(code Code) (err error) {
	key := cpu.Register[code.X()]
	if int(key) >= len(cpu.Input) {
		err = ErrKeyInvalid
		return
	}

	switch code.NN() {
	case 0x9e: // SKP Vx
		cpu.skipIf(cpu.Input[key])
	case 0xa1: // SKNP Vx
		cpu.skipIf(!cpu.Input[key])
	default:
		err = ErrOpcodeSuffix
	}

	return
}

// execMisc executes the FXNN timer, keypad and memory family.
func (cpu *Cpu) execMisc(code Code) (err error) {
	x := code.X()

	switch code.NN() {
	case 0x07: // LD Vx, DT
		cpu.Register[x] = cpu.DelayTimer
	case 0x0a: // LD Vx, K
		for key, pressed := range cpu.Input {
			if pressed {
				cpu.Register[x] = uint8(key)
				return
			}
		}
		// Nothing pressed: execute this instruction again next cycle.
		cpu.Pc = (cpu.Pc - 2) & ADDRESS_MASK
	case 0x15: // LD DT, Vx
		cpu.DelayTimer = cpu.Register[x]
	case 0x18: // LD ST, Vx
		cpu.SoundTimer = cpu.Register[x]
	case 0x1e: // ADD I, Vx
		cpu.Index = (cpu.Index + uint16(cpu.Register[x])) & ADDRESS_MASK
	case 0x29: // LD F, Vx
		cpu.Index = FontAddress(cpu.Register[x])
	case 0x33: // LD B, Vx
		var bcd []byte
		bcd, err = cpu.Memory.Span(cpu.Index, 3)
		if err != nil {
			return
		}
		xn := cpu.Register[x]
		bcd[0] = xn / 100
		bcd[1] = (xn / 10) % 10
		bcd[2] = xn % 10
	case 0x55: // LD [I], Vx
		var mem []byte
		mem, err = cpu.Memory.Span(cpu.Index, int(x)+1)
		if err != nil {
			return
		}
		copy(mem, cpu.Register[:x+1])
		cpu.Index = (cpu.Index + uint16(x) + 1) & ADDRESS_MASK
	case 0x65: // LD Vx, [I]
		var mem []byte
		mem, err = cpu.Memory.Span(cpu.Index, int(x)+1)
		if err != nil {
			return
		}
		copy(cpu.Register[:x+1], mem)
		cpu.Index = (cpu.Index + uint16(x) + 1) & ADDRESS_MASK
	default:
		err = ErrOpcodeSuffix
	}

	return
}
