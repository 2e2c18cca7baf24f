package emulator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/cpu"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(cpu.DefaultConfig())

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.NotNil(emu.Keypad)
	assert.Equal(CYCLES_PER_FRAME, emu.CyclesPerFrame)
	assert.Equal(0, emu.LineNo())
}

func assemble(emu *Emulator, program []string, t *testing.T) {
	asm := &cpu.Assembler{}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}
	emu.Program = prog

	err = emu.Reset()
	if err != nil {
		t.Fatal(err)
	}
}

func doRunSingle(emu *Emulator, program []string, t *testing.T) {
	assert := assert.New(t)

	assemble(emu, program, t)

	for _, op := range emu.Program.Opcodes {
		if op.Raw {
			continue
		}
		here := program[op.LineNo-1]
		assert.Equal(op.LineNo, emu.LineNo(), here)
		assert.Equal(op.Addr, emu.Cpu.Pc, here)
		err := emu.Step()
		if err != nil {
			t.Log(emu.Cpu.String())
			t.Fatalf("%v", err)
		}
	}
}

func TestEmulatorRegisters(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(cpu.DefaultConfig())

	program := []string{
		"ld v0, 0x10",
		"ld v1, 0x20",
		"add v1, v0",
		"ld v2, v1",
		"shl v2",
		"ld vf, 0",
		"sub v0, v1",
	}

	doRunSingle(emu, program, t)

	assert.Equal(uint8(0xe0), emu.Cpu.Register[0])
	assert.Equal(uint8(0x30), emu.Cpu.Register[1])
	assert.Equal(uint8(0x60), emu.Cpu.Register[2])
	assert.Equal(uint8(0), emu.Cpu.Register[0xf])
	assert.Equal(7, emu.Ticks())
}

func TestEmulatorMacro(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(cpu.DefaultConfig())
	program := []string{
		".macro SETADD vn a b",
		"ld vn, a",
		"add vn, b",
		".endm",
		"SETADD v0 8 8",
		".equ CONST_10 0x10",
		"SETADD v1 CONST_10 CONST_10",
		"SETADD v2 $(CONST_10 + CONST_10) v0",
		"SETADD v3 $(CYCLES_PER_FRAME) $(PROGRAM_START >> 8)",
	}

	doRunSingle(emu, program, t)

	assert.Equal(uint8(0x10), emu.Cpu.Register[0])
	assert.Equal(uint8(0x20), emu.Cpu.Register[1])
	assert.Equal(uint8(0x30), emu.Cpu.Register[2])
	assert.Equal(uint8(CYCLES_PER_FRAME+2), emu.Cpu.Register[3])
}

func TestEmulatorLabel(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(cpu.DefaultConfig())
	program := []string{
		"jp R0",
		"AddOneToV0:",
		"add v0, 1",
		"ret",
		"R1: ld v1, 0x20",
		"jp R2",
		"R0: AND_ALSO:",
		"ld v0, 0x10",
		"jp R1",
		"R2:",
		"call AddOneToV0",
		"call AddOneToV0",
		"",
		"ld v2, 0x30",
		"DONE: jp DONE",
	}

	assemble(emu, program, t)

	for range 12 {
		assert.NoError(emu.Step())
	}

	assert.Equal(uint8(0x12), emu.Cpu.Register[0])
	assert.Equal(uint8(0x20), emu.Cpu.Register[1])
	assert.Equal(uint8(0x30), emu.Cpu.Register[2])
	assert.Equal(15, emu.LineNo())
	assert.True(emu.Cpu.Stack.Empty())
}

func TestEmulatorFrame(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(cpu.DefaultConfig())
	program := []string{
		"ld v0, 5",
		"ld dt, v0",
		"ld st, v0",
		"LOOP: add v1, 1",
		"jp LOOP",
	}

	assemble(emu, program, t)

	done, err := emu.Frame()
	assert.NoError(err)
	assert.False(done)
	assert.Equal(CYCLES_PER_FRAME, emu.Ticks())
	assert.Equal(1, emu.Frames)
	assert.Equal(uint8(4), emu.Cpu.DelayTimer)
	assert.Equal(uint8(4), emu.Cpu.SoundTimer)
	assert.True(emu.Cpu.Beeping())

	for range 4 {
		done, err = emu.Frame()
		assert.NoError(err)
		assert.False(done)
	}
	assert.Equal(uint8(0), emu.Cpu.DelayTimer)
	assert.False(emu.Cpu.Beeping())

	done, err = emu.Frame()
	assert.NoError(err)
	assert.False(done)
	assert.Equal(uint8(0), emu.Cpu.DelayTimer)
	assert.Equal(6*CYCLES_PER_FRAME, emu.Ticks())

	emu.Cpu.Running = false
	done, err = emu.Frame()
	assert.NoError(err)
	assert.True(done)
	assert.Equal(6, emu.Frames)
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(cpu.DefaultConfig())
	program := []string{
		"cls",
		"ret",
	}

	assemble(emu, program, t)

	done, err := emu.Frame()
	assert.True(done)
	assert.ErrorIs(err, cpu.ErrStackEmpty)
	assert.False(emu.Cpu.Running)

	var re *ErrRuntime
	if assert.True(errors.As(err, &re)) {
		assert.Equal(uint16(0x202), re.Pc)
		assert.Equal(2, re.LineNo)
		assert.Contains(re.Error(), "line 2")
	}

	done, err = emu.Frame()
	assert.True(done)
	assert.NoError(err)

	assert.NoError(emu.Reset())
	assert.True(emu.Cpu.Running)
	assert.Equal(uint16(cpu.PROGRAM_START), emu.Cpu.Pc)
}

func TestEmulatorRom(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(cpu.DefaultConfig())
	emu.Rom.Data = []byte{0x00, 0xe0, 0xf0, 0x00}

	assert.NoError(emu.Reset())
	assert.Equal(cpu.Code(0x00e0), emu.Code())
	assert.Equal(0, emu.LineNo())

	assert.NoError(emu.Step())
	err := emu.Step()
	assert.ErrorIs(err, cpu.ErrOpcodeSuffix)

	var re *ErrRuntime
	if assert.True(errors.As(err, &re)) {
		assert.Equal(uint16(0x202), re.Pc)
		assert.Equal(0, re.LineNo)
		assert.NotContains(re.Error(), "line")
	}

	emu.Rom.Data = make([]byte, cpu.PROGRAM_SIZE+1)
	assert.ErrorIs(emu.Reset(), cpu.ErrRomTooLarge)
}

func TestEmulatorLatch(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(cpu.DefaultConfig())
	emu.Rom.Data = []byte{
		0xf3, 0x0a, // LD V3, K
		0x12, 0x02, // JP 0x202
	}
	assert.NoError(emu.Reset())

	// Wait for a key.
	none := func(name string) bool { return false }
	emu.Latch(none)
	assert.NoError(emu.Step())
	assert.Equal(uint16(0x200), emu.Cpu.Pc)

	emu.Latch(func(name string) bool { return name == "F" })
	assert.NoError(emu.Step())
	assert.Equal(uint16(0x202), emu.Cpu.Pc)
	assert.Equal(uint8(0xe), emu.Cpu.Register[3])
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(cpu.DefaultConfig())
	emu.Rom.Data = []byte{1, 2}

	defines := map[string]string{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}

	assert.Equal("10", defines["CYCLES_PER_FRAME"])
	assert.Equal("60", defines["FRAME_RATE"])
	assert.Equal("0x200", defines["PROGRAM_START"])
	assert.Equal("2", defines["ROM_SIZE"])
}
