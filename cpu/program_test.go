package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testProgram() *Program {
	return &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Addr: 0x200, Words: []string{"ld", "v0", "0x10"}, Data: []byte{0x60, 0x10}},
			{LineNo: 2, Addr: 0x202, Words: []string{".byte", "1", "2", "3"}, Data: []byte{1, 2, 3}, Raw: true},
			{LineNo: 3, Addr: 0x205, Words: []string{"add", "v0", "v1"}, Data: []byte{0x80, 0x14}},
		},
	}
}

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	dbg := prog.Debug(0x200)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.Opcode.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(0x201)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.Opcode.LineNo)
	assert.Equal(1, dbg.Index)

	dbg = prog.Debug(0x204)
	assert.NotNil(dbg.Opcode)
	assert.Equal(2, dbg.Opcode.LineNo)
	assert.Equal(2, dbg.Index)

	dbg = prog.Debug(0x205)
	assert.NotNil(dbg.Opcode)
	assert.Equal(3, dbg.Opcode.LineNo)
	assert.Equal(0, dbg.Index)
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	dbg := prog.Debug(0x1ff)
	assert.Nil(dbg.Opcode)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(0x207)
	assert.Nil(dbg.Opcode)
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	assert.Equal([]byte{0x60, 0x10, 1, 2, 3, 0x80, 0x14}, prog.Binary())
}

func TestProgram_Codes(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	addrs := []uint16{}
	codes := []Code{}
	for addr, code := range prog.Codes() {
		addrs = append(addrs, addr)
		codes = append(codes, code)
	}

	assert.Equal([]uint16{0x200, 0x205}, addrs)
	assert.Equal([]Code{0x6010, 0x8014}, codes)
}

func TestProgram_Codes_EarlyReturn(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	count := 0
	for range prog.Codes() {
		count++
		if count == 1 {
			break
		}
	}

	assert.Equal(1, count)
}

func TestProgram_Codes_Empty(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{},
	}

	count := 0
	for range prog.Codes() {
		count++
	}

	assert.Equal(0, count)
	assert.Empty(prog.Binary())
}

func TestProgram_Integration_ParseAndRun(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := strings.Join([]string{
		"    ld i, SPRITE",
		"    drw v0, v0, 2",
		"LOOP:",
		"    jp LOOP",
		"SPRITE:",
		"    .byte 0x80 0x40",
	}, "\n")

	prog, err := asm.Parse(strings.NewReader(program))
	assert.NoError(err)

	cpu := NewCpu(DefaultConfig())
	assert.NoError(cpu.LoadRom(prog.Binary()))

	for range 4 {
		assert.NoError(cpu.Tick())
	}

	assert.Equal(asm.Label["LOOP"], cpu.Pc)
	lit, _ := cpu.Screen.Pixel(0, 0)
	assert.True(lit)
	lit, _ = cpu.Screen.Pixel(1, 1)
	assert.True(lit)
	assert.Equal(2, cpu.Screen.Lit())

	dbg := prog.Debug(cpu.Pc)
	assert.NotNil(dbg.Opcode)
	assert.Equal(4, dbg.Opcode.LineNo)
}
