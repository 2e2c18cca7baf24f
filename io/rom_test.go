package io

import (
	"bytes"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/cpu"
)

func TestRom_Load(t *testing.T) {
	assert := assert.New(t)

	rom := &Rom{}
	err := rom.Load(bytes.NewReader([]byte{0x00, 0xe0, 0x12, 0x00}))
	assert.NoError(err)
	assert.Equal([]byte{0x00, 0xe0, 0x12, 0x00}, rom.Data)

	err = rom.Load(bytes.NewReader(nil))
	assert.NoError(err)
	assert.Empty(rom.Data)
}

func TestRom_Load_TooLarge(t *testing.T) {
	assert := assert.New(t)

	rom := &Rom{Data: []byte{1, 2}}

	err := rom.Load(bytes.NewReader(make([]byte, cpu.PROGRAM_SIZE)))
	assert.NoError(err)
	assert.Len(rom.Data, cpu.PROGRAM_SIZE)

	err = rom.Load(bytes.NewReader(make([]byte, cpu.PROGRAM_SIZE+1)))
	assert.ErrorIs(err, cpu.ErrRomTooLarge)
	assert.Len(rom.Data, cpu.PROGRAM_SIZE)
}

func TestRom_LoadFile(t *testing.T) {
	assert := assert.New(t)

	fsys := fstest.MapFS{
		"games/maze.ch8": &fstest.MapFile{Data: []byte{0xa2, 0x1e}},
		"games/huge.ch8": &fstest.MapFile{Data: make([]byte, 0x1000)},
	}

	rom := &Rom{}
	assert.NoError(rom.LoadFile(fsys, "games/maze.ch8"))
	assert.Equal("games/maze.ch8", rom.Name)
	assert.Equal([]byte{0xa2, 0x1e}, rom.Data)

	err := rom.LoadFile(fsys, "games/huge.ch8")
	assert.ErrorIs(err, cpu.ErrRomTooLarge)
	assert.Contains(err.Error(), "games/huge.ch8")

	err = rom.LoadFile(fsys, "games/missing.ch8")
	assert.Error(err)
	assert.False(errors.Is(err, cpu.ErrRomTooLarge))
}

func TestRom_Save(t *testing.T) {
	assert := assert.New(t)

	rom := &Rom{Data: []byte{0x60, 0x01, 0x70, 0x01}}

	buff := &bytes.Buffer{}
	assert.NoError(rom.Save(buff))
	assert.Equal(rom.Data, buff.Bytes())

	again := &Rom{}
	assert.NoError(again.Load(buff))
	assert.Equal(rom.Data, again.Data)
}

func TestRom_Defines(t *testing.T) {
	assert := assert.New(t)

	rom := &Rom{Data: []byte{1, 2, 3}}

	defines := map[string]string{}
	for key, value := range rom.Defines() {
		defines[key] = value
	}
	assert.Equal(map[string]string{"ROM_SIZE": "3"}, defines)
}
