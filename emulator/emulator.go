// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"iter"
	"maps"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/io"
)

const (
	CYCLES_PER_FRAME = 10 // Instructions executed per frame.
	FRAME_RATE       = 60 // Frames per second; the timers count at this rate.
)

var _emulator_defines = map[string]string{
	"CYCLES_PER_FRAME": fmt.Sprintf("%v", CYCLES_PER_FRAME),
	"FRAME_RATE":       fmt.Sprintf("%v", FRAME_RATE),
}

// Emulator state. CPU + program image + keypad.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the assembled program listing, if any.

	Rom    io.Rom     // Program image, loaded on reset.
	Keypad *io.Keypad // Host key bindings.

	CyclesPerFrame int // Instructions per frame.
	Frames         int // Frames since reset.
}

// NewEmulator creates a new emulator.
func NewEmulator(config cpu.Config) (emu *Emulator) {
	emu = &Emulator{
		Cpu:            cpu.NewCpu(config),
		Program:        &cpu.Program{},
		Keypad:         io.NewKeypad(),
		CyclesPerFrame: CYCLES_PER_FRAME,
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		emu.Rom.Defines(),
	)
}

// Reset the machine, and load the program image. An assembled program
// replaces the ROM image.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	if emu.Program != nil && len(emu.Program.Opcodes) > 0 {
		emu.Rom.Data = emu.Program.Binary()
	}

	emu.Cpu.Reset()
	emu.Frames = 0

	err = emu.Cpu.LoadRom(emu.Rom.Data)
	if err != nil {
		return
	}

	return
}

// Ticks returns the total instructions executed since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Code returns the instruction at the program counter.
func (emu *Emulator) Code() (code cpu.Code) {
	code, _ = emu.Cpu.FetchCode()
	return
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.Opcode.LineNo
}

// Latch samples the host keyboard into the keypad latches.
func (emu *Emulator) Latch(pressed func(name string) bool) {
	emu.Cpu.Input = emu.Keypad.Latch(pressed)
}

// Step executes a single instruction.
func (emu *Emulator) Step() (err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Tick()

	return
}

// Frame runs CyclesPerFrame instructions, then ticks the timers once.
// done is set once the machine has stopped running.
func (emu *Emulator) Frame() (done bool, err error) {
	if !emu.Cpu.Running {
		done = true
		return
	}

	for range max(emu.CyclesPerFrame, 1) {
		err = emu.Step()
		if err != nil {
			done = true
			return
		}
		if !emu.Cpu.Running {
			break
		}
	}

	emu.Cpu.UpdateTimers()
	emu.Frames++

	done = !emu.Cpu.Running
	return
}
