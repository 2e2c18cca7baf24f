package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"math/rand/v2"
	"strings"
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":   fmt.Sprintf("0x%x", MEMORY_SIZE),
	"FONT_BASE":     fmt.Sprintf("0x%x", FONT_BASE),
	"FONT_HEIGHT":   fmt.Sprintf("%d", FONT_HEIGHT),
	"PROGRAM_START": fmt.Sprintf("0x%x", PROGRAM_START),
	"SCREEN_WIDTH":  fmt.Sprintf("%d", SCREEN_WIDTH),
	"SCREEN_HEIGHT": fmt.Sprintf("%d", SCREEN_HEIGHT),
}

// Config selects the behaviour of historically ambiguous instructions and
// the machine limits.
type Config struct {
	StackLimit int    // Return stack depth. Zero selects STACK_LIMIT.
	ShiftQuirk bool   // 8XY6/8XYE shift Vx in place, ignoring Vy.
	Seed       uint64 // CXNN random seed. Zero seeds from the runtime.
}

// DefaultConfig is the configuration of the reference interpreter.
func DefaultConfig() Config {
	return Config{
		StackLimit: STACK_LIMIT,
		ShiftQuirk: true,
	}
}

// Cpu is the complete mutable state of the CHIP-8 virtual machine.
type Cpu struct {
	Verbose bool   // Set to enable verbose logging.
	Config  Config // Configuration the machine was built with.

	Memory     Memory      // Addressable memory.
	Register   [16]uint8   // V0-VF. VF doubles as the flag register.
	Index      uint16      // Index register I.
	Pc         uint16      // Program counter.
	Stack      Stack       // Return address stack.
	DelayTimer uint8       // Delay timer, counts down once per frame.
	SoundTimer uint8       // Sound timer, a tone plays while non-zero.
	Input      [16]bool    // Key latches, written by the host.
	Screen     Framebuffer // Display.

	RequiresRepaint bool // Set when the screen may have changed; the host clears it.
	Running         bool // Cleared by the host to quit, or by a fatal error.

	Ticks int // Instructions executed since reset.

	Rand *rand.Rand // Source for CXNN.
}

// NewCpu creates a new CPU.
func NewCpu(config Config) (cpu *Cpu) {
	cpu = &Cpu{
		Config: config,
	}

	seed := config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	cpu.Rand = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "   pc: %03X\n", cpu.Pc)
	fmt.Fprintf(&sb, "    i: %03X\n", cpu.Index)
	for n, val := range cpu.Register {
		fmt.Fprintf(&sb, "   v%X: %02X\n", n, val)
	}
	top, err := cpu.Stack.Peek()
	if err == nil {
		fmt.Fprintf(&sb, "stack: %03X (%d)\n", top, cpu.Stack.Depth())
	} else {
		fmt.Fprintf(&sb, "stack: ---\n")
	}
	fmt.Fprintf(&sb, "   dt: %02X\n", cpu.DelayTimer)
	fmt.Fprintf(&sb, "   st: %02X\n", cpu.SoundTimer)

	return sb.String()
}

// Reset the CPU state.
// - Clears the registers, stack, timers, keys and screen.
// - Zeros memory and reinstalls the font.
// - Sets the PC to the program start.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		slog.Debug("cpu: reset")
	}

	cpu.Memory.Reset()
	clear(cpu.Register[:])
	clear(cpu.Input[:])
	cpu.Index = 0
	cpu.Pc = PROGRAM_START
	cpu.Stack.Limit = cpu.Config.StackLimit
	cpu.Stack.Reset()
	cpu.DelayTimer = 0
	cpu.SoundTimer = 0
	cpu.Screen.Clear()
	cpu.RequiresRepaint = false
	cpu.Running = true
	cpu.Ticks = 0
}

// LoadRom copies a program image into memory at PROGRAM_START.
func (cpu *Cpu) LoadRom(rom []byte) (err error) {
	if len(rom) > PROGRAM_SIZE {
		err = ErrRomTooLarge
		return
	}

	span, err := cpu.Memory.Span(PROGRAM_START, len(rom))
	if err != nil {
		return
	}
	copy(span, rom)

	return
}

// SetKey sets or clears a key latch.
func (cpu *Cpu) SetKey(key uint8, pressed bool) (err error) {
	if int(key) >= len(cpu.Input) {
		err = ErrKeyInvalid
		return
	}

	cpu.Input[key] = pressed
	return
}

// Beeping returns true while the sound timer is running.
func (cpu *Cpu) Beeping() bool {
	return cpu.SoundTimer > 0
}

// stepPc advances the program counter by one instruction.
func (cpu *Cpu) stepPc() {
	cpu.Pc = (cpu.Pc + 2) & ADDRESS_MASK
}

// FetchCode fetches the instruction at the program counter.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	word, err := cpu.Memory.Word(cpu.Pc)
	if err != nil {
		return
	}

	code = Code(word)
	return
}

// Tick executes a single CPU instruction cycle.
//
// Any error is fatal: the machine stops running and must be reset.
func (cpu *Cpu) Tick() (err error) {
	defer func() {
		if err != nil {
			cpu.Running = false
		}
	}()

	code, err := cpu.FetchCode()
	if err != nil {
		return
	}

	cpu.stepPc()

	err = cpu.Execute(code)
	if err != nil {
		return
	}

	if code.Repaints() {
		cpu.RequiresRepaint = true
	}

	cpu.Ticks++

	return
}

// UpdateTimers counts the delay and sound timers down towards zero. The
// host calls it once per frame.
func (cpu *Cpu) UpdateTimers() {
	if cpu.DelayTimer > 0 {
		cpu.DelayTimer--
	}

	if cpu.SoundTimer > 0 {
		cpu.SoundTimer--
	}
}

// Execute executes a single decoded instruction. The program counter must
// already point past it.
func (cpu *Cpu) Execute(code Code) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()
	if cpu.Verbose {
		slog.Debug("cpu: exec",
			"pc", fmt.Sprintf("%03x", (cpu.Pc-2)&ADDRESS_MASK),
			"opcode", fmt.Sprintf("%04x", uint16(code)),
			"instr", code.String())
	}

	switch code.Family() {
	case FAMILY_SYS:
		err = cpu.execSys(code)
	case FAMILY_JP:
		cpu.Pc = code.NNN()
	case FAMILY_CALL:
		err = cpu.Stack.Push(cpu.Pc)
		if err != nil {
			return
		}
		cpu.Pc = code.NNN()
	case FAMILY_SE_BYTE:
		cpu.skipIf(cpu.Register[code.X()] == code.NN())
	case FAMILY_SNE_BYTE:
		cpu.skipIf(cpu.Register[code.X()] != code.NN())
	case FAMILY_SE_REG:
		if code.N() != 0 {
			err = ErrOpcodeSuffix
			return
		}
		cpu.skipIf(cpu.Register[code.X()] == cpu.Register[code.Y()])
	case FAMILY_LD_BYTE:
		cpu.Register[code.X()] = code.NN()
	case FAMILY_ADD_BYTE:
		cpu.Register[code.X()] += code.NN()
	case FAMILY_ALU:
		err = cpu.execAlu(code)
	case FAMILY_SNE_REG:
		if code.N() != 0 {
			err = ErrOpcodeSuffix
			return
		}
		cpu.skipIf(cpu.Register[code.X()] != cpu.Register[code.Y()])
	case FAMILY_LD_I:
		cpu.Index = code.NNN()
	case FAMILY_JP_V0:
		cpu.Pc = (code.NNN() + uint16(cpu.Register[0])) & ADDRESS_MASK
	case FAMILY_RND:
		cpu.Register[code.X()] = uint8(cpu.Rand.UintN(256)) & code.NN()
	case FAMILY_DRW:
		err = cpu.execDraw(code)
	case FAMILY_KEY:
		err = cpu.execKey(code)
	case FAMILY_MISC:
		err = cpu.execMisc(code)
	default:
		err = ErrOpcodeFamily
	}

	return
}
