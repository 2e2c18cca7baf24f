// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/ezrec/chip8/config"
	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/host"
	"github.com/ezrec/chip8/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if errors.Is(err, flag.ErrHelp) {
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}
}

// options are the command line settings.
type options struct {
	config      string
	assemble    string
	output      string
	listing     bool
	frames      int
	writeConfig string

	verbose          bool
	level            string
	seed             uint64
	legacyShiftQuirk bool
	stackLimit       int
	cycles           int
}

// run parses the arguments and runs the machine.
func run(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) (err error) {
	var opt options

	flags := flag.NewFlagSet("chip8", flag.ContinueOnError)
	flags.SetOutput(stderr)

	flags.StringVar(&opt.config, "config", "", "chip8.toml configuration file")
	flags.StringVar(&opt.assemble, "a", "", ".asm file to assemble")
	flags.StringVar(&opt.output, "o", "", "Save ROM to file, do not execute")
	flags.BoolVar(&opt.listing, "l", false, "Print disassembly, do not execute")
	flags.IntVar(&opt.frames, "frames", 0, "Run N frames without a window, then print the screen")
	flags.StringVar(&opt.writeConfig, "write-config", "", "Write the effective configuration, do not execute")
	flags.BoolVar(&opt.verbose, "v", false, "Verbose mode")
	flags.StringVar(&opt.level, "log", "", "Log level (debug, info, warn, error)")
	flags.Uint64Var(&opt.seed, "seed", 0, "Random seed (0 for random)")
	flags.BoolVar(&opt.legacyShiftQuirk, "legacy-shift-quirk", true, "SHR/SHL shift Vx instead of Vy")
	flags.IntVar(&opt.stackLimit, "stack-limit", cpu.STACK_LIMIT, "Maximum call depth")
	flags.IntVar(&opt.cycles, "cycles", emulator.CYCLES_PER_FRAME, "Instructions per frame")

	err = flags.Parse(args)
	if err != nil {
		return
	}

	cfg, err := loadConfig(flags, &opt)
	if err != nil {
		return
	}

	if len(opt.writeConfig) != 0 {
		err = writeConfig(cfg, opt.writeConfig)
		return
	}

	err = logger.InitLogger(cfg.Log.Level, stderr)
	if err != nil {
		return
	}

	emu := emulator.NewEmulator(cfg.Machine.CpuConfig())
	emu.CyclesPerFrame = cfg.Machine.CyclesPerFrame
	emu.Verbose = cfg.Log.Verbose

	err = cfg.BindKeypad(emu.Keypad)
	if err != nil {
		return
	}

	err = host.CheckKeypad(emu.Keypad)
	if err != nil {
		return
	}

	switch {
	case len(opt.assemble) != 0:
		if flags.NArg() != 0 {
			err = fmt.Errorf("unknown arguments: %v", flags.Args())
			return
		}
		err = assemble(emu, opt.assemble)
	case flags.NArg() == 1:
		name := flags.Arg(0)
		err = emu.Rom.LoadFile(os.DirFS(filepath.Dir(name)), filepath.Base(name))
	default:
		err = fmt.Errorf("expected one ROM file, or -a")
	}
	if err != nil {
		return
	}

	err = emu.Reset()
	if err != nil {
		return
	}

	if len(opt.output) != 0 {
		err = saveRom(emu, opt.output)
		return
	}

	if opt.listing {
		listing(emu, stdout)
		return
	}

	logger.GetLogger().Info("chip8: loaded", "rom", emu.Rom.Name, "size", len(emu.Rom.Data))

	if opt.frames > 0 {
		err = host.RunHeadless(ctx, emu, opt.frames, stdout)
		return
	}

	err = host.Run(host.NewGame(emu), "chip8 - "+emu.Rom.Name, cfg.Machine.FrameRate)

	return
}

// loadConfig reads the configuration file, then applies any flags that were
// set on the command line.
func loadConfig(flags *flag.FlagSet, opt *options) (cfg *config.Config, err error) {
	cfg = config.Default()
	if len(opt.config) != 0 {
		cfg, err = config.Load(opt.config)
		if err != nil {
			return
		}
	}

	flags.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "v":
			cfg.Log.Verbose = opt.verbose
		case "log":
			cfg.Log.Level = opt.level
		case "seed":
			cfg.Machine.Seed = opt.seed
		case "legacy-shift-quirk":
			cfg.Machine.LegacyShiftQuirk = opt.legacyShiftQuirk
		case "stack-limit":
			cfg.Machine.StackLimit = opt.stackLimit
		case "cycles":
			cfg.Machine.CyclesPerFrame = opt.cycles
		}
	})

	// Instruction traces are logged at debug level.
	if cfg.Log.Verbose && len(opt.level) == 0 {
		cfg.Log.Level = "debug"
	}

	err = cfg.Validate()
	return
}

func writeConfig(cfg *config.Config, path string) (err error) {
	ouf, err := os.Create(path)
	if err != nil {
		return
	}
	defer func() {
		cerr := ouf.Close()
		if err == nil {
			err = cerr
		}
	}()

	err = cfg.Write(ouf)
	return
}

func assemble(emu *emulator.Emulator, path string) (err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
		return
	}

	emu.Program = prog
	emu.Rom.Name = filepath.Base(path)

	return
}

func saveRom(emu *emulator.Emulator, path string) (err error) {
	ouf, err := os.Create(path)
	if err != nil {
		return
	}
	defer func() {
		cerr := ouf.Close()
		if err == nil {
			err = cerr
		}
	}()

	err = emu.Rom.Save(ouf)
	return
}

// listing prints the disassembly of the loaded image, with source lines
// for assembled programs.
func listing(emu *emulator.Emulator, w io.Writer) {
	for addr, code := range cpu.Disassemble(emu.Rom.Data, cpu.PROGRAM_START) {
		dbg := emu.Program.Debug(addr)
		if dbg.Opcode != nil && dbg.Index == 0 {
			fmt.Fprintf(w, "%03x: %04x %-20v ; %d\n", addr, uint16(code), code, dbg.Opcode.LineNo)
		} else {
			fmt.Fprintf(w, "%03x: %04x %v\n", addr, uint16(code), code)
		}
	}
}
