// Package config handles the chip8.toml machine configuration.
package config

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
	chipio "github.com/ezrec/chip8/io"
	"github.com/ezrec/chip8/logger"
)

// Limits on the machine settings.
const (
	STACK_LIMIT_MAX = 256
	FRAME_RATE_MAX  = 1000
)

// Config represents a chip8.toml configuration.
type Config struct {
	Machine Machine           `toml:"machine"`
	Keypad  map[string]string `toml:"keypad"` // Keypad key (hex digit) to host key name.
	Log     Log               `toml:"log"`

	// Path is the file the configuration was loaded from (set at load time).
	Path string `toml:"-"`
}

// Machine configures the virtual machine.
type Machine struct {
	StackLimit       int    `toml:"stack-limit"`
	LegacyShiftQuirk bool   `toml:"legacy-shift-quirk"`
	CyclesPerFrame   int    `toml:"cycles-per-frame"`
	FrameRate        int    `toml:"frame-rate"`
	Seed             uint64 `toml:"seed"` // Zero selects a random seed.
}

// Log configures logging.
type Log struct {
	Level   string `toml:"level"`
	Verbose bool   `toml:"verbose"` // Trace every instruction at debug level.
}

// Default returns the configuration used when no file is given.
func Default() (cfg *Config) {
	cfg = &Config{
		Machine: Machine{
			StackLimit:       cpu.STACK_LIMIT,
			LegacyShiftQuirk: true,
			CyclesPerFrame:   emulator.CYCLES_PER_FRAME,
			FrameRate:        emulator.FRAME_RATE,
		},
		Keypad: map[string]string{},
		Log: Log{
			Level: "info",
		},
	}

	return
}

// Load reads a configuration file, starting from the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.Path = path
	return cfg, nil
}

// Parse decodes and validates a configuration, starting from the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%v: %w", undecoded[0], ErrUnknownKey)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings are in range.
func (cfg *Config) Validate() error {
	m := &cfg.Machine

	if m.StackLimit < 1 || m.StackLimit > STACK_LIMIT_MAX {
		return fmt.Errorf("machine.stack-limit %d not in 1..%d: %w", m.StackLimit, STACK_LIMIT_MAX, ErrValueRange)
	}

	if m.CyclesPerFrame < 1 {
		return fmt.Errorf("machine.cycles-per-frame %d less than 1: %w", m.CyclesPerFrame, ErrValueRange)
	}

	if m.FrameRate < 1 || m.FrameRate > FRAME_RATE_MAX {
		return fmt.Errorf("machine.frame-rate %d not in 1..%d: %w", m.FrameRate, FRAME_RATE_MAX, ErrValueRange)
	}

	for digit := range cfg.Keypad {
		_, err := keypadKey(digit)
		if err != nil {
			return fmt.Errorf("keypad.%s: %w", digit, err)
		}
	}

	_, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	return nil
}

// keypadKey parses a keypad key as a single hexadecimal digit.
func keypadKey(digit string) (key uint8, err error) {
	if len(digit) != 1 {
		err = ErrKeypadKey
		return
	}

	v, err := strconv.ParseUint(digit, 16, 8)
	if err != nil {
		err = ErrKeypadKey
		return
	}

	key = uint8(v)
	return
}

// CpuConfig returns the machine settings for the cpu.
func (m Machine) CpuConfig() cpu.Config {
	return cpu.Config{
		StackLimit: m.StackLimit,
		ShiftQuirk: m.LegacyShiftQuirk,
		Seed:       m.Seed,
	}
}

// BindKeypad applies the keypad overrides, in keypad key order.
func (cfg *Config) BindKeypad(kp *chipio.Keypad) (err error) {
	digits := make([]string, 0, len(cfg.Keypad))
	for digit := range cfg.Keypad {
		digits = append(digits, digit)
	}
	slices.SortFunc(digits, func(a, b string) int {
		return strings.Compare(strings.ToUpper(a), strings.ToUpper(b))
	})

	for _, digit := range digits {
		var key uint8
		key, err = keypadKey(digit)
		if err != nil {
			return
		}
		err = kp.Bind(cfg.Keypad[digit], key)
		if err != nil {
			err = fmt.Errorf("keypad.%s: %w", digit, err)
			return
		}
	}

	return
}

// Write encodes the configuration as TOML.
func (cfg *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(cfg)
}
