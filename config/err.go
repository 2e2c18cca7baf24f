package config

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	ErrUnknownKey = errors.New(f("unknown configuration key"))
	ErrValueRange = errors.New(f("value out of range"))
	ErrKeypadKey  = errors.New(f("keypad key is not a hexadecimal digit"))
)
