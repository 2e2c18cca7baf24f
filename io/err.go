package io

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	// Keypad errors
	ErrKeyRange = errors.New(f("keypad key out of range"))
	ErrKeyName  = errors.New(f("keypad host key name empty"))
)
