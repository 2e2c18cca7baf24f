package host

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	ErrKeyUnknown = errors.New(f("unknown host key"))
)
