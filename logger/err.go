package logger

import (
	"github.com/ezrec/chip8/translate"
)

var f = translate.From

// ErrLevel is an unrecognized log level name.
type ErrLevel string

func (err ErrLevel) Error() string {
	return f("invalid log level: %s", string(err))
}
