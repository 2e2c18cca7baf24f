// Package io provides the host facing devices of the CHIP-8 machine: the
// ROM image loaded into program memory, and the mapping from host keys to
// the sixteen key hexadecimal keypad.
package io
