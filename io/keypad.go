package io

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

// KEYPAD_KEYS is the number of keys on the hexadecimal keypad.
const KEYPAD_KEYS = 16

// cosmacLayout is the conventional mapping of the COSMAC VIP keypad
//
//	1 2 3 C
//	4 5 6 D
//	7 8 9 E
//	A 0 B F
//
// onto the left hand side of a QWERTY keyboard.
var cosmacLayout = map[string]uint8{
	"1": 0x1, "2": 0x2, "3": 0x3, "4": 0xc,
	"Q": 0x4, "W": 0x5, "E": 0x6, "R": 0xd,
	"A": 0x7, "S": 0x8, "D": 0x9, "F": 0xe,
	"Z": 0xa, "X": 0x0, "C": 0xb, "V": 0xf,
}

// Keypad maps host key names to keypad keys. Host key names are upper case.
type Keypad struct {
	binding map[string]uint8
}

// NewKeypad returns a keypad with the COSMAC layout.
func NewKeypad() (kp *Keypad) {
	kp = &Keypad{
		binding: maps.Clone(cosmacLayout),
	}

	return
}

// Bind binds a host key to a keypad key, replacing any other host key
// bound to it. If the host key was already bound to a different keypad key,
// the displaced host key takes that keypad key, so no key is left unbound.
func (kp *Keypad) Bind(name string, key uint8) (err error) {
	if key >= KEYPAD_KEYS {
		err = ErrKeyRange
		return
	}

	name = strings.ToUpper(strings.TrimSpace(name))
	if len(name) == 0 {
		err = ErrKeyName
		return
	}

	if kp.binding == nil {
		kp.binding = make(map[string]uint8, KEYPAD_KEYS)
	}

	previous, wasBound := kp.binding[name]

	displaced := ""
	for other, bound := range kp.binding {
		if bound == key && other != name {
			displaced = other
		}
	}

	if len(displaced) != 0 {
		delete(kp.binding, displaced)
		if wasBound {
			kp.binding[displaced] = previous
		}
	}
	kp.binding[name] = key

	return
}

// Key returns the keypad key bound to a host key.
func (kp *Keypad) Key(name string) (key uint8, ok bool) {
	key, ok = kp.binding[strings.ToUpper(name)]
	return
}

// Names returns the bound host key names, sorted.
func (kp *Keypad) Names() []string {
	return slices.Sorted(maps.Keys(kp.binding))
}

// Bindings iterates over the host key to keypad key bindings.
func (kp *Keypad) Bindings() iter.Seq2[string, uint8] {
	return maps.All(kp.binding)
}

// Latch samples the host keys, returning the state of each keypad key.
func (kp *Keypad) Latch(pressed func(name string) bool) (keys [KEYPAD_KEYS]bool) {
	for name, key := range kp.binding {
		if pressed(name) {
			keys[key] = true
		}
	}

	return
}
