package host

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	chipio "github.com/ezrec/chip8/io"
)

// hostKeys maps keypad binding names to ebiten keys.
var hostKeys = map[string]ebiten.Key{
	"0": ebiten.KeyDigit0, "1": ebiten.KeyDigit1, "2": ebiten.KeyDigit2, "3": ebiten.KeyDigit3,
	"4": ebiten.KeyDigit4, "5": ebiten.KeyDigit5, "6": ebiten.KeyDigit6, "7": ebiten.KeyDigit7,
	"8": ebiten.KeyDigit8, "9": ebiten.KeyDigit9,
	"A": ebiten.KeyA, "B": ebiten.KeyB, "C": ebiten.KeyC, "D": ebiten.KeyD,
	"E": ebiten.KeyE, "F": ebiten.KeyF, "G": ebiten.KeyG, "H": ebiten.KeyH,
	"I": ebiten.KeyI, "J": ebiten.KeyJ, "K": ebiten.KeyK, "L": ebiten.KeyL,
	"M": ebiten.KeyM, "N": ebiten.KeyN, "O": ebiten.KeyO, "P": ebiten.KeyP,
	"Q": ebiten.KeyQ, "R": ebiten.KeyR, "S": ebiten.KeyS, "T": ebiten.KeyT,
	"U": ebiten.KeyU, "V": ebiten.KeyV, "W": ebiten.KeyW, "X": ebiten.KeyX,
	"Y": ebiten.KeyY, "Z": ebiten.KeyZ,
	"UP":    ebiten.KeyArrowUp,
	"DOWN":  ebiten.KeyArrowDown,
	"LEFT":  ebiten.KeyArrowLeft,
	"RIGHT": ebiten.KeyArrowRight,
	"SPACE": ebiten.KeySpace,
	"ENTER": ebiten.KeyEnter,
	"TAB":   ebiten.KeyTab,
	"SHIFT": ebiten.KeyShift,
}

// keyPressed polls the host keyboard.
func keyPressed(name string) bool {
	key, ok := hostKeys[name]
	return ok && ebiten.IsKeyPressed(key)
}

// CheckKeypad verifies every bound host key name is known.
func CheckKeypad(kp *chipio.Keypad) (err error) {
	for _, name := range kp.Names() {
		_, ok := hostKeys[name]
		if !ok {
			err = fmt.Errorf("%v: %w", name, ErrKeyUnknown)
			return
		}
	}

	return
}
