// Package host runs the CHIP-8 emulator in an ebiten window.
package host

import (
	"context"
	"fmt"
	"image/color"
	"io"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/logger"
)

const (
	WINDOW_SCALE = 10 // Initial window pixels per CHIP-8 pixel.
)

// Game adapts the emulator to ebiten.Game. Update runs one frame of the
// machine per tick.
type Game struct {
	Emulator *emulator.Emulator

	Pressed func(name string) bool // Polls a host key by binding name.
	Quit    func() bool            // Polls for a quit request.

	On  color.RGBA // Colour of a lit pixel.
	Off color.RGBA // Colour of an unlit pixel.

	screen  *ebiten.Image
	pixels  []byte
	beeping bool
	err     error
}

var _ ebiten.Game = (*Game)(nil)

// NewGame creates a game polling the ebiten keyboard.
func NewGame(emu *emulator.Emulator) (g *Game) {
	g = &Game{
		Emulator: emu,
		Pressed:  keyPressed,
		Quit: func() bool {
			return inpututil.IsKeyJustPressed(ebiten.KeyEscape)
		},
		On:  color.RGBA{0xff, 0xff, 0xff, 0xff},
		Off: color.RGBA{0x00, 0x00, 0x00, 0xff},
	}

	return
}

// Err returns the error that stopped the machine, if any.
func (g *Game) Err() error {
	return g.err
}

// Update runs one frame.
func (g *Game) Update() (err error) {
	emu := g.Emulator

	if g.Quit() {
		emu.Cpu.Running = false
		err = ebiten.Termination
		return
	}

	emu.Latch(g.Pressed)

	done, err := emu.Frame()
	g.sound()
	if err != nil {
		logger.GetLogger().Error("chip8: halted", "err", err)
		g.err = err
		err = ebiten.Termination
		return
	}

	if done {
		err = ebiten.Termination
		return
	}

	return
}

// sound logs the tone starting and stopping.
func (g *Game) sound() {
	beeping := g.Emulator.Cpu.Beeping()
	if beeping == g.beeping {
		return
	}

	g.beeping = beeping
	if beeping {
		logger.GetLogger().Info("chip8: sound on", "frame", g.Emulator.Frames)
	} else {
		logger.GetLogger().Info("chip8: sound off", "frame", g.Emulator.Frames)
	}
}

// Draw repaints the framebuffer when it has changed.
func (g *Game) Draw(screen *ebiten.Image) {
	machine := g.Emulator.Cpu

	if g.screen == nil {
		g.screen = ebiten.NewImage(cpu.SCREEN_WIDTH, cpu.SCREEN_HEIGHT)
		machine.RequiresRepaint = true
	}

	if machine.RequiresRepaint {
		g.pixels = Rasterize(&machine.Screen, g.pixels, g.On, g.Off)
		g.screen.WritePixels(g.pixels)
		machine.RequiresRepaint = false
	}

	screen.DrawImage(g.screen, nil)
}

// Layout is the CHIP-8 display size; ebiten scales it to the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cpu.SCREEN_WIDTH, cpu.SCREEN_HEIGHT
}

// Rasterize converts the framebuffer to RGBA pixels, reusing pix if it is
// large enough.
func Rasterize(fb *cpu.Framebuffer, pix []byte, on, off color.RGBA) []byte {
	size := cpu.SCREEN_WIDTH * cpu.SCREEN_HEIGHT * 4
	if cap(pix) < size {
		pix = make([]byte, size)
	}
	pix = pix[:size]

	for y, row := range fb {
		for x, pixel := range row {
			c := off
			if pixel != cpu.PIXEL_OFF {
				c = on
			}
			n := (y*cpu.SCREEN_WIDTH + x) * 4
			pix[n+0] = c.R
			pix[n+1] = c.G
			pix[n+2] = c.B
			pix[n+3] = c.A
		}
	}

	return pix
}

// Run opens a window and runs the game at frameRate frames per second.
func Run(g *Game, title string, frameRate int) error {
	ebiten.SetWindowSize(cpu.SCREEN_WIDTH*WINDOW_SCALE, cpu.SCREEN_HEIGHT*WINDOW_SCALE)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(frameRate)

	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("failed to run game: %w", err)
	}

	return g.Err()
}

// RunHeadless runs frames without a window, with no keys pressed, then
// writes the framebuffer to w. Cancelling ctx stops between frames.
func RunHeadless(ctx context.Context, emu *emulator.Emulator, frames int, w io.Writer) (err error) {
	released := func(name string) bool { return false }

	for range frames {
		err = ctx.Err()
		if err != nil {
			break
		}
		emu.Latch(released)
		var done bool
		done, err = emu.Frame()
		if err != nil || done {
			break
		}
	}

	_, werr := io.WriteString(w, emu.Cpu.Screen.String())
	if err == nil {
		err = werr
	}

	return
}
