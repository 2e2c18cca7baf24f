package cpu

import (
	"strings"
)

const (
	SCREEN_WIDTH  = 64
	SCREEN_HEIGHT = 32

	PIXEL_OFF = uint32(0x000000) // Color of an unlit pixel.
	PIXEL_ON  = uint32(0xffffff) // Color of a lit pixel.
)

// Framebuffer is the monochrome display, one renderer-ready 24-bit color
// per pixel, indexed [y][x].
type Framebuffer [SCREEN_HEIGHT][SCREEN_WIDTH]uint32

// Clear turns every pixel off.
func (fb *Framebuffer) Clear() {
	for y := range fb {
		clear(fb[y][:])
	}
}

// Pixel reports if the pixel at (x, y) is lit.
func (fb *Framebuffer) Pixel(x, y int) (on bool, err error) {
	if x < 0 || x >= SCREEN_WIDTH || y < 0 || y >= SCREEN_HEIGHT {
		err = ErrAddressRange
		return
	}

	on = fb[y][x] != PIXEL_OFF
	return
}

// Toggle XORs the pixel at (x, y), and reports if a lit pixel was turned
// off.
func (fb *Framebuffer) Toggle(x, y int) (collision bool, err error) {
	collision, err = fb.Pixel(x, y)
	if err != nil {
		return
	}

	fb[y][x] ^= PIXEL_ON
	return
}

// Lit counts the lit pixels.
func (fb *Framebuffer) Lit() (count int) {
	for y := range fb {
		for _, pixel := range fb[y] {
			if pixel != PIXEL_OFF {
				count++
			}
		}
	}
	return
}

// String renders the framebuffer as text, '#' for lit pixels.
func (fb *Framebuffer) String() string {
	var sb strings.Builder

	sb.Grow((SCREEN_WIDTH + 1) * SCREEN_HEIGHT)
	for y := range fb {
		for _, pixel := range fb[y] {
			if pixel != PIXEL_OFF {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}
