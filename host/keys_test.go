package host

import (
	"testing"

	"github.com/stretchr/testify/assert"

	chipio "github.com/ezrec/chip8/io"
)

func TestCheckKeypad(t *testing.T) {
	assert := assert.New(t)

	kp := chipio.NewKeypad()
	assert.NoError(CheckKeypad(kp))

	assert.NoError(kp.Bind("up", 0x2))
	assert.NoError(CheckKeypad(kp))

	assert.NoError(kp.Bind("f13", 0x8))
	assert.ErrorIs(CheckKeypad(kp), ErrKeyUnknown)
}

func TestHostKeys(t *testing.T) {
	assert := assert.New(t)

	for name := range chipio.NewKeypad().Bindings() {
		_, ok := hostKeys[name]
		assert.True(ok, name)
	}
}
