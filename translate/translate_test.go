package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("stack full", From("stack full"))
	assert.Equal("bad opcode 0x00ff", From("bad opcode 0x%04x", 0xff))
}
