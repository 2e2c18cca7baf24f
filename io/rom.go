package io

import (
	"fmt"
	"io"
	"io/fs"
	"iter"
	"maps"

	"github.com/ezrec/chip8/cpu"
)

// Rom is a CHIP-8 program image, loaded at cpu.PROGRAM_START.
type Rom struct {
	Name string // Source of the image, for diagnostics.
	Data []byte
}

// Defines returns an iter of defines for the image.
func (rc *Rom) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"ROM_SIZE": fmt.Sprintf("%d", len(rc.Data)),
	})
}

// Load reads an image. Images larger than cpu.PROGRAM_SIZE are rejected.
func (rc *Rom) Load(r io.Reader) (err error) {
	data, err := io.ReadAll(io.LimitReader(r, cpu.PROGRAM_SIZE+1))
	if err != nil {
		return
	}

	if len(data) > cpu.PROGRAM_SIZE {
		err = cpu.ErrRomTooLarge
		return
	}

	rc.Data = data
	return
}

// LoadFile reads an image from a file system.
func (rc *Rom) LoadFile(fsys fs.FS, name string) (err error) {
	inf, err := fsys.Open(name)
	if err != nil {
		return
	}
	defer inf.Close()

	err = rc.Load(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", name, err)
		return
	}

	rc.Name = name
	return
}

// Save writes the image.
func (rc *Rom) Save(w io.Writer) (err error) {
	_, err = w.Write(rc.Data)
	return
}
