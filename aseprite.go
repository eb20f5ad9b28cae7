// Package aseview decodes Aseprite (.ase/.aseprite) files in place.
//
// Every value returned by this package is a view into the caller's buffer:
// headers, frames, chunks, layers and cels slice the input instead of
// copying it, and stay valid for as long as the buffer is kept unchanged.
// Nothing here writes to the buffer, so any number of goroutines can walk
// the same document at once.
//
// The format is described at
// https://github.com/aseprite/aseprite/blob/main/docs/ase-file-specs.md
package aseview

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Document is a decoded file header with the frame data that follows it.
type Document struct {
	Header
	frames []byte
	log    zerolog.Logger
}

// Option configures Decode.
type Option func(*Document)

// WithLogger sends walker diagnostics to logger. The default discards them.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Document) {
		d.log = logger
	}
}

// Decode reads the file header from buf. Frames are decoded lazily by the
// walkers returned from Frames.
func Decode(buf []byte, opts ...Option) (*Document, error) {
	h, rest, err := ParseHeader(buf)
	if err != nil {
		return nil, err
	}
	d := &Document{Header: h, frames: rest, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Frames returns a fresh walker over the document's frames.
func (d *Document) Frames() *FrameWalker {
	n := d.FrameCount()
	return &FrameWalker{
		rest:      d.frames,
		remaining: n,
		declared:  n,
		format:    d.Format(),
		log:       d.log,
	}
}

// Frame returns frame i by walking from the first frame.
func (d *Document) Frame(i int) (Frame, error) {
	if i < 0 || i >= int(d.FrameCount()) {
		return Frame{}, fmt.Errorf("frame %d of %d: %w", i, d.FrameCount(), ErrIndexOutOfRange)
	}
	w := d.Frames()
	for {
		f, ok := w.Next()
		if !ok {
			if err := w.Err(); err != nil {
				return Frame{}, fmt.Errorf("frame %d: %w", i, err)
			}
			return Frame{}, fmt.Errorf("frame %d: %w", i, ErrIndexOutOfRange)
		}
		if f.Index == i {
			return f, nil
		}
	}
}

// Logger returns the logger the document was decoded with.
func (d *Document) Logger() zerolog.Logger { return d.log }
