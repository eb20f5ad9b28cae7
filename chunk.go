package aseview

import (
	"fmt"
	"iter"

	"github.com/rs/zerolog"
)

// ChunkHeaderSize is the size of the DWORD size + WORD type prefix.
const ChunkHeaderSize = 6

// ChunkType identifies the kind of a chunk.
type ChunkType WORD

const (
	ChunkTypeOldPalette   ChunkType = 0x0004
	ChunkTypeOldPalette2  ChunkType = 0x0011
	ChunkTypeLayer        ChunkType = 0x2004
	ChunkTypeCel          ChunkType = 0x2005
	ChunkTypeCelExtra     ChunkType = 0x2006
	ChunkTypeColorProfile ChunkType = 0x2007
	ChunkTypeExternal     ChunkType = 0x2008
	ChunkTypeMask         ChunkType = 0x2016
	ChunkTypePath         ChunkType = 0x2017
	ChunkTypeTags         ChunkType = 0x2018
	ChunkTypePalette      ChunkType = 0x2019
	ChunkTypeUserData     ChunkType = 0x2020
	ChunkTypeSlice        ChunkType = 0x2022
	ChunkTypeTileset      ChunkType = 0x2023
)

var chunkTypeNames = map[ChunkType]string{
	ChunkTypeOldPalette:   "OldPalette",
	ChunkTypeOldPalette2:  "OldPalette2",
	ChunkTypeLayer:        "Layer",
	ChunkTypeCel:          "Cel",
	ChunkTypeCelExtra:     "CelExtra",
	ChunkTypeColorProfile: "ColorProfile",
	ChunkTypeExternal:     "ExternalFiles",
	ChunkTypeMask:         "Mask",
	ChunkTypePath:         "Path",
	ChunkTypeTags:         "Tags",
	ChunkTypePalette:      "Palette",
	ChunkTypeUserData:     "UserData",
	ChunkTypeSlice:        "Slice",
	ChunkTypeTileset:      "Tileset",
}

func (t ChunkType) String() string {
	if name, ok := chunkTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ChunkType(0x%04X)", WORD(t))
}

// Chunk is one self-sized record inside a frame.
type Chunk struct {
	typ    ChunkType
	data   []byte
	format Format
}

// ParseChunk reads a chunk header from the start of buf and returns the
// chunk with the bytes after its declared end. The payload is exactly
// size-6 bytes whatever the chunk type, so unknown chunks are skipped the
// same way known ones are.
func ParseChunk(buf []byte, format Format) (Chunk, []byte, error) {
	h, rest, err := prefix(buf, ChunkHeaderSize, "chunk header")
	if err != nil {
		return Chunk{}, buf, err
	}
	size := int64(dword(h, 0))
	if size < ChunkHeaderSize {
		return Chunk{}, buf, fmt.Errorf("chunk: %w: declares %d bytes", ErrInvalidSize, size)
	}
	n := size - ChunkHeaderSize
	if n > int64(len(rest)) {
		return Chunk{}, buf, castError("chunk payload", int(n), len(rest))
	}
	return Chunk{
		typ:    ChunkType(word(h, 4)),
		data:   rest[:n:n],
		format: format,
	}, rest[n:], nil
}

func (c Chunk) Type() ChunkType { return c.typ }

// Size is the declared chunk size, header included.
func (c Chunk) Size() DWORD { return DWORD(len(c.data) + ChunkHeaderSize) }

// Data is the chunk payload, borrowed from the input buffer.
func (c Chunk) Data() []byte { return c.data }

// Payload decodes the chunk body.
func (c Chunk) Payload() (Payload, error) {
	return ParsePayload(c.typ, c.data, c.format)
}

// Payload is a decoded chunk body: Layer, Cel or Unknown.
type Payload interface {
	ChunkType() ChunkType
}

// Unknown is a chunk this package does not decode, kept as raw bytes.
type Unknown struct {
	Type ChunkType
	Data []byte
}

func (u Unknown) ChunkType() ChunkType { return u.Type }

// ParsePayload dispatches on the chunk type. Every type code has a result:
// unrecognised types come back as Unknown, and errors only come from a
// recognised chunk whose body is malformed or uses an unsupported variant.
func ParsePayload(t ChunkType, data []byte, format Format) (Payload, error) {
	switch t {
	case ChunkTypeLayer:
		l, err := ParseLayer(data, format)
		if err != nil {
			return nil, err
		}
		return l, nil
	case ChunkTypeCel:
		c, err := ParseCel(data, format)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return Unknown{Type: t, Data: data}, nil
	}
}

// ChunkWalker is a cursor over the chunks of one frame.
type ChunkWalker struct {
	rest      []byte
	remaining DWORD
	index     int
	format    Format
	log       zerolog.Logger
	err       error
}

// Next returns the next chunk, or false when the walk is over.
func (w *ChunkWalker) Next() (Chunk, bool) {
	if w.remaining == 0 || w.err != nil {
		return Chunk{}, false
	}
	c, rest, err := ParseChunk(w.rest, w.format)
	if err != nil {
		w.err = err
		w.log.Debug().
			Err(err).
			Int("chunk", w.index).
			Uint32("remaining", w.remaining).
			Msg("chunk walk stopped early")
		w.remaining = 0
		return Chunk{}, false
	}
	w.rest = rest
	w.remaining--
	w.index++
	return c, true
}

// Err returns the error that ended the walk, if any.
func (w *ChunkWalker) Err() error { return w.err }

// Remaining is the number of declared chunks not yet yielded.
func (w *ChunkWalker) Remaining() int { return int(w.remaining) }

// All drains the walker as a range-over-func sequence.
func (w *ChunkWalker) All() iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		for {
			c, ok := w.Next()
			if !ok || !yield(c) {
				return
			}
		}
	}
}
