package aseview

import (
	"fmt"
	"iter"
	"time"

	"github.com/rs/zerolog"
)

const (
	// Magic number (0xF1FA)
	MagicNumberFrame = 0xF1FA

	// FrameHeaderSize is the fixed size of a frame header.
	FrameHeaderSize = 16
)

// FrameHeader is a view over the 16-byte frame header.
//
//	0  DWORD bytes in frame   4  WORD magic (0xF1FA)   6  WORD old chunk count
//	8  WORD duration (ms)    10  BYTE[2] reserved     12  DWORD new chunk count
type FrameHeader struct {
	b []byte
}

// ParseFrameHeader overlays a frame header on the start of buf.
func ParseFrameHeader(buf []byte) (FrameHeader, []byte, error) {
	b, rest, err := prefix(buf, FrameHeaderSize, "frame header")
	if err != nil {
		return FrameHeader{}, buf, err
	}
	if magic := word(b, 4); magic != MagicNumberFrame {
		return FrameHeader{}, buf, fmt.Errorf("frame header: %w", codeError(ErrInvalidMagic, uint32(magic)))
	}
	return FrameHeader{b: b}, rest, nil
}

// ByteLength is the size of the whole frame, header included.
func (fh FrameHeader) ByteLength() DWORD { return dword(fh.b, 0) }

// OldChunkCount is the legacy 16-bit chunk count. 0xFFFF means the frame
// may hold more chunks than fit in it.
func (fh FrameHeader) OldChunkCount() WORD { return word(fh.b, 6) }

// DurationMillis is the frame duration in milliseconds.
func (fh FrameHeader) DurationMillis() WORD { return word(fh.b, 8) }

func (fh FrameHeader) Duration() time.Duration {
	return time.Duration(fh.DurationMillis()) * time.Millisecond
}

// NewChunkCount is the raw 32-bit chunk count field.
func (fh FrameHeader) NewChunkCount() DWORD { return dword(fh.b, 12) }

// ChunkCount returns the number of chunks in the frame. The 32-bit field
// wins unless it is zero, in which case old files store the count in the
// 16-bit field.
func (fh FrameHeader) ChunkCount() DWORD {
	if n := fh.NewChunkCount(); n != 0 {
		return n
	}
	if old := fh.OldChunkCount(); old != 0xFFFF {
		return DWORD(old)
	}
	return 0
}

// Frame is one animation frame: its header and the chunk region that
// follows it, up to the frame's declared end.
type Frame struct {
	FrameHeader
	Index  int
	chunks []byte
	format Format
	log    zerolog.Logger
}

// ParseFrame reads a complete frame from the start of buf and returns the
// bytes after its declared end. The frame's span comes from its own byte
// length field, never from an assumed header size.
func ParseFrame(buf []byte, format Format) (Frame, []byte, error) {
	fh, rest, err := ParseFrameHeader(buf)
	if err != nil {
		return Frame{}, buf, err
	}
	size := int64(fh.ByteLength())
	if size < FrameHeaderSize {
		return Frame{}, buf, fmt.Errorf("frame: %w: declares %d bytes", ErrInvalidSize, size)
	}
	if size > int64(len(buf)) {
		return Frame{}, buf, castError("frame", int(size), len(buf))
	}
	return Frame{
		FrameHeader: fh,
		chunks:      rest[: size-FrameHeaderSize : size-FrameHeaderSize],
		format:      format,
		log:         zerolog.Nop(),
	}, buf[size:], nil
}

// ChunkData returns the raw chunk region of the frame.
func (f Frame) ChunkData() []byte { return f.chunks }

// Chunks returns a fresh walker over the frame's chunks.
func (f Frame) Chunks() *ChunkWalker {
	return &ChunkWalker{
		rest:      f.chunks,
		remaining: f.ChunkCount(),
		format:    f.format,
		log:       f.log.With().Int("frame", f.Index).Logger(),
	}
}

// Chunk returns the chunk at index i by replaying the walker from the start.
func (f Frame) Chunk(i int) (Chunk, error) {
	if i < 0 || int64(i) >= int64(f.ChunkCount()) {
		return Chunk{}, fmt.Errorf("chunk %d of %d: %w", i, f.ChunkCount(), ErrIndexOutOfRange)
	}
	w := f.Chunks()
	for n := 0; ; n++ {
		c, ok := w.Next()
		if !ok {
			if err := w.Err(); err != nil {
				return Chunk{}, fmt.Errorf("chunk %d: %w", i, err)
			}
			return Chunk{}, fmt.Errorf("chunk %d of %d: %w", i, f.ChunkCount(), ErrIndexOutOfRange)
		}
		if n == i {
			return c, nil
		}
	}
}

// FrameWalker is a cursor over the frames of a document. It yields at most
// the declared number of frames and stops at the first frame that cannot be
// read; Err reports why.
type FrameWalker struct {
	rest      []byte
	remaining WORD
	declared  WORD
	index     int
	format    Format
	log       zerolog.Logger
	err       error
}

// Next returns the next frame, or false when the walk is over.
func (w *FrameWalker) Next() (Frame, bool) {
	if w.remaining == 0 || w.err != nil {
		return Frame{}, false
	}
	f, rest, err := ParseFrame(w.rest, w.format)
	if err != nil {
		w.err = err
		w.remaining = 0
		w.log.Debug().
			Err(err).
			Int("frame", w.index).
			Uint16("declared", w.declared).
			Msg("frame walk stopped early")
		return Frame{}, false
	}
	f.Index = w.index
	f.log = w.log
	w.rest = rest
	w.remaining--
	w.index++
	return f, true
}

// Err returns the error that ended the walk, or nil if every declared frame
// was read (or the walk is still in progress).
func (w *FrameWalker) Err() error { return w.err }

// Remaining is the number of declared frames not yet yielded.
func (w *FrameWalker) Remaining() int { return int(w.remaining) }

// All drains the walker as a range-over-func sequence.
func (w *FrameWalker) All() iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		for {
			f, ok := w.Next()
			if !ok || !yield(f) {
				return
			}
		}
	}
}
