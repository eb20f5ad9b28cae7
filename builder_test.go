package aseview

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

const fixturePath = "testdata/anim_idle.ase"

func readFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(fixturePath)
	require.NoError(t, err)
	return data
}

// docBuilder assembles synthetic documents byte by byte.
type docBuilder struct {
	depth  ColorDepth
	flags  HeaderFlags
	frames [][]byte
}

func newDoc(depth ColorDepth) *docBuilder {
	return &docBuilder{depth: depth}
}

func (b *docBuilder) withFlags(flags HeaderFlags) *docBuilder {
	b.flags = flags
	return b
}

func (b *docBuilder) frame(durationMs WORD, chunks ...[]byte) *docBuilder {
	b.frames = append(b.frames, buildFrame(durationMs, chunks...))
	return b
}

func (b *docBuilder) rawFrame(frame []byte) *docBuilder {
	b.frames = append(b.frames, frame)
	return b
}

func (b *docBuilder) header(frameCount int, fileSize int) []byte {
	h := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(h[0:], uint32(fileSize))
	binary.LittleEndian.PutUint16(h[4:], MagicNumber)
	binary.LittleEndian.PutUint16(h[6:], uint16(frameCount))
	binary.LittleEndian.PutUint16(h[8:], 32)
	binary.LittleEndian.PutUint16(h[10:], 32)
	binary.LittleEndian.PutUint16(h[12:], uint16(b.depth))
	binary.LittleEndian.PutUint32(h[14:], uint32(b.flags))
	return h
}

func (b *docBuilder) bytes() []byte {
	size := HeaderSize
	for _, f := range b.frames {
		size += len(f)
	}
	out := b.header(len(b.frames), size)
	for _, f := range b.frames {
		out = append(out, f...)
	}
	return out
}

func buildFrame(durationMs WORD, chunks ...[]byte) []byte {
	var body []byte
	for _, c := range chunks {
		body = append(body, c...)
	}
	return frameBytes(DWORD(FrameHeaderSize+len(body)), MagicNumberFrame, WORD(len(chunks)), durationMs, DWORD(len(chunks)), body)
}

func frameBytes(size DWORD, magic, oldCount, durationMs WORD, newCount DWORD, body []byte) []byte {
	f := binary.LittleEndian.AppendUint32(nil, size)
	f = binary.LittleEndian.AppendUint16(f, magic)
	f = binary.LittleEndian.AppendUint16(f, oldCount)
	f = binary.LittleEndian.AppendUint16(f, durationMs)
	f = append(f, 0, 0)
	f = binary.LittleEndian.AppendUint32(f, newCount)
	return append(f, body...)
}

func chunkBytes(t ChunkType, payload []byte) []byte {
	c := binary.LittleEndian.AppendUint32(nil, uint32(len(payload)+ChunkHeaderSize))
	c = binary.LittleEndian.AppendUint16(c, uint16(t))
	return append(c, payload...)
}

func layerBody(flags LayerFlags, typ, level, blend WORD, opacity BYTE, name string) []byte {
	l := binary.LittleEndian.AppendUint16(nil, uint16(flags))
	l = binary.LittleEndian.AppendUint16(l, typ)
	l = binary.LittleEndian.AppendUint16(l, level)
	l = binary.LittleEndian.AppendUint16(l, 0)
	l = binary.LittleEndian.AppendUint16(l, 0)
	l = binary.LittleEndian.AppendUint16(l, blend)
	l = append(l, opacity, 0, 0, 0)
	l = binary.LittleEndian.AppendUint16(l, uint16(len(name)))
	return append(l, name...)
}

func celBody(layer WORD, x, y SHORT, opacity BYTE, celType WORD, z SHORT, body []byte) []byte {
	c := binary.LittleEndian.AppendUint16(nil, layer)
	c = binary.LittleEndian.AppendUint16(c, uint16(x))
	c = binary.LittleEndian.AppendUint16(c, uint16(y))
	c = append(c, opacity)
	c = binary.LittleEndian.AppendUint16(c, celType)
	c = binary.LittleEndian.AppendUint16(c, uint16(z))
	c = append(c, 0, 0, 0, 0, 0)
	return append(c, body...)
}

func rawBody(w, h WORD, pixels []byte) []byte {
	r := binary.LittleEndian.AppendUint16(nil, w)
	r = binary.LittleEndian.AppendUint16(r, h)
	return append(r, pixels...)
}

func linkedBody(frame WORD) []byte {
	return binary.LittleEndian.AppendUint16(nil, frame)
}
