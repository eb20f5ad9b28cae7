package render

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/retroblast-engine/aseview"
	"github.com/stretchr/testify/require"
)

func fixtureBytes(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("../testdata/anim_idle.ase")
	require.NoError(t, err)
	return data
}

func readFixture(t *testing.T) *aseview.Document {
	t.Helper()
	doc, err := aseview.Decode(fixtureBytes(t))
	require.NoError(t, err)
	return doc
}

// sprite assembles small synthetic documents for composition tests.
type sprite struct {
	w, h        uint16
	depth       aseview.ColorDepth
	flags       aseview.HeaderFlags
	transparent byte
	frames      [][]byte
}

func newSprite(w, h uint16, depth aseview.ColorDepth) *sprite {
	return &sprite{w: w, h: h, depth: depth, flags: aseview.HeaderLayerOpacityValid}
}

func (s *sprite) frame(ms uint16, chunks ...[]byte) *sprite {
	var body []byte
	for _, c := range chunks {
		body = append(body, c...)
	}
	f := binary.LittleEndian.AppendUint32(nil, uint32(aseview.FrameHeaderSize+len(body)))
	f = binary.LittleEndian.AppendUint16(f, aseview.MagicNumberFrame)
	f = binary.LittleEndian.AppendUint16(f, uint16(len(chunks)))
	f = binary.LittleEndian.AppendUint16(f, ms)
	f = append(f, 0, 0)
	f = binary.LittleEndian.AppendUint32(f, uint32(len(chunks)))
	s.frames = append(s.frames, append(f, body...))
	return s
}

func (s *sprite) decode(t *testing.T) *aseview.Document {
	t.Helper()
	h := make([]byte, aseview.HeaderSize)
	binary.LittleEndian.PutUint16(h[4:], aseview.MagicNumber)
	binary.LittleEndian.PutUint16(h[6:], uint16(len(s.frames)))
	binary.LittleEndian.PutUint16(h[8:], s.w)
	binary.LittleEndian.PutUint16(h[10:], s.h)
	binary.LittleEndian.PutUint16(h[12:], uint16(s.depth))
	binary.LittleEndian.PutUint32(h[14:], uint32(s.flags))
	h[28] = s.transparent
	for _, f := range s.frames {
		h = append(h, f...)
	}
	binary.LittleEndian.PutUint32(h[0:], uint32(len(h)))

	doc, err := aseview.Decode(h)
	require.NoError(t, err)
	return doc
}

func chunk(t aseview.ChunkType, payload []byte) []byte {
	c := binary.LittleEndian.AppendUint32(nil, uint32(len(payload)+aseview.ChunkHeaderSize))
	c = binary.LittleEndian.AppendUint16(c, uint16(t))
	return append(c, payload...)
}

func layer(flags aseview.LayerFlags, typ aseview.LayerType, level uint16, opacity byte, name string) []byte {
	l := binary.LittleEndian.AppendUint16(nil, uint16(flags))
	l = binary.LittleEndian.AppendUint16(l, uint16(typ))
	l = binary.LittleEndian.AppendUint16(l, level)
	l = append(l, 0, 0, 0, 0, 0, 0) // default width/height, blend mode normal
	l = append(l, opacity, 0, 0, 0)
	l = binary.LittleEndian.AppendUint16(l, uint16(len(name)))
	return chunk(aseview.ChunkTypeLayer, append(l, name...))
}

func celHeader(layer uint16, x, y int16, opacity byte, typ aseview.CelType, z int16) []byte {
	c := binary.LittleEndian.AppendUint16(nil, layer)
	c = binary.LittleEndian.AppendUint16(c, uint16(x))
	c = binary.LittleEndian.AppendUint16(c, uint16(y))
	c = append(c, opacity)
	c = binary.LittleEndian.AppendUint16(c, uint16(typ))
	c = binary.LittleEndian.AppendUint16(c, uint16(z))
	return append(c, 0, 0, 0, 0, 0)
}

func rawCel(layer uint16, x, y int16, opacity byte, z int16, w, h uint16, pixels ...byte) []byte {
	c := celHeader(layer, x, y, opacity, aseview.CelTypeRaw, z)
	c = binary.LittleEndian.AppendUint16(c, w)
	c = binary.LittleEndian.AppendUint16(c, h)
	return chunk(aseview.ChunkTypeCel, append(c, pixels...))
}

func linkedCel(layer uint16, frame uint16) []byte {
	c := celHeader(layer, 0, 0, 255, aseview.CelTypeLinked, 0)
	return chunk(aseview.ChunkTypeCel, binary.LittleEndian.AppendUint16(c, frame))
}
