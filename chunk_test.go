package aseview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkWalkerFixtureFrameOne(t *testing.T) {
	doc, err := Decode(readFixture(t))
	require.NoError(t, err)
	f, err := doc.Frame(0)
	require.NoError(t, err)

	var types []ChunkType
	var sizes []DWORD
	w := f.Chunks()
	for c := range w.All() {
		types = append(types, c.Type())
		sizes = append(sizes, c.Size())
	}
	require.NoError(t, w.Err())

	assert.Equal(t, []ChunkType{
		ChunkTypeOldPalette,
		ChunkTypePalette,
		ChunkTypeColorProfile,
		ChunkTypeTags,
		ChunkTypeLayer,
		ChunkTypeCel,
	}, types)
	assert.Equal(t, []DWORD{19, 44, 22, 39, 31, 346}, sizes)
}

func TestChunkWalkerSkipsUnknownTypes(t *testing.T) {
	chunks := [][]byte{
		chunkBytes(0x1234, []byte{9, 9, 9, 9}),
		chunkBytes(ChunkTypeLayer, layerBody(LayerVisible, 0, 0, 0, 255, "bg")),
		chunkBytes(0xFFFF, nil),
		chunkBytes(ChunkTypeCel, celBody(0, 1, 2, 255, 0, 0, rawBody(2, 1, []byte{1, 2}))),
		chunkBytes(ChunkTypeSlice, make([]byte, 37)),
		chunkBytes(ChunkTypeLayer, layerBody(LayerVisible, 1, 0, 0, 255, "group")),
	}
	buf := newDoc(ColorDepthIndexed).frame(100, chunks...).bytes()

	doc, err := Decode(buf)
	require.NoError(t, err)
	f, err := doc.Frame(0)
	require.NoError(t, err)

	wantTypes := []ChunkType{0x1234, ChunkTypeLayer, 0xFFFF, ChunkTypeCel, ChunkTypeSlice, ChunkTypeLayer}
	var (
		got    []ChunkType
		offset int
	)
	region := f.ChunkData()
	for c := range f.Chunks().All() {
		// Each chunk's payload starts right after its own 6-byte header,
		// and the cursor moves by exactly the declared size.
		require.Same(t, &region[offset+ChunkHeaderSize], firstByte(c.Data(), region, offset+ChunkHeaderSize))
		assert.Equal(t, len(chunks[len(got)]), int(c.Size()))
		offset += int(c.Size())
		got = append(got, c.Type())

		p, err := c.Payload()
		require.NoError(t, err)
		assert.Equal(t, c.Type(), p.ChunkType())
	}
	assert.Equal(t, wantTypes, got)
	assert.Equal(t, len(region), offset)
}

// firstByte returns the address of the first payload byte, or the address
// the payload would start at when it is empty.
func firstByte(data, region []byte, off int) *byte {
	if len(data) == 0 {
		return &region[off]
	}
	return &data[0]
}

func TestChunkWalkerStopsOnUndersizedChunk(t *testing.T) {
	bad := []byte{3, 0, 0, 0, 0x04, 0x20} // declares 3 bytes
	buf := newDoc(ColorDepthIndexed).frame(100,
		chunkBytes(0x0001, []byte{1}),
		bad,
		chunkBytes(0x0002, []byte{2}),
	).bytes()

	doc, err := Decode(buf)
	require.NoError(t, err)
	f, err := doc.Frame(0)
	require.NoError(t, err)

	w := f.Chunks()
	n := 0
	for range w.All() {
		n++
	}
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, w.Err(), ErrInvalidSize)
}

func TestChunkWalkerStopsOnOverlongChunk(t *testing.T) {
	long := chunkBytes(0x0001, []byte{1, 2, 3})
	long[0] = 200
	buf := newDoc(ColorDepthIndexed).frame(100, chunkBytes(0x0002, nil), long).bytes()

	doc, err := Decode(buf)
	require.NoError(t, err)
	f, err := doc.Frame(0)
	require.NoError(t, err)

	w := f.Chunks()
	var got []ChunkType
	for c := range w.All() {
		got = append(got, c.Type())
	}
	assert.Equal(t, []ChunkType{0x0002}, got)
	assert.ErrorIs(t, w.Err(), ErrCast)
}

func TestChunkWalkerDeclaredCountExceedsRegion(t *testing.T) {
	body := append(chunkBytes(0x0001, nil), chunkBytes(0x0002, nil)...)
	frame := frameBytes(DWORD(FrameHeaderSize+len(body)), MagicNumberFrame, 5, 100, 5, body)
	buf := newDoc(ColorDepthIndexed).rawFrame(frame).bytes()

	doc, err := Decode(buf)
	require.NoError(t, err)
	f, err := doc.Frame(0)
	require.NoError(t, err)

	w := f.Chunks()
	n := 0
	for range w.All() {
		n++
	}
	assert.Equal(t, 2, n)
	assert.Less(t, n, int(f.ChunkCount()))
	assert.ErrorIs(t, w.Err(), ErrCast)
}

func TestChunkWalkerStopsAtDeclaredCount(t *testing.T) {
	// Chunk count says one chunk even though two are present.
	body := append(chunkBytes(0x0001, nil), chunkBytes(0x0002, nil)...)
	frame := frameBytes(DWORD(FrameHeaderSize+len(body)), MagicNumberFrame, 1, 100, 1, body)
	buf := newDoc(ColorDepthIndexed).rawFrame(frame).bytes()

	doc, err := Decode(buf)
	require.NoError(t, err)
	f, err := doc.Frame(0)
	require.NoError(t, err)

	w := f.Chunks()
	n := 0
	for range w.All() {
		n++
	}
	assert.Equal(t, 1, n)
	assert.NoError(t, w.Err())
}

func TestFrameChunkRandomAccess(t *testing.T) {
	doc, err := Decode(readFixture(t))
	require.NoError(t, err)
	f, err := doc.Frame(0)
	require.NoError(t, err)

	tests := []struct {
		index int
		want  ChunkType
	}{
		{0, ChunkTypeOldPalette},
		{1, ChunkTypePalette},
		{4, ChunkTypeLayer},
		{5, ChunkTypeCel},
	}
	for _, tt := range tests {
		c, err := f.Chunk(tt.index)
		require.NoError(t, err)
		assert.Equal(t, tt.want, c.Type(), "index %d", tt.index)
	}

	for _, i := range []int{-1, 6, 100} {
		_, err := f.Chunk(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", i)
	}
}

func TestFrameChunkRandomAccessTruncated(t *testing.T) {
	body := chunkBytes(0x0001, nil)
	frame := frameBytes(DWORD(FrameHeaderSize+len(body)), MagicNumberFrame, 3, 100, 3, body)
	buf := newDoc(ColorDepthIndexed).rawFrame(frame).bytes()

	doc, err := Decode(buf)
	require.NoError(t, err)
	f, err := doc.Frame(0)
	require.NoError(t, err)

	_, err = f.Chunk(0)
	require.NoError(t, err)
	_, err = f.Chunk(2)
	assert.ErrorIs(t, err, ErrCast)
}

func TestParsePayloadUnknownPassthrough(t *testing.T) {
	data := []byte{1, 2, 3}
	for _, typ := range []ChunkType{0x0000, ChunkTypeOldPalette, ChunkTypePalette, ChunkTypeTags, ChunkTypeTileset, 0xFFFF} {
		p, err := ParsePayload(typ, data, Format{Depth: ColorDepthIndexed})
		require.NoError(t, err)
		u, ok := p.(Unknown)
		require.True(t, ok, "type %v", typ)
		assert.Equal(t, typ, u.Type)
		assert.Equal(t, data, u.Data)
	}
}

func TestParsePayloadKnownTypes(t *testing.T) {
	format := Format{Depth: ColorDepthIndexed}

	p, err := ParsePayload(ChunkTypeLayer, layerBody(LayerVisible, 0, 0, 0, 255, "a"), format)
	require.NoError(t, err)
	assert.IsType(t, Layer{}, p)

	p, err = ParsePayload(ChunkTypeCel, celBody(0, 0, 0, 255, 1, 0, linkedBody(3)), format)
	require.NoError(t, err)
	assert.IsType(t, Cel{}, p)

	_, err = ParsePayload(ChunkTypeCel, celBody(0, 0, 0, 255, 7, 0, nil), format)
	assert.ErrorIs(t, err, ErrUnsupportedCelType)
}

func TestChunkTypeString(t *testing.T) {
	assert.Equal(t, "Layer", ChunkTypeLayer.String())
	assert.Equal(t, "Cel", ChunkTypeCel.String())
	assert.Equal(t, "ChunkType(0xBEEF)", ChunkType(0xBEEF).String())
}
