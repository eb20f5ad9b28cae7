package aseview

import "fmt"

const (
	// Magic number (0xA5E0)
	MagicNumber = 0xA5E0

	// HeaderSize is the fixed size of the file header.
	HeaderSize = 128
)

// ColorDepth is the number of bits per pixel of the whole document.
type ColorDepth WORD

const (
	ColorDepthIndexed   ColorDepth = 8
	ColorDepthGrayscale ColorDepth = 16
	ColorDepthRGBA      ColorDepth = 32
)

func (d ColorDepth) String() string {
	switch d {
	case ColorDepthRGBA:
		return "RGBA"
	case ColorDepthGrayscale:
		return "Grayscale"
	case ColorDepthIndexed:
		return "Indexed"
	default:
		return fmt.Sprintf("ColorDepth(%d)", WORD(d))
	}
}

// BytesPerPixel returns the size of one pixel sample, or 0 for an unknown depth.
func (d ColorDepth) BytesPerPixel() int {
	switch d {
	case ColorDepthRGBA:
		return 4
	case ColorDepthGrayscale:
		return 2
	case ColorDepthIndexed:
		return 1
	default:
		return 0
	}
}

// HeaderFlags is the header flag bitset. Unknown bits are preserved.
type HeaderFlags DWORD

const (
	HeaderLayerOpacityValid HeaderFlags = 1 << iota
	HeaderGroupOpacityValid
	HeaderLayerUUID
)

func (f HeaderFlags) Has(flag HeaderFlags) bool { return f&flag == flag }

// Header is a view over the 128-byte file header.
//
//	0  DWORD file size        4  WORD magic (0xA5E0)   6  WORD frames
//	8  WORD width            10  WORD height          12  WORD color depth
//	14 DWORD flags           18  WORD speed           20  DWORD[2] reserved
//	28 BYTE transparent idx  29  BYTE[3] ignored      32  WORD number of colors
//	34 BYTE pixel width      35  BYTE pixel height    36  SHORT grid x, 38 SHORT grid y
//	40 WORD grid width       42  WORD grid height     44  BYTE[84] future use
type Header struct {
	b []byte
}

// ParseHeader overlays the file header on the first HeaderSize bytes of buf
// and returns it with the bytes that follow. On failure buf is returned as is.
func ParseHeader(buf []byte) (Header, []byte, error) {
	b, rest, err := prefix(buf, HeaderSize, "header")
	if err != nil {
		return Header{}, buf, err
	}
	if magic := word(b, 4); magic != MagicNumber {
		return Header{}, buf, fmt.Errorf("header: %w", codeError(ErrInvalidMagic, uint32(magic)))
	}
	return Header{b: b}, rest, nil
}

func (h Header) FileSize() DWORD        { return dword(h.b, 0) }
func (h Header) FrameCount() WORD       { return word(h.b, 6) }
func (h Header) Width() WORD            { return word(h.b, 8) }
func (h Header) Height() WORD           { return word(h.b, 10) }
func (h Header) ColorDepth() ColorDepth { return ColorDepth(word(h.b, 12)) }
func (h Header) Flags() HeaderFlags     { return HeaderFlags(dword(h.b, 14)) }

// Speed is the deprecated global frame delay in milliseconds. Frame
// durations should be used instead.
func (h Header) Speed() WORD { return word(h.b, 18) }

// TransparentIndex is the palette entry that is transparent in all
// non-background layers. Only meaningful for indexed sprites.
func (h Header) TransparentIndex() BYTE { return h.b[28] }

// PaletteSize is the raw number-of-colors field.
func (h Header) PaletteSize() WORD { return word(h.b, 32) }

// NumColors interprets PaletteSize: 0 means 256 for old sprites.
func (h Header) NumColors() int {
	if n := h.PaletteSize(); n != 0 {
		return int(n)
	}
	return 256
}

// PixelAspect returns the raw pixel width and height fields.
func (h Header) PixelAspect() (BYTE, BYTE) { return h.b[34], h.b[35] }

// PixelRatio returns the pixel ratio, treating zero fields as square pixels.
func (h Header) PixelRatio() string {
	w, ht := h.PixelAspect()
	if w == 0 || ht == 0 {
		return "1:1"
	}
	return fmt.Sprintf("%d:%d", w, ht)
}

// GridOrigin returns the grid position.
func (h Header) GridOrigin() (SHORT, SHORT) { return short(h.b, 36), short(h.b, 38) }

// GridSize returns the grid size; zero means there is no grid.
func (h Header) GridSize() (WORD, WORD) { return word(h.b, 40), word(h.b, 42) }

// Format is the document-wide context needed to decode chunk payloads.
func (h Header) Format() Format {
	return Format{
		Depth:            h.ColorDepth(),
		Flags:            h.Flags(),
		TransparentIndex: h.TransparentIndex(),
	}
}

// Format carries the header fields that change how payloads are read.
type Format struct {
	Depth            ColorDepth
	Flags            HeaderFlags
	TransparentIndex BYTE
}
