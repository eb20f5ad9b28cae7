package aseview

import (
	"fmt"
	"image/color"
	"iter"
)

// CelHeaderSize is the fixed part of a cel chunk before the type-specific body.
const CelHeaderSize = 16

// CelType represents the type of data in the cel.
type CelType WORD

const (
	CelTypeRaw CelType = iota
	CelTypeLinked
	CelTypeCompressedImage
	CelTypeCompressedTilemap
)

func (t CelType) String() string {
	switch t {
	case CelTypeRaw:
		return "Raw"
	case CelTypeLinked:
		return "Linked"
	case CelTypeCompressedImage:
		return "CompressedImage"
	case CelTypeCompressedTilemap:
		return "CompressedTilemap"
	default:
		return fmt.Sprintf("CelType(%d)", WORD(t))
	}
}

// Cel determines where to put a cel in the specified layer/frame.
//
//	0  WORD layer index   2  SHORT x   4  SHORT y   6  BYTE opacity
//	7  WORD cel type      9  SHORT z-index          11 BYTE[5] reserved
type Cel struct {
	b       []byte
	content CelContent
}

// CelContent is the type-specific body of a cel: RawImage or LinkedCel.
type CelContent interface {
	CelType() CelType
}

// ParseCel decodes a cel chunk body. Only raw and linked cels are decoded;
// any other cel type is reported with its code.
func ParseCel(data []byte, format Format) (Cel, error) {
	b, rest, err := prefix(data, CelHeaderSize, "cel")
	if err != nil {
		return Cel{}, err
	}
	c := Cel{b: b}
	switch t := CelType(word(b, 7)); t {
	case CelTypeRaw:
		raw, err := ParseRawImage(rest, format.Depth)
		if err != nil {
			return Cel{}, fmt.Errorf("cel: %w", err)
		}
		c.content = raw
	case CelTypeLinked:
		f, _, err := prefix(rest, 2, "linked cel")
		if err != nil {
			return Cel{}, fmt.Errorf("cel: %w", err)
		}
		c.content = LinkedCel{Frame: word(f, 0)}
	default:
		return Cel{}, fmt.Errorf("cel: %w", codeError(ErrUnsupportedCelType, uint32(t)))
	}
	return c, nil
}

func (c Cel) ChunkType() ChunkType { return ChunkTypeCel }

func (c Cel) LayerIndex() WORD { return word(c.b, 0) }

// Position is the cel origin on the canvas.
func (c Cel) Position() (x, y SHORT) { return short(c.b, 2), short(c.b, 4) }

func (c Cel) Opacity() BYTE { return c.b[6] }
func (c Cel) Type() CelType { return CelType(word(c.b, 7)) }

// ZIndex moves the cel relative to its layer: negative values show it that
// many layers back, positive values that many layers later.
func (c Cel) ZIndex() SHORT { return short(c.b, 9) }

func (c Cel) Content() CelContent { return c.content }

// Raw returns the pixel block of a raw cel.
func (c Cel) Raw() (RawImage, bool) {
	r, ok := c.content.(RawImage)
	return r, ok
}

// Linked returns the link of a linked cel.
func (c Cel) Linked() (LinkedCel, bool) {
	l, ok := c.content.(LinkedCel)
	return l, ok
}

// LinkedCel reuses the cel at the same layer in another frame.
type LinkedCel struct {
	Frame WORD
}

func (LinkedCel) CelType() CelType { return CelTypeLinked }

// RawImage is an uncompressed pixel block. Samples are read from the
// borrowed buffer on demand.
type RawImage struct {
	width, height int
	bpp           int
	pixels        []byte
}

// ParseRawImage reads the WORD width, WORD height header and checks that
// the pixel span holds width*height samples of the document depth.
func ParseRawImage(data []byte, depth ColorDepth) (RawImage, error) {
	bpp := depth.BytesPerPixel()
	if bpp == 0 {
		return RawImage{}, codeError(ErrUnsupportedColorDepth, uint32(depth))
	}
	h, rest, err := prefix(data, 4, "raw image")
	if err != nil {
		return RawImage{}, err
	}
	r := RawImage{width: int(word(h, 0)), height: int(word(h, 2)), bpp: bpp}
	if r.pixels, _, err = prefix(rest, r.width*r.height*bpp, "raw image pixels"); err != nil {
		return RawImage{}, err
	}
	return r, nil
}

func (RawImage) CelType() CelType { return CelTypeRaw }

func (r RawImage) Width() int  { return r.width }
func (r RawImage) Height() int { return r.height }

// BytesPerPixel is the size of one sample.
func (r RawImage) BytesPerPixel() int { return r.bpp }

// Len is the number of samples, width*height.
func (r RawImage) Len() int { return r.width * r.height }

// Data is the pixel span, row by row from the top left.
func (r RawImage) Data() []byte { return r.pixels }

// At returns the sample at (x, y), or false outside the image.
func (r RawImage) At(x, y int) (Sample, bool) {
	if x < 0 || y < 0 || x >= r.width || y >= r.height {
		return nil, false
	}
	return r.sample(y*r.width + x), true
}

func (r RawImage) sample(i int) Sample {
	off := i * r.bpp
	return Sample(r.pixels[off : off+r.bpp : off+r.bpp])
}

// Samples yields every sample with its index. Each call starts over.
func (r RawImage) Samples() iter.Seq2[int, Sample] {
	return func(yield func(int, Sample) bool) {
		for i := range r.Len() {
			if !yield(i, r.sample(i)) {
				return
			}
		}
	}
}

// Sample is one pixel as stored: 1 byte index, 2 bytes value+alpha, or
// 4 bytes RGBA, depending on the document color depth.
type Sample []byte

// Index is the palette index of an indexed sample.
func (s Sample) Index() BYTE { return s[0] }

// Gray returns the value and alpha of a grayscale sample. Indexed samples
// report full alpha.
func (s Sample) Gray() (value, alpha BYTE) {
	if len(s) < 2 {
		return s[0], 0xFF
	}
	return s[0], s[1]
}

// RGBA returns the sample as non-premultiplied color. Indexed samples have
// no color of their own and come back as an opaque gray of the index.
func (s Sample) RGBA() color.NRGBA {
	switch len(s) {
	case 4:
		return color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]}
	case 2:
		return color.NRGBA{R: s[0], G: s[0], B: s[0], A: s[1]}
	default:
		return color.NRGBA{R: s[0], G: s[0], B: s[0], A: 0xFF}
	}
}
