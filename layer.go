package aseview

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// LayerHeaderSize is the fixed part of a layer chunk before the name.
const LayerHeaderSize = 16

// LayerFlags is the layer flag bitset. Bits this package does not know
// about are kept as they are.
type LayerFlags WORD

const (
	LayerVisible LayerFlags = 1 << iota
	LayerEditable
	LayerLockMovement
	LayerBackground
	LayerPreferLinkedCels
	LayerDisplayCollapsed
	LayerReference
)

var layerFlagNames = []string{
	"Visible", "Editable", "LockMovement", "Background",
	"PreferLinkedCels", "DisplayCollapsed", "Reference",
}

func (f LayerFlags) Has(flag LayerFlags) bool { return f&flag == flag }

func (f LayerFlags) String() string {
	var names []string
	for i, name := range layerFlagNames {
		if f&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	if rest := f &^ (1<<len(layerFlagNames) - 1); rest != 0 {
		names = append(names, fmt.Sprintf("0x%X", WORD(rest)))
	}
	if len(names) == 0 {
		return "0"
	}
	return strings.Join(names, "|")
}

// LayerType is the kind of layer.
type LayerType WORD

const (
	LayerTypeNormal LayerType = iota
	LayerTypeGroup
	LayerTypeTilemap
)

func (t LayerType) String() string {
	switch t {
	case LayerTypeNormal:
		return "Normal"
	case LayerTypeGroup:
		return "Group"
	case LayerTypeTilemap:
		return "Tilemap"
	default:
		return fmt.Sprintf("LayerType(%d)", WORD(t))
	}
}

// ParseLayerType rejects codes outside the known layer types.
func ParseLayerType(code WORD) (LayerType, error) {
	if code > WORD(LayerTypeTilemap) {
		return 0, codeError(ErrUnsupportedLayerType, uint32(code))
	}
	return LayerType(code), nil
}

// BlendMode is the layer blend mode.
type BlendMode WORD

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColorDodge
	BlendColorBurn
	BlendHardLight
	BlendSoftLight
	BlendDifference
	BlendExclusion
	BlendHue
	BlendSaturation
	BlendColor
	BlendLuminosity
	BlendAddition
	BlendSubtract
	BlendDivide
)

var blendModeNames = [...]string{
	"Normal", "Multiply", "Screen", "Overlay", "Darken", "Lighten",
	"ColorDodge", "ColorBurn", "HardLight", "SoftLight", "Difference",
	"Exclusion", "Hue", "Saturation", "Color", "Luminosity",
	"Addition", "Subtract", "Divide",
}

func (m BlendMode) String() string {
	if int(m) < len(blendModeNames) {
		return blendModeNames[m]
	}
	return fmt.Sprintf("BlendMode(%d)", WORD(m))
}

// ParseBlendMode rejects codes outside the 19 defined blend modes.
func ParseBlendMode(code WORD) (BlendMode, error) {
	if int(code) >= len(blendModeNames) {
		return 0, codeError(ErrUnsupportedBlendMode, uint32(code))
	}
	return BlendMode(code), nil
}

// Layer is a view over a layer chunk body.
//
//	0  WORD flags         2  WORD layer type     4  WORD child level
//	6  WORD width (ign.)  8  WORD height (ign.)  10 WORD blend mode
//	12 BYTE opacity       13 BYTE[3] reserved    16 STRING name
//	+  DWORD tileset index (tilemap layers only)
//	+  UUID (when the header says layers have one)
type Layer struct {
	b       []byte
	name    []byte
	typ     LayerType
	blend   BlendMode
	tileset []byte
	id      []byte
}

// ParseLayer decodes a layer chunk body. The type and blend mode codes are
// validated here, so accessors never see an unknown value.
func ParseLayer(data []byte, format Format) (Layer, error) {
	b, rest, err := prefix(data, LayerHeaderSize, "layer")
	if err != nil {
		return Layer{}, err
	}
	l := Layer{b: b}
	if l.typ, err = ParseLayerType(word(b, 2)); err != nil {
		return Layer{}, fmt.Errorf("layer: %w", err)
	}
	if l.blend, err = ParseBlendMode(word(b, 10)); err != nil {
		return Layer{}, fmt.Errorf("layer: %w", err)
	}

	n, rest, err := prefix(rest, 2, "layer name length")
	if err != nil {
		return Layer{}, err
	}
	if l.name, rest, err = prefix(rest, int(word(n, 0)), "layer name"); err != nil {
		return Layer{}, err
	}
	if !utf8.Valid(l.name) {
		return Layer{}, ErrInvalidUTF8Name
	}

	if l.typ == LayerTypeTilemap {
		if l.tileset, rest, err = prefix(rest, 4, "layer tileset index"); err != nil {
			return Layer{}, err
		}
	}
	if format.Flags.Has(HeaderLayerUUID) {
		if l.id, _, err = prefix(rest, 16, "layer uuid"); err != nil {
			return Layer{}, err
		}
	}
	return l, nil
}

func (l Layer) ChunkType() ChunkType { return ChunkTypeLayer }

func (l Layer) Flags() LayerFlags { return LayerFlags(word(l.b, 0)) }
func (l Layer) Type() LayerType   { return l.typ }

// ChildLevel is the nesting depth relative to the previous layer.
func (l Layer) ChildLevel() WORD { return word(l.b, 4) }

func (l Layer) BlendMode() BlendMode { return l.blend }

// Opacity is only meaningful when the header flags say layer opacity is valid.
func (l Layer) Opacity() BYTE { return l.b[12] }

// Name returns the layer name as a string. NameBytes avoids the copy.
func (l Layer) Name() string { return string(l.name) }

func (l Layer) NameBytes() []byte { return l.name }

// TilesetIndex returns the tileset used by a tilemap layer.
func (l Layer) TilesetIndex() (DWORD, bool) {
	if l.tileset == nil {
		return 0, false
	}
	return dword(l.tileset, 0), true
}

// UUID returns the layer identifier written by files that carry one.
func (l Layer) UUID() (uuid.UUID, bool) {
	if l.id == nil {
		return uuid.Nil, false
	}
	id, err := uuid.FromBytes(l.id)
	return id, err == nil
}
