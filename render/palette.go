package render

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"
)

// Palette maps indexed samples to colors.
type Palette []color.RGBA

// DefaultPalette is a three-entry ramp for sprites drawn with indexes 0-2:
// transparent, dark outline and white fill.
func DefaultPalette() Palette {
	return Palette{
		{},
		{R: 22, G: 18, B: 54, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
	}
}

// At returns entry i, or transparent black outside the palette.
func (p Palette) At(i uint8) color.RGBA {
	if int(i) >= len(p) {
		return color.RGBA{}
	}
	return p[i]
}

// ParsePalette reads a comma separated list of #rrggbb or #rrggbbaa colors.
// The word "transparent" stands for a fully transparent entry. An opaque
// pure black entry is treated as transparent when blackIsClear is set,
// which is how palettes exported without alpha mark the background.
func ParsePalette(s string, blackIsClear bool) (Palette, error) {
	var p Palette
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if strings.EqualFold(field, "transparent") {
			p = append(p, color.RGBA{})
			continue
		}
		c, err := parseHex(field)
		if err != nil {
			return nil, err
		}
		if blackIsClear && c.R == 0 && c.G == 0 && c.B == 0 {
			c.A = 0
		}
		p = append(p, c)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("palette %q has no colors", s)
	}
	if len(p) > 256 {
		return nil, fmt.Errorf("palette has %d colors, at most 256 are addressable", len(p))
	}
	return p, nil
}

func parseHex(s string) (color.RGBA, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	switch len(raw) {
	case 3:
		return color.RGBA{R: raw[0], G: raw[1], B: raw[2], A: 255}, nil
	case 4:
		// Stored premultiplied so the palette can feed image.RGBA directly.
		c := color.NRGBA{R: raw[0], G: raw[1], B: raw[2], A: raw[3]}
		return color.RGBAModel.Convert(c).(color.RGBA), nil
	default:
		return color.RGBA{}, fmt.Errorf("invalid color %q: want #rrggbb or #rrggbbaa", s)
	}
}
