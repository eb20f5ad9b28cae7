package render

import (
	"image"
	"image/color"

	"github.com/retroblast-engine/aseview"
)

// NoTransparentIndex disables the indexed transparent color.
const NoTransparentIndex = -1

// CelImage converts raw cel pixels to an RGBA image. Indexed samples are
// looked up in pal; the sample equal to transparent (when >= 0) is left
// clear.
func CelImage(raw aseview.RawImage, depth aseview.ColorDepth, pal Palette, transparent int) *image.RGBA {
	w := raw.Width()
	img := image.NewRGBA(image.Rect(0, 0, w, raw.Height()))
	for i, s := range raw.Samples() {
		var c color.RGBA
		switch depth {
		case aseview.ColorDepthIndexed:
			idx := s.Index()
			if int(idx) == transparent {
				continue
			}
			c = pal.At(idx)
		default:
			c = color.RGBAModel.Convert(s.RGBA()).(color.RGBA)
		}
		img.SetRGBA(i%w, i/w, c)
	}
	return img
}
