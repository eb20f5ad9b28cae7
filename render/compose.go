package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"runtime"

	"github.com/retroblast-engine/aseview"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Composer flattens the layers of a document into one image per frame.
// It is safe for concurrent use once built.
type Composer struct {
	index        *CelIndex
	visible      []bool
	pal          Palette
	width        int
	height       int
	depth        aseview.ColorDepth
	transparent  int
	opacityValid bool
	log          zerolog.Logger
}

type ComposerOption func(*Composer)

// WithPalette sets the colors used for indexed documents.
func WithPalette(p Palette) ComposerOption {
	return func(c *Composer) { c.pal = p }
}

func WithLogger(logger zerolog.Logger) ComposerOption {
	return func(c *Composer) { c.log = logger }
}

// NewComposer indexes doc. Without WithPalette indexed documents use
// DefaultPalette.
func NewComposer(doc *aseview.Document, opts ...ComposerOption) (*Composer, error) {
	c := &Composer{
		pal:          DefaultPalette(),
		width:        int(doc.Width()),
		height:       int(doc.Height()),
		depth:        doc.ColorDepth(),
		transparent:  NoTransparentIndex,
		opacityValid: doc.Flags().Has(aseview.HeaderLayerOpacityValid),
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.depth == aseview.ColorDepthIndexed {
		c.transparent = int(doc.TransparentIndex())
	}

	idx, err := BuildIndex(doc, c.log)
	if err != nil {
		return nil, err
	}
	c.index = idx
	c.visible = visibleLayers(idx.Layers())
	return c, nil
}

func (c *Composer) Index() *CelIndex { return c.index }

// Frames is the number of frames that can be composed.
func (c *Composer) Frames() int { return c.index.Frames() }

// Bounds is the canvas rectangle.
func (c *Composer) Bounds() image.Rectangle { return image.Rect(0, 0, c.width, c.height) }

// Frame composes frame i onto a fresh transparent canvas.
func (c *Composer) Frame(i int) (*image.RGBA, error) {
	if i < 0 || i >= c.Frames() {
		return nil, fmt.Errorf("frame %d of %d: %w", i, c.Frames(), aseview.ErrIndexOutOfRange)
	}
	layers := c.index.Layers()

	var ps []placement
	for _, cel := range c.index.FrameCels(i) {
		li := int(cel.LayerIndex())
		if li >= len(layers) {
			c.log.Debug().Int("frame", i).Int("layer", li).Msg("cel references a missing layer")
			continue
		}
		if !c.visible[li] || layers[li].Type() == aseview.LayerTypeGroup {
			continue
		}
		target, err := c.index.Resolve(i, cel)
		if errors.Is(err, ErrSkippedTarget) {
			c.log.Warn().Err(err).Int("frame", i).Int("layer", li).Msg("skipping linked cel")
			continue
		}
		if err != nil {
			return nil, err
		}
		ps = append(ps, placement{cel: target, layerIndex: li, zIndex: int(cel.ZIndex())})
	}
	sortPlacements(ps)

	canvas := image.NewRGBA(c.Bounds())
	for _, p := range ps {
		c.draw(canvas, layers[p.layerIndex], p.cel, i)
	}
	return canvas, nil
}

func (c *Composer) draw(canvas *image.RGBA, layer aseview.Layer, cel aseview.Cel, frame int) {
	raw, ok := cel.Raw()
	if !ok || raw.Len() == 0 {
		return
	}
	if mode := layer.BlendMode(); mode != aseview.BlendNormal {
		c.log.Debug().Str("layer", layer.Name()).Stringer("blend", mode).Int("frame", frame).
			Msg("blend mode drawn as normal")
	}

	opacity := int(cel.Opacity())
	if c.opacityValid {
		opacity = opacity * int(layer.Opacity()) / 255
	}
	if opacity == 0 {
		return
	}

	transparent := c.transparent
	if layer.Flags().Has(aseview.LayerBackground) {
		transparent = NoTransparentIndex
	}
	src := CelImage(raw, c.depth, c.pal, transparent)

	x, y := cel.Position()
	r := src.Bounds().Add(image.Pt(int(x), int(y)))
	var mask image.Image
	if opacity < 255 {
		mask = image.NewUniform(color.Alpha{A: uint8(opacity)})
	}
	draw.DrawMask(canvas, r, src, image.Point{}, mask, image.Point{}, draw.Over)
}

// ComposeAll composes every frame, spreading the work over GOMAXPROCS
// goroutines.
func ComposeAll(ctx context.Context, c *Composer) ([]*image.RGBA, error) {
	out := make([]*image.RGBA, c.Frames())
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range out {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := c.Frame(i)
			if err != nil {
				return err
			}
			out[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
