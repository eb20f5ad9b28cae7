// Package ebitenview plays composed Aseprite frames in an ebiten window.
package ebitenview

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroblast-engine/aseview/render"
)

// Sprites holds every frame of an animation as GPU images.
type Sprites struct {
	Current *ebiten.Image
	All     []*ebiten.Image
}

// NewSprites uploads frames. Current starts at the first frame.
func NewSprites[T image.Image](frames []T) Sprites {
	var s Sprites
	for _, f := range frames {
		s.All = append(s.All, ebiten.NewImageFromImage(f))
	}
	if len(s.All) > 0 {
		s.Current = s.All[0]
	}
	return s
}

// Viewer is an ebiten.Game looping over a sprite's frames. Space pauses,
// the arrow keys step while paused and Escape quits.
type Viewer struct {
	sprites Sprites
	anim    *render.Animation
	scale   int
	size    image.Point
	paused  bool
	now     func() time.Time
}

func NewViewer(sprites Sprites, durations []time.Duration, scale int) (*Viewer, error) {
	if len(sprites.All) == 0 {
		return nil, errors.New("no frames to show")
	}
	if len(durations) != len(sprites.All) {
		return nil, fmt.Errorf("%d frames but %d durations", len(sprites.All), len(durations))
	}
	if scale < 1 {
		scale = 1
	}
	return &Viewer{
		sprites: sprites,
		anim:    render.NewAnimation(durations, time.Now()),
		scale:   scale,
		size:    sprites.All[0].Bounds().Size(),
		now:     time.Now,
	}, nil
}

func (v *Viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.paused = !v.paused
		// Resume from a fresh timestamp so the paused span is not replayed.
		v.anim.LastChange = v.now()
	}

	if v.paused {
		switch {
		case inpututil.IsKeyJustPressed(ebiten.KeyRight):
			v.step(1)
		case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
			v.step(-1)
		}
		return nil
	}
	if v.anim.Advance(v.now()) {
		v.sprites.Current = v.sprites.All[v.anim.Index]
	}
	return nil
}

func (v *Viewer) step(delta int) {
	n := v.anim.TotalFrames
	v.anim.Index = ((v.anim.Index+delta)%n + n) % n
	v.sprites.Current = v.sprites.All[v.anim.Index]
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(v.scale), float64(v.scale))
	screen.DrawImage(v.sprites.Current, op)
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.size.X * v.scale, v.size.Y * v.scale
}

// Run opens a window sized to the scaled sprite and blocks until it is
// closed.
func Run(v *Viewer, title string) error {
	w, h := v.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(title)
	if err := ebiten.RunGame(v); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
