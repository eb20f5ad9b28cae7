package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/retroblast-engine/aseview"
	"github.com/rs/zerolog"
	"github.com/tidwall/btree"
)

// ErrSkippedTarget is returned by Resolve when a linked cel points at a cel
// that was skipped because its type cannot be decoded.
var ErrSkippedTarget = errors.New("linked cel target was skipped")

// CelIndex holds every layer and decodable cel of a document, with cels
// ordered by (frame, layer).
type CelIndex struct {
	layers    []aseview.Layer
	cels      *btree.BTreeG[celEntry]
	skipped   map[uint32]struct{}
	durations []time.Duration
}

type celEntry struct {
	key uint32
	cel aseview.Cel
}

func celKey(frame, layer int) uint32 {
	return uint32(frame)<<16 | uint32(layer)&0xFFFF
}

func newCelTree() *btree.BTreeG[celEntry] {
	less := func(a, b celEntry) bool { return a.key < b.key }
	return btree.NewBTreeGOptions(less, btree.Options{NoLocks: false})
}

// BuildIndex walks the whole document once. Frames after a truncation
// point are dropped with a warning; cels of an unsupported type are
// skipped. Any other payload error is returned.
func BuildIndex(doc *aseview.Document, log zerolog.Logger) (*CelIndex, error) {
	idx := &CelIndex{cels: newCelTree(), skipped: make(map[uint32]struct{})}
	frames := doc.Frames()
	for f := range frames.All() {
		idx.durations = append(idx.durations, f.Duration())

		chunks := f.Chunks()
		for c := range chunks.All() {
			if c.Type() != aseview.ChunkTypeLayer && c.Type() != aseview.ChunkTypeCel {
				continue
			}
			p, err := c.Payload()
			if errors.Is(err, aseview.ErrUnsupportedCelType) {
				// The layer index is the first field of every cel.
				if data := c.Data(); len(data) >= 2 {
					layer := int(binary.LittleEndian.Uint16(data))
					idx.skipped[celKey(f.Index, layer)] = struct{}{}
				}
				log.Warn().Err(err).Int("frame", f.Index).Msg("skipping cel")
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", f.Index, err)
			}
			switch p := p.(type) {
			case aseview.Layer:
				idx.layers = append(idx.layers, p)
			case aseview.Cel:
				idx.cels.Set(celEntry{key: celKey(f.Index, int(p.LayerIndex())), cel: p})
			}
		}
		if err := chunks.Err(); err != nil {
			log.Warn().Err(err).Int("frame", f.Index).Msg("frame chunks truncated")
		}
	}
	if err := frames.Err(); err != nil {
		log.Warn().Err(err).Int("frames", len(idx.durations)).Msg("document truncated")
	}
	return idx, nil
}

// Frames is the number of frames that could be read.
func (x *CelIndex) Frames() int { return len(x.durations) }

// Durations returns the display time of each readable frame.
func (x *CelIndex) Durations() []time.Duration { return x.durations }

// Layers returns the layers in document order.
func (x *CelIndex) Layers() []aseview.Layer { return x.layers }

// Len is the number of indexed cels.
func (x *CelIndex) Len() int { return x.cels.Len() }

// Cel returns the cel stored for a layer in a frame.
func (x *CelIndex) Cel(frame, layer int) (aseview.Cel, bool) {
	if frame < 0 || layer < 0 || layer > 0xFFFF {
		return aseview.Cel{}, false
	}
	e, ok := x.cels.Get(celEntry{key: celKey(frame, layer)})
	return e.cel, ok
}

// Skipped reports whether the cel for a layer in a frame was dropped
// because its type cannot be decoded.
func (x *CelIndex) Skipped(frame, layer int) bool {
	if frame < 0 || layer < 0 || layer > 0xFFFF {
		return false
	}
	_, ok := x.skipped[celKey(frame, layer)]
	return ok
}

// FrameCels returns the cels of a frame in layer order.
func (x *CelIndex) FrameCels(frame int) []aseview.Cel {
	if frame < 0 {
		return nil
	}
	var out []aseview.Cel
	x.cels.Ascend(celEntry{key: celKey(frame, 0)}, func(e celEntry) bool {
		if int(e.key>>16) != frame {
			return false
		}
		out = append(out, e.cel)
		return true
	})
	return out
}

// Resolve follows linked cels to the cel holding pixels. The returned cel
// is the link target, so its position and opacity apply.
func (x *CelIndex) Resolve(frame int, cel aseview.Cel) (aseview.Cel, error) {
	layer := int(cel.LayerIndex())
	for hops := 0; ; hops++ {
		link, ok := cel.Linked()
		if !ok {
			return cel, nil
		}
		if hops > x.Frames() {
			return aseview.Cel{}, fmt.Errorf("layer %d frame %d: linked cel cycle", layer, frame)
		}
		target, ok := x.Cel(int(link.Frame), layer)
		if !ok && x.Skipped(int(link.Frame), layer) {
			return aseview.Cel{}, fmt.Errorf("layer %d frame %d: linked frame %d: %w", layer, frame, link.Frame, ErrSkippedTarget)
		}
		if !ok {
			return aseview.Cel{}, fmt.Errorf("layer %d frame %d: linked frame %d has no cel", layer, frame, link.Frame)
		}
		frame, cel = int(link.Frame), target
	}
}
