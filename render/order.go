package render

import (
	"cmp"
	"slices"

	"github.com/retroblast-engine/aseview"
)

// placement is a cel ready to draw: the cel holding pixels and the layer
// slot and z-index of the cel that referenced it.
type placement struct {
	cel        aseview.Cel
	layerIndex int
	zIndex     int
}

// order is the stacking position of a cel: a positive z-index shows it
// that many layers later, a negative one that many layers back.
func (p placement) order() int {
	return p.layerIndex + p.zIndex
}

// sortPlacements puts cels in drawing order. Cels landing on the same
// order are drawn lower z-index first. Files without z-indexes keep
// layer order untouched.
func sortPlacements(ps []placement) {
	if !slices.ContainsFunc(ps, func(p placement) bool { return p.zIndex != 0 }) {
		return
	}
	slices.SortStableFunc(ps, func(a, b placement) int {
		if c := cmp.Compare(a.order(), b.order()); c != 0 {
			return c
		}
		return cmp.Compare(a.zIndex, b.zIndex)
	})
}

// visibleLayers reports, per layer, whether the layer and every group
// above it are visible.
func visibleLayers(layers []aseview.Layer) []bool {
	out := make([]bool, len(layers))
	var parents []bool
	for i, l := range layers {
		level := min(int(l.ChildLevel()), len(parents))
		vis := l.Flags().Has(aseview.LayerVisible)
		if level > 0 {
			vis = vis && parents[level-1]
		}
		parents = append(parents[:level], vis)
		out[i] = vis
	}
	return out
}
