package mapdef

import (
	opensimplex "github.com/ojrac/opensimplex-go"
	"github.com/zyedidia/generic/mapset"

	"github.com/Rushhhy/sim-game/internal/grid"
)

const (
	// noiseScale converts cell coordinates to noise space. Smaller values
	// give larger clumps of trees.
	noiseScale = 0.18
	// homeClearance keeps the cells around the home free of nature.
	homeClearance = 2
)

// Scatter returns a copy of doc with nature cells sprinkled over the
// boundary. density is the fraction of the noise range that becomes
// nature, so 0 adds nothing and 1 covers every eligible cell. Forbidden
// cells, corridors, fixed structure cells and the home area stay clear.
func Scatter(doc Document, seed int64, density float64) Document {
	out := doc.Clone()
	if density <= 0 {
		return out
	}
	if density > 1 {
		density = 1
	}

	reserved := mapset.New[grid.Cell]()
	for _, c := range doc.Forbidden {
		reserved.Put(c)
	}
	for _, c := range doc.Corridors {
		reserved.Put(c)
	}
	for _, fixed := range doc.Fixed {
		for _, c := range fixed.Cells {
			reserved.Put(c)
		}
	}
	existing := mapset.New[grid.Cell]()
	for _, c := range doc.Nature {
		existing.Put(c)
	}
	home := doc.HomeCell()

	noise := opensimplex.NewNormalized(seed)
	threshold := 1 - density
	for _, c := range doc.BoundaryCells() {
		if reserved.Has(c) || existing.Has(c) || c.Chebyshev(home) <= homeClearance {
			continue
		}
		if density == 1 || noise.Eval2(float64(c.X)*noiseScale, float64(c.Y)*noiseScale) >= threshold {
			out.Nature = append(out.Nature, c)
		}
	}
	return out
}
