package layout

import (
	"hash/fnv"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/matzehuels/dagedit/pkg/dag"
)

// Seeding geometry, in canvas units.
const (
	LevelGap   = 90.0 // Vertical distance between a parent and a seeded child
	SeedJitter = 45.0 // Maximum horizontal offset of a seeded node
)

// seeder places nodes that have no position yet.
type seeder struct {
	noise    opensimplex.Noise
	viewport Viewport
}

func newSeeder(seed int64, vp Viewport) *seeder {
	return &seeder{noise: opensimplex.New(seed), viewport: vp}
}

// jitter returns a deterministic offset in [-SeedJitter, SeedJitter] on both
// axes. OpenSimplex is smooth, so ids are hashed apart before sampling.
func (s *seeder) jitter(id string, slot int) dag.Point {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	v := h.Sum64()
	x := float64(v%4096)*0.173 + float64(slot)*0.71
	y := float64((v>>12)%4096)*0.173 + float64(slot)*0.37
	return dag.Point{
		X: unit(s.noise.Eval2(x, y)) * SeedJitter,
		Y: unit(s.noise.Eval2(y+101.3, x+57.9)) * SeedJitter / 3,
	}
}

func unit(v float64) float64 { return math.Max(-1, math.Min(1, v)) }

// near returns a start position for id: below parent when one is given,
// around the viewport centre otherwise. slot separates nodes seeded against
// the same anchor.
func (s *seeder) near(id string, parent *dag.Point, slot int) dag.Point {
	j := s.jitter(id, slot)
	if parent == nil {
		return s.viewport.Center().Add(j)
	}
	return parent.Add(dag.Point{X: j.X + float64(slot)*SeedJitter, Y: LevelGap + j.Y})
}
