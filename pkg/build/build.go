// Package build turns tray settings into printable parts and kernel solids.
package build

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/chazu/lostmodeler/pkg/kernel"
	"github.com/chazu/lostmodeler/pkg/splitter"
	"github.com/chazu/lostmodeler/pkg/tray"
)

// BaseName is the file stem for every part.
const BaseName = "tray"

// overshoot extends cutting tools past the faces they open so that the
// boolean never leaves a zero-thickness skin.
const overshoot = 1.0

// roundSegments is the facet count for round pockets on mesh kernels.
const roundSegments = 48

// Part is one printable piece of a tray.
type Part struct {
	Name     string        `json:"name"`
	Index    int           `json:"index"` // 1-based
	Extents  tray.Extents  `json:"extents"`
	Settings tray.Settings `json:"-"`
}

// Plan names the parts of a split result and gives each one a copy of s
// resized to its extents. Compartments that do not fit a part are dropped
// from it.
func Plan(s tray.Settings, res splitter.Result) []Part {
	parts := make([]Part, 0, len(res.Parts))
	for i, ext := range res.Parts {
		name := BaseName
		if len(res.Parts) > 1 {
			name = fmt.Sprintf("%s_part%d", BaseName, i+1)
		}
		ps := s.WithExtents(ext)
		ps.Compartments = lo.Filter(ps.Compartments, func(c tray.Compartment, _ int) bool {
			return c.FitsIn(ext)
		})
		parts = append(parts, Part{Name: name, Index: i + 1, Extents: ext, Settings: ps})
	}
	return parts
}

// Single plans s as one unsplit part.
func Single(s tray.Settings) []Part {
	return Plan(s, splitter.Result{Parts: []tray.Extents{s.Extents()}})
}

// Solid builds the solid for p: the outer box minus its pockets, minus the
// honeycomb cutout when enabled.
func Solid(k kernel.SolidBuilder, p Part) (kernel.Solid, error) {
	s := p.Settings
	e := p.Extents
	if !e.Positive() {
		return nil, fmt.Errorf("part %s: dimensions must be positive", p.Name)
	}
	if s.Wall <= 0 || 2*s.Wall >= e.Length || 2*s.Wall >= e.Width || s.Wall >= e.Height {
		return nil, fmt.Errorf("part %s: wall %gmm leaves no room inside %s", p.Name, s.Wall, e)
	}

	solid := k.Box(e.Length, e.Width, e.Height)

	if len(s.Compartments) == 0 {
		cavity := k.Box(e.Length-2*s.Wall, e.Width-2*s.Wall, e.Height-s.Wall+overshoot)
		solid = k.Difference(solid, k.Translate(cavity, s.Wall, s.Wall, s.Wall))
	} else {
		for i, c := range s.Compartments {
			pocket, err := pocketSolid(k, c, s.Wall, e.Height)
			if err != nil {
				return nil, fmt.Errorf("part %s: compartment %d: %w", p.Name, i, err)
			}
			solid = k.Difference(solid, pocket)
		}
	}

	if s.Cutout.Enabled {
		layout := NewHoneycomb(s.Cutout.Density)
		centers := layout.Centers(e, s.Wall)
		if len(centers) > 0 {
			var cells kernel.Solid
			for _, c := range centers {
				cell := k.Translate(k.HexPrism(s.Wall+2*overshoot, layout.Radius), c[0], c[1], -overshoot)
				if cells == nil {
					cells = cell
				} else {
					cells = k.Union(cells, cell)
				}
			}
			solid = k.Difference(solid, cells)
		}
	}
	return solid, nil
}

// pocketSolid returns the cutting tool for c. The pocket never cuts below
// the floor, which is one wall thick.
func pocketSolid(k kernel.SolidBuilder, c tray.Compartment, wall, height float64) (kernel.Solid, error) {
	bottom := math.Max(c.Z, wall)
	top := height + overshoot
	if c.Height > 0 && c.Z+c.Height < height {
		top = c.Z + c.Height
	}
	depth := top - bottom
	if depth <= 0 {
		return nil, fmt.Errorf("pocket lies entirely inside the floor")
	}

	switch c.Shape {
	case tray.ShapeRound:
		r := math.Min(c.Width, c.Depth) / 2
		return k.Translate(k.Cylinder(depth, r, roundSegments), c.X+c.Width/2, c.Y+c.Depth/2, bottom), nil
	default:
		return k.Translate(k.Box(c.Width, c.Depth, depth), c.X, c.Y, bottom), nil
	}
}

// Honeycomb is the layout of a floor cutout.
type Honeycomb struct {
	Radius float64 // circumradius of each cell
	Rib    float64 // material left between neighbouring cells
}

// Cell size and rib limits in mm.
const (
	HoneycombRadius = 5.0
	MaxRib          = 6.0
	MinRib          = 1.2
)

// NewHoneycomb derives the layout for a density in [0, 1]. Denser patterns
// have thinner ribs. Out-of-range densities are clamped.
func NewHoneycomb(density float64) Honeycomb {
	d := lo.Clamp(density, 0, 1)
	return Honeycomb{
		Radius: HoneycombRadius,
		Rib:    MaxRib*(1-d) + MinRib*d,
	}
}

// Pitch returns the centre spacing along X within a row.
func (h Honeycomb) Pitch() float64 {
	return 2*h.Radius + h.Rib
}

// Centers returns the cell centres that fit entirely inside the floor of a
// tray with outer extents e, keeping clear of the walls.
func (h Honeycomb) Centers(e tray.Extents, wall float64) [][2]float64 {
	minX, maxX := wall+h.Rib+h.Radius, e.Length-wall-h.Rib-h.Radius
	inradius := h.Radius * math.Sqrt(3) / 2
	minY, maxY := wall+h.Rib+inradius, e.Width-wall-h.Rib-inradius
	if minX > maxX || minY > maxY {
		return nil
	}

	pitch := h.Pitch()
	rowPitch := pitch * math.Sqrt(3) / 2

	var centers [][2]float64
	for row := 0; ; row++ {
		y := minY + float64(row)*rowPitch
		if y > maxY+1e-9 {
			break
		}
		offset := 0.0
		if row%2 == 1 {
			offset = pitch / 2
		}
		for x := minX + offset; x <= maxX+1e-9; x += pitch {
			centers = append(centers, [2]float64{x, y})
		}
	}
	return centers
}
