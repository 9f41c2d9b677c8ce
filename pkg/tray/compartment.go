package tray

import "fmt"

// Shape is the outline of a compartment pocket.
type Shape string

const (
	ShapeRectangle Shape = "rectangle"
	ShapeRound     Shape = "round"
)

// Valid reports whether s is a known shape. The empty shape is treated as
// a rectangle.
func (s Shape) Valid() bool {
	switch s {
	case "", ShapeRectangle, ShapeRound:
		return true
	}
	return false
}

// ParseShape converts a name to a Shape.
func ParseShape(name string) (Shape, error) {
	s := Shape(name)
	if name == "" || !s.Valid() {
		return "", fmt.Errorf("invalid compartment shape %q (valid: rectangle, round)", name)
	}
	return s, nil
}

// Compartment is a pocket cut into a tray. X/Y/Z locate its minimum corner
// relative to the tray's minimum corner. A zero Height means the pocket runs
// from the top of the tray down to the floor.
type Compartment struct {
	X      float64 `json:"x" yaml:"x" toml:"x"`
	Y      float64 `json:"y" yaml:"y" toml:"y"`
	Z      float64 `json:"z,omitempty" yaml:"z,omitempty" toml:"z,omitempty"`
	Width  float64 `json:"width" yaml:"width" toml:"width"`
	Depth  float64 `json:"depth" yaml:"depth" toml:"depth"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty" toml:"height,omitempty"`
	Shape  Shape   `json:"shape,omitempty" yaml:"shape,omitempty" toml:"shape,omitempty"`
	Label  string  `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
}

// FitsIn reports whether the compartment's footprint lies inside e.
func (c Compartment) FitsIn(e Extents) bool {
	return c.X >= 0 && c.Y >= 0 && c.Z >= 0 &&
		c.X+c.Width <= e.Length &&
		c.Y+c.Depth <= e.Width &&
		c.Z+c.Height <= e.Height
}

// CompartmentSystem tracks the compartments placed inside a box.
type CompartmentSystem struct {
	Box          *BoxModel
	compartments []Compartment
}

// NewCompartmentSystem returns an empty system bound to box.
func NewCompartmentSystem(box *BoxModel) *CompartmentSystem {
	return &CompartmentSystem{Box: box}
}

// Add appends a rectangular compartment.
func (cs *CompartmentSystem) Add(x, y, z, width, depth, height float64) {
	cs.AddCompartment(Compartment{
		X: x, Y: y, Z: z,
		Width: width, Depth: depth, Height: height,
		Shape: ShapeRectangle,
	})
}

// AddCompartment appends c as given.
func (cs *CompartmentSystem) AddCompartment(c Compartment) {
	cs.compartments = append(cs.compartments, c)
}

// Clear removes all compartments.
func (cs *CompartmentSystem) Clear() {
	cs.compartments = nil
}

// List returns a copy of the compartments in insertion order.
func (cs *CompartmentSystem) List() []Compartment {
	out := make([]Compartment, len(cs.compartments))
	copy(out, cs.compartments)
	return out
}

// Len returns the number of compartments.
func (cs *CompartmentSystem) Len() int {
	return len(cs.compartments)
}
