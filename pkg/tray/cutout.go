package tray

import "fmt"

// DefaultCutoutDensity is the honeycomb density used when none is given.
const DefaultCutoutDensity = 0.5

// CutoutPattern is a honeycomb cutout through the tray floor. Density runs
// from 0 (sparse, large gaps) to 1 (dense, thin ribs).
type CutoutPattern struct {
	Density float64 `json:"density" yaml:"density" toml:"density"`
	Enabled bool    `json:"enabled" yaml:"enabled" toml:"enabled"`
}

// NewCutoutPattern returns a disabled pattern with the default density.
func NewCutoutPattern() CutoutPattern {
	return CutoutPattern{Density: DefaultCutoutDensity}
}

// Enable turns the pattern on, keeping the current density.
func (p *CutoutPattern) Enable() {
	p.Enabled = true
}

// EnableWithDensity turns the pattern on with a new density in [0, 1].
func (p *CutoutPattern) EnableWithDensity(density float64) error {
	if density < 0 || density > 1 {
		return fmt.Errorf("cutout density %g out of range [0, 1]", density)
	}
	p.Enabled = true
	p.Density = density
	return nil
}

// Disable turns the pattern off.
func (p *CutoutPattern) Disable() {
	p.Enabled = false
}

// IsEnabled reports whether the pattern is on.
func (p CutoutPattern) IsEnabled() bool {
	return p.Enabled
}
