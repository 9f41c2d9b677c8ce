package tray

import (
	"fmt"
	"strconv"
	"strings"
)

// Default tray settings in mm.
const (
	DefaultLength = 100.0
	DefaultWidth  = 100.0
	DefaultHeight = 40.0
	DefaultWall   = 2.0

	// MinWall is the thinnest wall a typical 0.4mm nozzle prints reliably.
	MinWall = 0.8

	DefaultCardSize = "63.5x88"
)

// Settings describes a general tray.
type Settings struct {
	Length       float64       `json:"length" yaml:"length" toml:"length"`
	Width        float64       `json:"width" yaml:"width" toml:"width"`
	Height       float64       `json:"height" yaml:"height" toml:"height"`
	Wall         float64       `json:"wall" yaml:"wall" toml:"wall"`
	Compartments []Compartment `json:"compartments" yaml:"compartments" toml:"compartments"`
	Cutout       CutoutPattern `json:"cutout" yaml:"cutout" toml:"cutout"`
}

// DefaultSettings returns a 100x100x40 tray with 2mm walls.
func DefaultSettings() Settings {
	return Settings{
		Length:       DefaultLength,
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		Wall:         DefaultWall,
		Compartments: []Compartment{},
		Cutout:       NewCutoutPattern(),
	}
}

// Extents returns the outer dimensions of the tray.
func (s Settings) Extents() Extents {
	return NewExtents(s.Length, s.Width, s.Height)
}

// WithExtents returns a copy of s resized to e. Compartments are copied.
func (s Settings) WithExtents(e Extents) Settings {
	out := s.Clone()
	out.Length, out.Width, out.Height = e.Length, e.Width, e.Height
	return out
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	out := s
	out.Compartments = make([]Compartment, len(s.Compartments))
	copy(out.Compartments, s.Compartments)
	return out
}

// BoardgameSettings holds the extra options used in boardgame mode.
type BoardgameSettings struct {
	CardSize   string `json:"card_size" yaml:"card_size" toml:"card_size"`
	Sleeved    bool   `json:"sleeved" yaml:"sleeved" toml:"sleeved"`
	Quantity   int    `json:"quantity" yaml:"quantity" toml:"quantity"`
	TokenWells int    `json:"token_wells" yaml:"token_wells" toml:"token_wells"`
}

// DefaultBoardgameSettings returns standard poker-size cards, unsleeved.
func DefaultBoardgameSettings() BoardgameSettings {
	return BoardgameSettings{CardSize: DefaultCardSize}
}

// CardDimensions parses CardSize ("WxH", mm) into width and height.
func (b BoardgameSettings) CardDimensions() (width, height float64, err error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(b.CardSize)), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("card size %q: expected WIDTHxHEIGHT", b.CardSize)
	}
	width, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("card size %q: width: %w", b.CardSize, err)
	}
	height, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("card size %q: height: %w", b.CardSize, err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("card size %q: dimensions must be positive", b.CardSize)
	}
	return width, height, nil
}
