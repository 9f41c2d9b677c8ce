// Package state holds the application state of Lost Modeler as an explicit
// value. Callers load it at startup, pass it by reference, and save it at
// shutdown; there are no package-level globals.
package state

import (
	"os"
	"path/filepath"

	"github.com/chazu/lostmodeler/pkg/splitter"
	"github.com/chazu/lostmodeler/pkg/tray"
)

// Theme names the colour scheme used by a front end.
type Theme string

const (
	ThemeDark  Theme = "DarkBlue3"
	ThemeLight Theme = "LightGrey3"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeDark || t == ThemeLight
}

// ParseTheme accepts "dark", "light" or a full theme name.
func ParseTheme(s string) (Theme, bool) {
	switch s {
	case "dark", string(ThemeDark):
		return ThemeDark, true
	case "light", string(ThemeLight):
		return ThemeLight, true
	}
	return "", false
}

// DefaultKernel is the geometry kernel selected when none is configured.
const DefaultKernel = "sdfx"

// Kernels lists the geometry kernel names a state may select.
var Kernels = []string{"sdfx", "manifold", "null"}

// ValidKernel reports whether name is one of Kernels.
func ValidKernel(name string) bool {
	for _, k := range Kernels {
		if k == name {
			return true
		}
	}
	return false
}

// DefaultExportDir returns ~/lost_modeler_exports, or a relative directory
// when the home directory cannot be resolved.
func DefaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "lost_modeler_exports"
	}
	return filepath.Join(home, "lost_modeler_exports")
}

// AppState is the complete mutable state of a session.
type AppState struct {
	Tray        tray.Settings
	Boardgame   tray.BoardgameSettings
	ExportDir   string
	Theme       Theme
	MaxDim      float64
	BuildVolume tray.Extents
	Kernel      string

	undo []tray.Settings
	redo []tray.Settings
}

// New returns the default state with empty history.
func New() *AppState {
	return &AppState{
		Tray:        tray.DefaultSettings(),
		Boardgame:   tray.DefaultBoardgameSettings(),
		ExportDir:   DefaultExportDir(),
		Theme:       ThemeDark,
		MaxDim:      splitter.DefaultMaxDim,
		BuildVolume: tray.DefaultBuildVolume,
		Kernel:      DefaultKernel,
	}
}

// Apply replaces the tray settings, recording the previous settings for
// undo and discarding any redo history.
func (s *AppState) Apply(t tray.Settings) {
	s.undo = append(s.undo, s.Tray.Clone())
	s.Tray = t.Clone()
	s.redo = nil
}

// Undo restores the previous tray settings. It returns false when there is
// nothing to undo.
func (s *AppState) Undo() bool {
	if len(s.undo) == 0 {
		return false
	}
	s.redo = append(s.redo, s.Tray)
	s.Tray = s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	return true
}

// Redo re-applies the most recently undone tray settings. It returns false
// when there is nothing to redo.
func (s *AppState) Redo() bool {
	if len(s.redo) == 0 {
		return false
	}
	s.undo = append(s.undo, s.Tray)
	s.Tray = s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	return true
}

// CanUndo reports whether Undo would change the state.
func (s *AppState) CanUndo() bool { return len(s.undo) > 0 }

// CanRedo reports whether Redo would change the state.
func (s *AppState) CanRedo() bool { return len(s.redo) > 0 }

// SetBoardgame replaces the boardgame settings. Boardgame changes are not
// part of the undo history.
func (s *AppState) SetBoardgame(b tray.BoardgameSettings) {
	s.Boardgame = b
}

// SetDimensions applies a copy of the current tray resized to e.
func (s *AppState) SetDimensions(e tray.Extents) {
	s.Apply(s.Tray.WithExtents(e))
}

// Validate checks the current tray and boardgame settings. When split is
// true the build volume check is left to the per-part validation.
func (s *AppState) Validate(split bool) []tray.ValidationError {
	var errs []tray.ValidationError
	if split {
		errs = append(errs, tray.ValidateForSplit(s.Tray)...)
	} else {
		errs = append(errs, tray.Validate(s.Tray, s.BuildVolume)...)
	}
	errs = append(errs, tray.ValidateBoardgame(s.Boardgame)...)
	return errs
}
