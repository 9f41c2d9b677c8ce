package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/chazu/lostmodeler/pkg/build"
	"github.com/chazu/lostmodeler/pkg/engine"
	"github.com/chazu/lostmodeler/pkg/export"
	"github.com/chazu/lostmodeler/pkg/kernel"
	"github.com/chazu/lostmodeler/pkg/splitter"
	"github.com/chazu/lostmodeler/pkg/state"
	"github.com/chazu/lostmodeler/pkg/tessellate"
	"github.com/chazu/lostmodeler/pkg/tray"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the front-end facing backend. A GUI or the CLI drives it; every
// method works on the one AppState it was created with.
type App struct {
	ctx    context.Context
	state  *state.AppState
	engine *engine.Engine
	kernel kernel.Kernel

	// Split makes previews and exports divide oversized trays.
	Split bool
}

// MeshData is the JSON-serializable mesh format sent to a front end.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable error or warning for a front end.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to a front end.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

func newEvalResult() EvalResult {
	return EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

// SplitData describes the outcome of a split for a front end. Errors holds
// the build volume error of a tray that was left whole but does not fit.
type SplitData struct {
	Parts    []build.Part    `json:"parts"`
	Axis     string          `json:"axis"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App over st using kernel k.
func NewApp(st *state.AppState, k kernel.Kernel) *App {
	return &App{
		ctx:    context.Background(),
		state:  st,
		engine: engine.NewEngine(),
		kernel: k,
	}
}

// startup is called by the host on app startup. The context is saved
// so long-running calls such as Export can be cancelled.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// State returns the state the App works on.
func (a *App) State() *state.AppState {
	return a.state
}

// Evaluate runs a recipe script against the current settings. On success
// the resulting settings are applied (and can be undone) and the tray is
// previewed.
func (a *App) Evaluate(source string) EvalResult {
	if errs := a.RunScript(source); len(errs) > 0 {
		result := newEvalResult()
		result.Errors = errs
		return result
	}
	return a.Preview()
}

// RunScript evaluates a recipe script and applies the resulting settings
// without meshing anything. It returns the script errors, if any, in
// which case the state is left untouched.
func (a *App) RunScript(source string) []EvalErrorData {
	base := engine.Recipe{Tray: a.state.Tray, Boardgame: a.state.Boardgame}
	recipe, evalErrs, err := a.engine.Evaluate(source, base)
	if err != nil {
		log.Error().Err(err).Msg("evaluate failed")
		return []EvalErrorData{{Message: err.Error()}}
	}
	if len(evalErrs) > 0 {
		out := make([]EvalErrorData, 0, len(evalErrs))
		for _, e := range evalErrs {
			out = append(out, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return out
	}

	a.state.Apply(recipe.Tray)
	a.state.SetBoardgame(recipe.Boardgame)
	return nil
}

// Preview validates the current settings and meshes every part.
func (a *App) Preview() EvalResult {
	result := newEvalResult()

	findings := a.state.Validate(a.Split)
	parts := build.Single(a.state.Tray)
	if a.Split && !tray.HasErrors(findings) {
		sd, err := a.SplitParts()
		if err != nil {
			result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
			return result
		}
		parts = sd.Parts
		result.Errors = append(result.Errors, sd.Errors...)
		result.Warnings = append(result.Warnings, sd.Warnings...)
	}

	for _, f := range findings {
		d := EvalErrorData{Field: f.Field, Message: f.Message}
		if f.Severity == tray.SeverityError {
			result.Errors = append(result.Errors, d)
		} else {
			result.Warnings = append(result.Warnings, d)
		}
	}
	if len(result.Errors) > 0 {
		return result
	}

	meshes, err := tessellate.Tessellate(a.kernel, parts)
	if err != nil {
		log.Error().Err(err).Msg("tessellate failed")
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return result
}

// ApplyDimensions resizes the tray, recording the change for undo, and
// returns the validation findings for the new size.
func (a *App) ApplyDimensions(length, width, height float64) []EvalErrorData {
	a.state.SetDimensions(tray.NewExtents(length, width, height))
	return a.Validate()
}

// Validate returns the findings for the current settings.
func (a *App) Validate() []EvalErrorData {
	out := []EvalErrorData{}
	for _, f := range a.state.Validate(a.Split) {
		out = append(out, EvalErrorData{Field: f.Field, Message: f.Error()})
	}
	return out
}

// SplitParts splits the current tray by the state's maximum dimension.
func (a *App) SplitParts() (SplitData, error) {
	res, err := splitter.Split(a.state.Tray.Extents(), a.state.MaxDim)
	if err != nil {
		return SplitData{}, fmt.Errorf("split: %w", err)
	}
	sd := SplitData{
		Parts:    build.Plan(a.state.Tray, res),
		Axis:     res.Axis.String(),
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
	for _, f := range tray.ValidateParts(res.Parts, a.state.BuildVolume) {
		d := EvalErrorData{Field: f.Field, Message: f.Message}
		if f.Severity == tray.SeverityError {
			sd.Errors = append(sd.Errors, d)
		} else {
			sd.Warnings = append(sd.Warnings, d)
		}
	}
	return sd, nil
}

// Export writes the tray in the given format to dir, or to the state's
// export directory when dir is empty.
func (a *App) Export(format, dir string) (*export.Result, error) {
	f, err := kernel.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return export.Run(a.ctx, a.kernel, a.state, export.Options{Format: f, Split: a.Split, Dir: dir})
}

// Undo reverts the last settings change.
func (a *App) Undo() bool { return a.state.Undo() }

// Redo re-applies the last undone change.
func (a *App) Redo() bool { return a.state.Redo() }
