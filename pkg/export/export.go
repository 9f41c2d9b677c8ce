// Package export validates, splits, builds and writes a tray to disk,
// leaving a manifest.json describing the run next to the part files.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/chazu/lostmodeler/pkg/build"
	"github.com/chazu/lostmodeler/pkg/kernel"
	"github.com/chazu/lostmodeler/pkg/splitter"
	"github.com/chazu/lostmodeler/pkg/state"
	"github.com/chazu/lostmodeler/pkg/tray"
)

// ManifestName is the file written alongside the parts.
const ManifestName = "manifest.json"

// ErrInvalid is matched by the error Run returns when the tray fails
// validation.
var ErrInvalid = errors.New("tray failed validation")

// InvalidError carries the validation findings that blocked an export.
type InvalidError struct {
	Findings []tray.ValidationError
}

func (e *InvalidError) Error() string {
	msgs := lo.FilterMap(e.Findings, func(f tray.ValidationError, _ int) (string, bool) {
		return f.Error(), f.Severity == tray.SeverityError
	})
	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func (e *InvalidError) Is(target error) bool {
	return target == ErrInvalid
}

// Options controls a run. Zero values fall back to the state.
type Options struct {
	Format kernel.Format
	Split  bool
	MaxDim float64
	Dir    string
}

// ManifestPart describes one written part.
type ManifestPart struct {
	Name         string       `json:"name"`
	Extents      tray.Extents `json:"extents"`
	Compartments int          `json:"compartments"`
	File         string       `json:"file"`
}

// Manifest describes a completed export.
type Manifest struct {
	RunID     string         `json:"run_id"`
	CreatedAt time.Time      `json:"created_at"`
	Kernel    string         `json:"kernel"`
	Format    kernel.Format  `json:"format"`
	SplitAxis string         `json:"split_axis,omitempty"`
	Parts     []ManifestPart `json:"parts"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// Result is returned by a successful Run.
type Result struct {
	Dir      string
	Manifest Manifest
	Warnings []tray.ValidationError
}

// Files returns the absolute paths of the written part files.
func (r *Result) Files() []string {
	return lo.Map(r.Manifest.Parts, func(p ManifestPart, _ int) string {
		return filepath.Join(r.Dir, p.File)
	})
}

// Run exports the state's tray with k. It refuses to write anything while
// validation errors exist, and checks ctx between parts.
func Run(ctx context.Context, k kernel.Kernel, st *state.AppState, opts Options) (*Result, error) {
	format := opts.Format
	if format == "" {
		format = kernel.FormatSTL
	}
	if !kernel.Supports(k, format) {
		if len(k.Formats()) == 0 {
			return nil, fmt.Errorf("export with %s kernel: %w", k.Name(), kernel.ErrUnavailable)
		}
		return nil, kernel.Unsupported(k.Name(), format)
	}

	findings := st.Validate(opts.Split)
	if tray.HasErrors(findings) {
		return nil, &InvalidError{Findings: findings}
	}

	res := splitter.Result{Parts: []tray.Extents{st.Tray.Extents()}}
	if opts.Split {
		maxDim := opts.MaxDim
		if maxDim <= 0 {
			maxDim = st.MaxDim
		}
		var err error
		res, err = splitter.Split(st.Tray.Extents(), maxDim)
		if err != nil {
			return nil, fmt.Errorf("split: %w", err)
		}
		findings = append(findings, tray.ValidateParts(res.Parts, st.BuildVolume)...)
		if tray.HasErrors(findings) {
			return nil, &InvalidError{Findings: findings}
		}
	}

	dir := opts.Dir
	if dir == "" {
		dir = st.ExportDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Str("kernel", k.Name()).Str("format", string(format)).Logger()
	for _, w := range findings {
		logger.Warn().Str("field", w.Field).Msg(w.Message)
	}

	// Part files from a run that fails are removed, so the export dir
	// never holds a partial set of parts without its manifest.
	var written []string
	fail := func(err error) (*Result, error) {
		removeFiles(logger, written)
		return nil, err
	}

	parts := build.Plan(st.Tray, res)
	for _, p := range parts {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		solid, err := build.Solid(k, p)
		if err != nil {
			return fail(err)
		}
		path := filepath.Join(dir, p.Name+format.Ext())
		written = append(written, path)
		if err := k.Export(solid, path, format); err != nil {
			return fail(fmt.Errorf("export %s: %w", p.Name, err))
		}
		logger.Info().Str("part", p.Name).Str("path", path).Str("extents", p.Extents.String()).Msg("part exported")
	}

	manifest := Manifest{
		RunID:     runID,
		CreatedAt: time.Now().UTC(),
		Kernel:    k.Name(),
		Format:    format,
		Parts: lo.Map(parts, func(p build.Part, _ int) ManifestPart {
			return ManifestPart{
				Name:         p.Name,
				Extents:      p.Extents,
				Compartments: len(p.Settings.Compartments),
				File:         p.Name + format.Ext(),
			}
		}),
		Warnings: lo.Map(findings, func(f tray.ValidationError, _ int) string { return f.Error() }),
	}
	if res.IsSplit() {
		manifest.SplitAxis = res.Axis.String()
	}

	if err := writeManifest(filepath.Join(dir, ManifestName), manifest); err != nil {
		return fail(err)
	}
	logger.Info().Int("parts", len(parts)).Str("dir", dir).Msg("export complete")

	return &Result{Dir: dir, Manifest: manifest, Warnings: findings}, nil
}

func removeFiles(logger zerolog.Logger, paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn().Err(err).Str("path", p).Msg("could not remove partial export")
		}
	}
}

func writeManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
