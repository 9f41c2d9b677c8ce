package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/chazu/lostmodeler/pkg/export"
	"github.com/chazu/lostmodeler/pkg/kernel"
	"github.com/chazu/lostmodeler/pkg/kernel/null"
	"github.com/chazu/lostmodeler/pkg/tray"
)

// findingData is the JSON form of a validation finding.
type findingData struct {
	Field    string `json:"field,omitempty"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

func toFindingData(findings []tray.ValidationError) []findingData {
	return lo.Map(findings, func(f tray.ValidationError, _ int) findingData {
		return findingData{Field: f.Field, Severity: f.Severity.String(), Message: f.Message}
	})
}

// ---------------------------------------------------------------------------
// validate
// ---------------------------------------------------------------------------

// NewValidateCommand creates the validate subcommand. It exits non-zero
// when the tray has validation errors.
func NewValidateCommand() *cobra.Command {
	flags := &trayFlags{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the tray settings for problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, flags)
		},
	}
	addTrayFlags(cmd, flags)
	addSplitFlag(cmd, flags)
	return cmd
}

type validateOutput struct {
	Valid    bool          `json:"valid"`
	Findings []findingData `json:"findings"`
}

func runValidate(cmd *cobra.Command, flags *trayFlags) error {
	st, err := loadState()
	if err != nil {
		return err
	}
	app := NewApp(st, null.New())
	if err := flags.apply(cmd, app); err != nil {
		return err
	}

	findings := st.Validate(app.Split)
	if app.Split && !tray.HasErrors(findings) {
		res, err := app.SplitParts()
		if err != nil {
			return err
		}
		for _, e := range res.Errors {
			findings = append(findings, tray.ValidationError{
				Field: e.Field, Message: e.Message, Severity: tray.SeverityError,
			})
		}
		for _, w := range res.Warnings {
			findings = append(findings, tray.ValidationError{
				Field: w.Field, Message: w.Message, Severity: tray.SeverityWarning,
			})
		}
	}

	n := countErrors(findings)
	out := validateOutput{Valid: n == 0, Findings: toFindingData(findings)}
	w := cmd.OutOrStdout()
	if jsonOutput {
		if err := writeJSON(w, out); err != nil {
			return err
		}
	} else {
		for _, f := range findings {
			fmt.Fprintln(w, f.Error())
		}
		if n == 0 {
			fmt.Fprintf(w, "Tray %s mm is valid\n", st.Tray.Extents())
		}
	}
	if n > 0 {
		return fmt.Errorf("tray has %d validation error(s)", n)
	}
	return nil
}

// ---------------------------------------------------------------------------
// split
// ---------------------------------------------------------------------------

type splitFlags struct {
	trayFlags
	maxDim float64
}

// NewSplitCommand creates the split subcommand, which shows how a tray
// would be divided without building any geometry.
func NewSplitCommand() *cobra.Command {
	flags := &splitFlags{}

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Show how the tray splits into printable parts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSplit(cmd, flags)
		},
	}
	addTrayFlags(cmd, &flags.trayFlags)
	cmd.Flags().Float64Var(&flags.maxDim, "max-dim", 0, "Longest printable side (mm, default from config)")
	return cmd
}

type splitOutput struct {
	MaxDim float64 `json:"max_dim"`
	SplitData
}

func runSplit(cmd *cobra.Command, flags *splitFlags) error {
	st, err := loadState()
	if err != nil {
		return err
	}
	app := NewApp(st, null.New())
	if err := flags.apply(cmd, app); err != nil {
		return err
	}
	if cmd.Flags().Changed("max-dim") {
		st.MaxDim = flags.maxDim
	}

	sd, err := app.SplitParts()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		if err := writeJSON(w, splitOutput{MaxDim: st.MaxDim, SplitData: sd}); err != nil {
			return err
		}
	} else {
		printSplit(w, st.Tray.Extents(), st.MaxDim, sd)
	}
	if len(sd.Errors) > 0 {
		return fmt.Errorf("tray does not fit the build volume and was not split")
	}
	return nil
}

func printSplit(w io.Writer, e tray.Extents, maxDim float64, sd SplitData) {
	if len(sd.Parts) == 1 {
		fmt.Fprintf(w, "Tray %s mm fits within %g mm; no split needed\n", e, maxDim)
	} else {
		fmt.Fprintf(w, "Tray %s mm splits along %s into %d parts (max %g mm):\n",
			e, sd.Axis, len(sd.Parts), maxDim)
		for _, p := range sd.Parts {
			fmt.Fprintf(w, "  %-12s %s mm, %d compartment(s)\n", p.Name, p.Extents, len(p.Settings.Compartments))
		}
	}
	for _, warn := range sd.Warnings {
		fmt.Fprintf(w, "warning: %s: %s\n", warn.Field, warn.Message)
	}
	for _, e := range sd.Errors {
		fmt.Fprintf(w, "error: %s\n", e.Message)
	}
}

// ---------------------------------------------------------------------------
// preview
// ---------------------------------------------------------------------------

type previewFlags struct {
	trayFlags
	kernel kernelFlags
}

// NewPreviewCommand creates the preview subcommand. It meshes every part
// and reports their sizes.
func NewPreviewCommand() *cobra.Command {
	flags := &previewFlags{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Mesh the tray and summarize the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPreview(cmd, flags)
		},
	}
	addTrayFlags(cmd, &flags.trayFlags)
	addSplitFlag(cmd, &flags.trayFlags)
	addKernelFlags(cmd, &flags.kernel)
	return cmd
}

type meshSummary struct {
	Part      string     `json:"part"`
	Color     string     `json:"color"`
	Vertices  int        `json:"vertices"`
	Triangles int        `json:"triangles"`
	Min       [3]float32 `json:"min"`
	Max       [3]float32 `json:"max"`
}

type previewOutput struct {
	Parts    []meshSummary   `json:"parts"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

func summarize(md MeshData) meshSummary {
	m := kernel.Mesh{Vertices: md.Vertices, Normals: md.Normals, Indices: md.Indices}
	lower, upper := m.Bounds()
	return meshSummary{
		Part:      md.PartName,
		Color:     md.Color,
		Vertices:  m.VertexCount(),
		Triangles: m.TriangleCount(),
		Min:       lower,
		Max:       upper,
	}
}

func runPreview(cmd *cobra.Command, flags *previewFlags) error {
	st, err := loadState()
	if err != nil {
		return err
	}
	app, err := newApp(cmd, st, flags.kernel)
	if err != nil {
		return err
	}
	if err := flags.apply(cmd, app); err != nil {
		return err
	}

	res := app.Preview()
	out := previewOutput{
		Parts:    lo.Map(res.Meshes, func(md MeshData, _ int) meshSummary { return summarize(md) }),
		Errors:   res.Errors,
		Warnings: res.Warnings,
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		if err := writeJSON(w, out); err != nil {
			return err
		}
	} else {
		for _, p := range out.Parts {
			fmt.Fprintf(w, "%-12s %7d vertices %7d triangles  [%g %g %g] - [%g %g %g]\n",
				p.Part, p.Vertices, p.Triangles,
				p.Min[0], p.Min[1], p.Min[2], p.Max[0], p.Max[1], p.Max[2])
		}
		for _, e := range out.Warnings {
			fmt.Fprintf(w, "warning: %s\n", e.Message)
		}
		for _, e := range out.Errors {
			fmt.Fprintf(w, "error: %s\n", e.Message)
		}
	}
	if len(out.Errors) > 0 {
		return fmt.Errorf("preview failed with %d error(s)", len(out.Errors))
	}
	return nil
}

// ---------------------------------------------------------------------------
// export
// ---------------------------------------------------------------------------

type exportFlags struct {
	trayFlags
	kernel kernelFlags
	format string
	dir    string
	maxDim float64
}

// NewExportCommand creates the export subcommand.
func NewExportCommand() *cobra.Command {
	flags := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the tray to printable files",
		Long: `Build the tray and write one file per part plus a manifest.json to the
export directory. Nothing is written while the tray has validation errors.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, flags)
		},
	}
	addTrayFlags(cmd, &flags.trayFlags)
	addSplitFlag(cmd, &flags.trayFlags)
	addKernelFlags(cmd, &flags.kernel)
	cmd.Flags().StringVarP(&flags.format, "format", "f", string(kernel.FormatSTL), "Output format: stl, step or json")
	cmd.Flags().StringVarP(&flags.dir, "dir", "o", "", "Output directory (default from config)")
	cmd.Flags().Float64Var(&flags.maxDim, "max-dim", 0, "Longest printable side (mm, default from config)")
	return cmd
}

type exportOutput struct {
	Dir      string          `json:"dir"`
	Files    []string        `json:"files"`
	Manifest export.Manifest `json:"manifest"`
}

func runExport(cmd *cobra.Command, flags *exportFlags) error {
	st, err := loadState()
	if err != nil {
		return err
	}
	app, err := newApp(cmd, st, flags.kernel)
	if err != nil {
		return err
	}
	if err := flags.apply(cmd, app); err != nil {
		return err
	}
	if cmd.Flags().Changed("max-dim") {
		st.MaxDim = flags.maxDim
	}

	res, err := app.Export(flags.format, flags.dir)
	if err != nil {
		var invalid *export.InvalidError
		if errors.As(err, &invalid) && !jsonOutput {
			for _, f := range invalid.Findings {
				fmt.Fprintln(cmd.ErrOrStderr(), f.Error())
			}
		}
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(w, exportOutput{Dir: res.Dir, Files: res.Files(), Manifest: res.Manifest})
	}
	fmt.Fprintf(w, "Exported %d part(s) to %s\n", len(res.Manifest.Parts), res.Dir)
	for _, f := range res.Files() {
		fmt.Fprintf(w, "  %s\n", f)
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn.Error())
	}
	return nil
}
