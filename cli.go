package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/chazu/lostmodeler/pkg/config"
	"github.com/chazu/lostmodeler/pkg/kernel/backend"
	"github.com/chazu/lostmodeler/pkg/state"
	"github.com/chazu/lostmodeler/pkg/tray"
)

// Global flags, bound to persistent flags on the root command.
var (
	configPath string
	jsonOutput bool
	debug      bool
)

// NewRootCommand creates the lostmodeler command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lostmodeler",
		Short: "Design 3D-printable organizer trays",
		Long: `lostmodeler designs compartment trays for 3D printing. Trays larger than
the printer allows are split into parts that each fit the build volume.

Settings persist in a config file; recipe scripts can set up a tray in one go.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd.ErrOrStderr(), debug)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Config file (.json, .yaml or .toml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewShowCommand())
	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewSplitCommand())
	rootCmd.AddCommand(NewPreviewCommand())
	rootCmd.AddCommand(NewExportCommand())

	return rootCmd
}

// Execute runs rootCmd and exits non-zero on failure.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes err as text, or as a JSON object when --json is set.
func printError(w io.Writer, err error) {
	if !jsonOutput {
		fmt.Fprintf(w, "Error: %s\n", err)
		return
	}
	data, _ := json.MarshalIndent(map[string]any{
		"error": map[string]any{"message": err.Error()},
	}, "", "  ")
	fmt.Fprintln(w, string(data))
}

func setupLogging(w io.Writer, debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// loadState reads the config file named by --config.
func loadState() (*state.AppState, error) {
	st, firstRun, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if firstRun {
		log.Debug().Str("path", configPath).Msg("no config file, using defaults")
	}
	return st, nil
}

// trayFlags are the per-invocation overrides shared by commands that
// operate on a tray. Nothing set through them is saved.
type trayFlags struct {
	length float64
	width  float64
	height float64
	wall   float64
	script string
	split  bool
}

func addTrayFlags(cmd *cobra.Command, f *trayFlags) {
	cmd.Flags().Float64Var(&f.length, "length", 0, "Override tray length (mm)")
	cmd.Flags().Float64Var(&f.width, "width", 0, "Override tray width (mm)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "Override tray height (mm)")
	cmd.Flags().Float64Var(&f.wall, "wall", 0, "Override wall thickness (mm)")
	cmd.Flags().StringVarP(&f.script, "script", "s", "", "Recipe script to run before the command")
}

func addSplitFlag(cmd *cobra.Command, f *trayFlags) {
	cmd.Flags().BoolVar(&f.split, "split", false, "Split trays that exceed the maximum dimension")
}

// apply runs the script, then the dimension overrides, against app's
// state. Flags that were not given leave the setting alone.
func (f *trayFlags) apply(cmd *cobra.Command, app *App) error {
	app.Split = f.split

	if f.script != "" {
		src, err := os.ReadFile(f.script)
		if err != nil {
			return fmt.Errorf("reading script: %w", err)
		}
		if errs := app.RunScript(string(src)); len(errs) > 0 {
			return &scriptError{path: f.script, errs: errs}
		}
	}

	s := app.State().Tray.Clone()
	changed := false
	override := func(name string, v float64, dst *float64) {
		if cmd.Flags().Changed(name) {
			*dst = v
			changed = true
		}
	}
	override("length", f.length, &s.Length)
	override("width", f.width, &s.Width)
	override("height", f.height, &s.Height)
	override("wall", f.wall, &s.Wall)
	if changed {
		app.State().Apply(s)
	}
	return nil
}

// scriptError reports recipe script failures with their positions.
type scriptError struct {
	path string
	errs []EvalErrorData
}

func (e *scriptError) Error() string {
	first := e.errs[0]
	msg := fmt.Sprintf("%s:%d:%d: %s", e.path, first.Line, first.Col, first.Message)
	if len(e.errs) > 1 {
		msg += fmt.Sprintf(" (and %d more)", len(e.errs)-1)
	}
	return msg
}

// kernelFlags pick and tune the geometry kernel.
type kernelFlags struct {
	name  string
	cells int
}

func addKernelFlags(cmd *cobra.Command, f *kernelFlags) {
	cmd.Flags().StringVarP(&f.name, "kernel", "k", "", "Geometry kernel: sdfx, manifold or null (default from config)")
	cmd.Flags().IntVar(&f.cells, "cells", 0, "Mesh resolution for the sdfx kernel")
}

// newApp builds an App over st with the kernel chosen by f, falling back
// to the kernel named in the config.
func newApp(cmd *cobra.Command, st *state.AppState, f kernelFlags) (*App, error) {
	name := f.name
	if name == "" {
		name = st.Kernel
	}
	k, err := backend.New(name, backend.Options{MeshCells: f.cells})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("kernel", k.Name()).Msg("geometry kernel selected")
	app := NewApp(st, k)
	if ctx := cmd.Context(); ctx != nil {
		app.startup(ctx)
	}
	return app, nil
}

func countErrors(findings []tray.ValidationError) int {
	n := 0
	for _, f := range findings {
		if f.Severity == tray.SeverityError {
			n++
		}
	}
	return n
}
