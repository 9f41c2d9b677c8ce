package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazu/lostmodeler/pkg/config"
	"github.com/chazu/lostmodeler/pkg/state"
	"github.com/chazu/lostmodeler/pkg/tray"
)

type initFlags struct {
	theme     string
	exportDir string
	kernel    string
	maxDim    float64
}

// NewInitCommand creates the init subcommand, which writes the config
// file and creates the export directory.
func NewInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create or update the config file",
		Long: `Write the config file, creating it with defaults on first run.
Only the settings given as flags are changed; the export directory is
created if missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.theme, "theme", "", "UI theme: dark or light")
	cmd.Flags().StringVar(&flags.exportDir, "export-dir", "", "Directory exported files are written to")
	cmd.Flags().StringVar(&flags.kernel, "kernel", "", "Default geometry kernel: "+strings.Join(state.Kernels, ", "))
	cmd.Flags().Float64Var(&flags.maxDim, "max-dim", 0, "Longest printable side (mm)")

	return cmd
}

type initOutput struct {
	Config    string `json:"config"`
	ExportDir string `json:"export_dir"`
	FirstRun  bool   `json:"first_run"`
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	st, firstRun, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if flags.theme != "" {
		t, ok := state.ParseTheme(flags.theme)
		if !ok {
			return fmt.Errorf("invalid theme %q: must be dark or light", flags.theme)
		}
		st.Theme = t
	}
	if flags.exportDir != "" {
		st.ExportDir = flags.exportDir
	}
	if flags.kernel != "" {
		if !state.ValidKernel(flags.kernel) {
			return fmt.Errorf("invalid kernel %q: must be one of %s", flags.kernel, strings.Join(state.Kernels, ", "))
		}
		st.Kernel = strings.ToLower(flags.kernel)
	}
	if cmd.Flags().Changed("max-dim") {
		if flags.maxDim <= 0 {
			return fmt.Errorf("invalid max-dim %g: must be positive", flags.maxDim)
		}
		st.MaxDim = flags.maxDim
	}

	if err := config.EnsureExportDir(st); err != nil {
		return err
	}
	if err := config.Save(configPath, st); err != nil {
		return err
	}

	out := initOutput{Config: configPath, ExportDir: st.ExportDir, FirstRun: firstRun}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	w := cmd.OutOrStdout()
	if firstRun {
		fmt.Fprintf(w, "Created %s\n", out.Config)
	} else {
		fmt.Fprintf(w, "Updated %s\n", out.Config)
	}
	fmt.Fprintf(w, "Exports go to %s\n", out.ExportDir)
	return nil
}

// NewShowCommand creates the show subcommand.
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShow(cmd)
		},
	}
}

func runShow(cmd *cobra.Command) error {
	st, err := loadState()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if jsonOutput {
		data, err := config.Encode(st, config.FormatJSON)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, strings.TrimRight(string(data), "\n"))
		return err
	}

	t := st.Tray
	fmt.Fprintf(w, "Config:        %s\n", configPath)
	fmt.Fprintf(w, "Theme:         %s\n", st.Theme)
	fmt.Fprintf(w, "Export dir:    %s\n", st.ExportDir)
	fmt.Fprintf(w, "Kernel:        %s\n", st.Kernel)
	fmt.Fprintf(w, "Max dimension: %g mm\n", st.MaxDim)
	fmt.Fprintf(w, "Build volume:  %s mm\n", st.BuildVolume)
	fmt.Fprintf(w, "Tray:          %s mm, wall %g mm\n", t.Extents(), t.Wall)
	fmt.Fprintf(w, "Compartments:  %d\n", len(t.Compartments))
	for i, c := range t.Compartments {
		label, shape := c.Label, c.Shape
		if label == "" {
			label = "-"
		}
		if shape == "" {
			shape = tray.ShapeRectangle
		}
		fmt.Fprintf(w, "  %d. %-12s %s at (%g, %g), %gx%g\n", i+1, label, shape, c.X, c.Y, c.Width, c.Depth)
	}
	if t.Cutout.IsEnabled() {
		fmt.Fprintf(w, "Honeycomb:     on, density %g\n", t.Cutout.Density)
	} else {
		fmt.Fprintln(w, "Honeycomb:     off")
	}
	b := st.Boardgame
	fmt.Fprintf(w, "Boardgame:     cards %s, sleeved %t, quantity %d, token wells %d\n",
		b.CardSize, b.Sleeved, b.Quantity, b.TokenWells)
	return nil
}
