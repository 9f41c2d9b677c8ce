package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/chazu/lostmodeler/pkg/state"
	"github.com/chazu/lostmodeler/pkg/tray"
)

// FileName is the default config file name in the user's home directory.
const FileName = ".lost_modeler_config.json"

// EnvVar overrides the config path when set.
const EnvVar = "LOSTMODELER_CONFIG"

// ConfigError reports a config file that could not be decoded or whose
// values are invalid.
type ConfigError struct {
	Path  string
	Field string // empty when the error is not tied to one key
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("config %s: %s: %v", e.Path, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Format is an on-disk encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFor picks the encoding from the path's extension. Unknown
// extensions are treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// DefaultPath returns the config path: $LOSTMODELER_CONFIG if set,
// otherwise ~/.lost_modeler_config.json.
func DefaultPath() string {
	if p := os.Getenv(EnvVar); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// file is the persisted subset of state.AppState. Undo history is not saved.
type file struct {
	Tray        tray.Settings          `json:"tray" yaml:"tray" toml:"tray"`
	Boardgame   tray.BoardgameSettings `json:"boardgame" yaml:"boardgame" toml:"boardgame"`
	ExportDir   string                 `json:"export_dir" yaml:"export_dir" toml:"export_dir"`
	Theme       string                 `json:"theme" yaml:"theme" toml:"theme"`
	MaxDim      float64                `json:"max_dim" yaml:"max_dim" toml:"max_dim"`
	BuildVolume tray.Extents           `json:"build_volume" yaml:"build_volume" toml:"build_volume"`
	Kernel      string                 `json:"kernel" yaml:"kernel" toml:"kernel"`
}

func fileFromState(st *state.AppState) file {
	return file{
		Tray:        st.Tray.Clone(),
		Boardgame:   st.Boardgame,
		ExportDir:   st.ExportDir,
		Theme:       string(st.Theme),
		MaxDim:      st.MaxDim,
		BuildVolume: st.BuildVolume,
		Kernel:      st.Kernel,
	}
}

func (f file) toState() *state.AppState {
	st := state.New()
	st.Tray = f.Tray
	if st.Tray.Compartments == nil {
		st.Tray.Compartments = []tray.Compartment{}
	}
	st.Boardgame = f.Boardgame
	st.ExportDir = f.ExportDir
	st.Theme = state.Theme(f.Theme)
	st.MaxDim = f.MaxDim
	st.BuildVolume = f.BuildVolume
	st.Kernel = f.Kernel
	return st
}

// Load reads the state at path. A missing file is not an error: the
// default state is returned with firstRun set to true.
func Load(path string) (st *state.AppState, firstRun bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug().Str("path", path).Msg("no config file, using defaults")
		return state.New(), true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read config: %w", err)
	}

	st, err = Decode(path, data)
	if err != nil {
		return nil, false, err
	}
	log.Debug().Str("path", path).Msg("config loaded")
	return st, false, nil
}

// Decode parses data in the format implied by path, starting from the
// default state so that absent keys keep their defaults.
func Decode(path string, data []byte) (*state.AppState, error) {
	f := fileFromState(state.New())

	var err error
	switch FormatFor(path) {
	case FormatYAML:
		err = decodeYAML(data, &f)
	case FormatTOML:
		err = decodeTOML(data, &f)
	default:
		err = decodeJSON(data, &f)
	}
	if err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			cerr.Path = path
			return nil, cerr
		}
		return nil, &ConfigError{Path: path, Err: err}
	}

	if err := f.validate(); err != nil {
		err.Path = path
		return nil, err
	}
	return f.toState(), nil
}

func decodeJSON(data []byte, f *file) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(f); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &ConfigError{Field: typeErr.Field, Err: err}
		}
		return err
	}
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after the config object")
	}
	return nil
}

func decodeYAML(data []byte, f *file) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return errors.New("unexpected second document in config")
	}
	return nil
}

func decodeTOML(data []byte, f *file) error {
	md, err := toml.Decode(string(data), f)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return &ConfigError{
			Field: undecoded[0].String(),
			Err:   errors.New("unknown key"),
		}
	}
	return nil
}

// validate checks the application-level values. Tray geometry is checked
// separately by tray.Validate, since an unprintable tray is still a valid
// thing to have saved.
func (f file) validate() *ConfigError {
	if !state.Theme(f.Theme).Valid() {
		return &ConfigError{Field: "theme", Err: fmt.Errorf("unknown theme %q", f.Theme)}
	}
	if strings.TrimSpace(f.ExportDir) == "" {
		return &ConfigError{Field: "export_dir", Err: errors.New("must not be empty")}
	}
	if !(f.MaxDim > 0) || math.IsInf(f.MaxDim, 1) {
		return &ConfigError{Field: "max_dim", Err: fmt.Errorf("%g must be positive and finite", f.MaxDim)}
	}
	if !f.BuildVolume.Positive() {
		return &ConfigError{Field: "build_volume", Err: fmt.Errorf("%s must be positive", f.BuildVolume)}
	}
	if !state.ValidKernel(f.Kernel) {
		return &ConfigError{Field: "kernel", Err: fmt.Errorf("unknown kernel %q (valid: %s)", f.Kernel, strings.Join(state.Kernels, ", "))}
	}
	for i, c := range f.Tray.Compartments {
		if !c.Shape.Valid() {
			return &ConfigError{Field: fmt.Sprintf("tray.compartments[%d].shape", i), Err: fmt.Errorf("unknown shape %q", c.Shape)}
		}
	}
	return nil
}

// Encode renders st in the given format.
func Encode(st *state.AppState, format Format) ([]byte, error) {
	f := fileFromState(st)
	var buf bytes.Buffer
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(f); err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
	default:
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Save writes st to path, creating parent directories. The file is written
// to a temporary sibling and renamed into place.
func Save(path string, st *state.AppState) error {
	data, err := Encode(st, FormatFor(path))
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace config: %w", err)
	}

	log.Debug().Str("path", path).Str("format", FormatFor(path).String()).Msg("config saved")
	return nil
}

// EnsureExportDir creates the state's export directory if it is missing.
func EnsureExportDir(st *state.AppState) error {
	if err := os.MkdirAll(st.ExportDir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	return nil
}
