// Package config loads and saves the Lost Modeler application state.
//
// The on-disk format is chosen by file extension: .json (comments and
// trailing commas allowed), .yaml/.yml, or .toml. Decoding is strict:
// unknown keys and ill-typed values are reported as a *ConfigError rather
// than silently ignored, and the decoded values are validated before a
// state is returned.
package config
