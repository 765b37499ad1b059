// Package config provides configuration management for the inkwell CLI.
//
// Configuration is layered: defaults, then an inkwell.yaml file, then
// INKWELL_ environment variables, then command-line flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	StatePath    string            `koanf:"state_path"`
	Dialect      string            `koanf:"dialect"`
	Verbose      bool              `koanf:"verbose"`
	OutputFormat string            `koanf:"output"`
	UpsertTable  string            `koanf:"upsert_table"`
	Params       map[string]string `koanf:"params"`
}

// Default configuration values.
const (
	DefaultStateFile   = ".inkwell/state.db"
	DefaultDialect     = "sqlite"
	DefaultOutput      = "text"
	DefaultUpsertTable = "code_notebook_cell"
)
