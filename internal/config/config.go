// Package config defines the workspace configuration and loads it from
// file, environment and flags.
package config

import "fmt"

// OutputType selects how a unit's result is materialized.
type OutputType string

const (
	OutputTable   OutputType = "table"
	OutputView    OutputType = "view"
	OutputParquet OutputType = "parquet"
	OutputCSV     OutputType = "csv"
	OutputJSON    OutputType = "json"
)

// Valid reports whether the output type is one of the known kinds.
func (t OutputType) Valid() bool {
	switch t {
	case OutputTable, OutputView, OutputParquet, OutputCSV, OutputJSON:
		return true
	}
	return false
}

// IsFile reports whether the output type exports to a file instead of
// a database object.
func (t OutputType) IsFile() bool {
	switch t {
	case OutputParquet, OutputCSV, OutputJSON:
		return true
	}
	return false
}

// Extension returns the file extension for file output types.
func (t OutputType) Extension() string {
	switch t {
	case OutputParquet:
		return "parquet"
	case OutputCSV:
		return "csv"
	case OutputJSON:
		return "json"
	}
	return ""
}

// OutputConfig describes where and how a unit materializes. A nil
// field means "inherit": inline SQL directives override the workspace
// default field by field.
type OutputConfig struct {
	Type      OutputType `koanf:"type" yaml:"type"`
	Location  string     `koanf:"location" yaml:"location"`
	KeepTable bool       `koanf:"keep_table" yaml:"keep_table"`
}

// MergeOutput overlays override onto base. Empty override fields keep
// the base value; KeepTable is sticky once either side sets it.
func MergeOutput(base, override *OutputConfig) *OutputConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}
	merged := *base
	if override.Type != "" {
		merged.Type = override.Type
	}
	if override.Location != "" {
		merged.Location = override.Location
	}
	if override.KeepTable {
		merged.KeepTable = true
	}
	return &merged
}

// S3Config holds the credentials and location for database backups.
// Endpoint is optional and enables S3-compatible stores (MinIO,
// Cloudflare R2) with path-style addressing.
type S3Config struct {
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	DBFolder  string `koanf:"db_folder"`
}

// Config is the resolved workspace configuration.
type Config struct {
	// SQLDir is the directory scanned for .sql units. A single .sql
	// file path is also accepted by the commands that take a path
	// argument.
	SQLDir string `koanf:"sql_dir"`
	// Database is the DuckDB database path (or :memory:).
	Database string `koanf:"database"`
	// Schema is created if missing and set as the default schema
	// before any unit runs.
	Schema string `koanf:"schema"`
	// Dialect selects the SQL dialect; "duckdb" enables the engine's
	// native parser.
	Dialect string `koanf:"dialect"`
	// Output is the workspace-wide default materialization.
	Output OutputConfig `koanf:"output"`
	// S3 configures backup/restore. Nil disables both commands.
	S3      *S3Config `koanf:"s3"`
	Verbose bool      `koanf:"verbose"`
}

// Defaults used when neither file, env nor flags set a key.
const (
	DefaultSQLDir   = "sql"
	DefaultDatabase = "crabwalk.db"
	DefaultSchema   = "transform"
	DefaultDialect  = "duckdb"
)

// Validate checks the parts of the configuration that commands rely on.
func (c *Config) Validate() error {
	if !c.Output.Type.Valid() {
		return fmt.Errorf("invalid output type %q (want table, view, parquet, csv or json)", c.Output.Type)
	}
	if c.Database == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.Schema == "" {
		return fmt.Errorf("schema must not be empty")
	}
	return nil
}
