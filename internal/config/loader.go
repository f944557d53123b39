package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey and configKey store run-wide values on the command
// context. Commands fetch them through GetLogger/GetConfig to avoid an
// import cycle with the cli package.
type (
	loggerKey struct{}
	configKey struct{}
)

// LoggerKey returns the context key used for storing the logger.
func LoggerKey() interface{} {
	return loggerKey{}
}

// ConfigKey returns the context key used for storing the loaded config.
func ConfigKey() interface{} {
	return configKey{}
}

// GetConfig retrieves the loaded configuration from the command
// context, or nil when none was stored.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return nil
}

// GetLogger retrieves the logger from the command context, falling
// back to a discard logger.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// findConfigFile picks the config file to use.
// Priority: explicit path > crabwalk.yaml > crabwalk.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"crabwalk.yaml", "crabwalk.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load builds the configuration with precedence (highest to lowest):
// flags > env vars (CRABWALK_ prefix) > config file > defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"sql_dir":     DefaultSQLDir,
		"database":    DefaultDatabase,
		"schema":      DefaultSchema,
		"dialect":     DefaultDialect,
		"output.type": string(OutputTable),
		"verbose":     false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if used := findConfigFile(cfgFile); used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment variables: CRABWALK_SQL_DIR -> sql_dir,
	// CRABWALK_OUTPUT__TYPE -> output.type
	if err := k.Load(env.Provider("CRABWALK_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "CRABWALK_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			// --output-type and --output-location live under the
			// output subtree.
			switch key {
			case "output_type":
				return "output.type", posflag.FlagVal(flags, f)
			case "output_location":
				return "output.location", posflag.FlagVal(flags, f)
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	expandS3EnvVars(cfg.S3)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with the environment value, leaving
// the pattern untouched when the variable is unset.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if val := os.Getenv(name); val != "" {
			return val
		}
		return match
	})
}

// expandS3EnvVars expands environment variables in credential fields so
// secrets can stay out of the config file.
func expandS3EnvVars(s3 *S3Config) {
	if s3 == nil {
		return
	}
	s3.AccessKey = expandEnvVars(s3.AccessKey)
	s3.SecretKey = expandEnvVars(s3.SecretKey)
	s3.Bucket = expandEnvVars(s3.Bucket)
	s3.Endpoint = expandEnvVars(s3.Endpoint)
}
