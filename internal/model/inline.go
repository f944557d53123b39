package model

import (
	"log/slog"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/crabwalk-labs/crabwalk/internal/config"
)

// Inline directives configure a single unit from inside its SQL file:
//
//	-- @config: {output: {type: parquet, location: exports/{table_name}.parquet}}
//
// The payload is single-line YAML. Several directives in one file merge
// top to bottom, later ones overriding earlier fields. A payload that
// does not parse is logged and ignored so a typo never blocks a run.

var inlineDirective = regexp.MustCompile(`(?m)^\s*--\s*@config:\s*(.+)$`)

type inlinePayload struct {
	Output *config.OutputConfig `yaml:"output"`
}

// extractInlineOutput returns the merged output override for the file,
// or nil when no usable directive exists.
func extractInlineOutput(sql string, logger *slog.Logger) *config.OutputConfig {
	var merged *config.OutputConfig
	for _, match := range inlineDirective.FindAllStringSubmatch(sql, -1) {
		payload := strings.TrimSpace(match[1])

		var parsed inlinePayload
		if err := yaml.Unmarshal([]byte(payload), &parsed); err != nil {
			logger.Warn("ignoring malformed @config directive", "payload", payload, "error", err)
			continue
		}
		if parsed.Output == nil {
			continue
		}
		if parsed.Output.Type != "" && !parsed.Output.Type.Valid() {
			logger.Warn("ignoring @config directive with unknown output type", "type", string(parsed.Output.Type))
			continue
		}
		merged = config.MergeOutput(merged, parsed.Output)
	}
	return merged
}
