package config

// Config represents the complete hoist configuration.
// It can be loaded from .hoist/config.yml with environment variable overrides.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Analyzer AnalyzerConfig `yaml:"analyzer" mapstructure:"analyzer"`
	Refactor RefactorConfig `yaml:"refactor" mapstructure:"refactor"`
	History  HistoryConfig  `yaml:"history" mapstructure:"history"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// PathsConfig defines where intermediate documents are written.
type PathsConfig struct {
	WorkDir     string `yaml:"work_dir" mapstructure:"work_dir"`         // directory for context and plan documents
	ContextFile string `yaml:"context_file" mapstructure:"context_file"` // context document name inside work_dir
	PlanFile    string `yaml:"plan_file" mapstructure:"plan_file"`       // plan document name inside work_dir
}

// AnalyzerConfig configures the external analysis step.
type AnalyzerConfig struct {
	Mode           string   `yaml:"mode" mapstructure:"mode"`                       // "system" or "embedded"
	Python         string   `yaml:"python" mapstructure:"python"`                   // interpreter for system mode
	Script         string   `yaml:"script" mapstructure:"script"`                   // analyzer script path
	Args           []string `yaml:"args" mapstructure:"args"`                       // extra script arguments
	TimeoutSeconds int      `yaml:"timeout_seconds" mapstructure:"timeout_seconds"` // 0 means no limit
}

// RefactorConfig tunes how plans are applied.
type RefactorConfig struct {
	MarkerPatterns   []string `yaml:"marker_patterns" mapstructure:"marker_patterns"`     // globs for relational markers
	DedupeSupertypes bool     `yaml:"dedupe_supertypes" mapstructure:"dedupe_supertypes"` // skip supertype links already present
}

// HistoryConfig controls the run ledger.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	DBPath  string `yaml:"db_path" mapstructure:"db_path"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json" mapstructure:"json"`   // JSON encoder instead of console
}

// Analyzer modes.
const (
	AnalyzerModeSystem   = "system"
	AnalyzerModeEmbedded = "embedded"
)

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			WorkDir:     ".hoist",
			ContextFile: "context.rcft",
			PlanFile:    "plan.json",
		},
		Analyzer: AnalyzerConfig{
			Mode:           AnalyzerModeSystem,
			Python:         "python3",
			Script:         "pipeline_rca.py",
			Args:           []string{},
			TimeoutSeconds: 0,
		},
		Refactor: RefactorConfig{
			MarkerPatterns:   []string{"rel_*", "*=>*", "R(*"},
			DedupeSupertypes: true,
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  ".hoist/history.db",
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  false,
		},
	}
}
