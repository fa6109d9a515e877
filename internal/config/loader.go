package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader that reads an explicit config file instead of
// searching .hoist/ under rootDir.
func NewFileLoader(rootDir, configFile string) Loader {
	return &loader{
		rootDir:    rootDir,
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (HOIST_*)
// 2. Config file (.hoist/config.yml or .hoist/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".hoist"))
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("HOIST")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., HOIST_ANALYZER_PYTHON)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// bindEnvVars binds environment variables to config keys.
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("paths.work_dir")
	v.BindEnv("paths.context_file")
	v.BindEnv("paths.plan_file")

	v.BindEnv("analyzer.mode")
	v.BindEnv("analyzer.python")
	v.BindEnv("analyzer.script")
	v.BindEnv("analyzer.timeout_seconds")

	v.BindEnv("refactor.dedupe_supertypes")

	v.BindEnv("history.enabled")
	v.BindEnv("history.db_path")

	v.BindEnv("logging.level")
	v.BindEnv("logging.json")
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.work_dir", defaults.Paths.WorkDir)
	v.SetDefault("paths.context_file", defaults.Paths.ContextFile)
	v.SetDefault("paths.plan_file", defaults.Paths.PlanFile)

	v.SetDefault("analyzer.mode", defaults.Analyzer.Mode)
	v.SetDefault("analyzer.python", defaults.Analyzer.Python)
	v.SetDefault("analyzer.script", defaults.Analyzer.Script)
	v.SetDefault("analyzer.args", defaults.Analyzer.Args)
	v.SetDefault("analyzer.timeout_seconds", defaults.Analyzer.TimeoutSeconds)

	v.SetDefault("refactor.marker_patterns", defaults.Refactor.MarkerPatterns)
	v.SetDefault("refactor.dedupe_supertypes", defaults.Refactor.DedupeSupertypes)

	v.SetDefault("history.enabled", defaults.History.Enabled)
	v.SetDefault("history.db_path", defaults.History.DBPath)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.json", defaults.Logging.JSON)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
