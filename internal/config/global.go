// Package config provides configuration loading for hoist.
//
// It supports two configuration scopes:
//
// 1. Global Configuration (~/.hoist/config.yml)
//   - Machine-wide settings shared by every project
//   - Location of the extracted embedded Python runtime
//   - Loaded via LoadGlobalConfig()
//
// 2. Project Configuration (.hoist/config.yml)
//   - Work directory and document names
//   - Analyzer mode, interpreter and script
//   - Refactoring, history and logging settings
//   - Loaded via Load()
//
// Environment Variable Convention:
//   - Prefix: HOIST_
//   - Nested fields: Use underscores (HOIST_ANALYZER_TIMEOUT_SECONDS)
//   - Automatic mapping via Viper's SetEnvKeyReplacer
package config

// GlobalConfig holds machine-wide configuration.
// Loaded from ~/.hoist/config.yml (not project .hoist/config.yml).
type GlobalConfig struct {
	Runtime RuntimeConfig `yaml:"runtime" mapstructure:"runtime"`
}

// RuntimeConfig holds settings for bundled runtimes.
type RuntimeConfig struct {
	PythonDir string `yaml:"python_dir" mapstructure:"python_dir"` // Extraction directory for embedded Python
}
