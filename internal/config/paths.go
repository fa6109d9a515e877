package config

import (
	"path/filepath"
	"time"
)

// ContextPath returns the context document path, resolved against rootDir.
func (c *Config) ContextPath(rootDir string) string {
	return resolve(rootDir, filepath.Join(c.Paths.WorkDir, c.Paths.ContextFile))
}

// PlanPath returns the plan document path, resolved against rootDir.
func (c *Config) PlanPath(rootDir string) string {
	return resolve(rootDir, filepath.Join(c.Paths.WorkDir, c.Paths.PlanFile))
}

// WorkDir returns the work directory, resolved against rootDir.
func (c *Config) WorkDir(rootDir string) string {
	return resolve(rootDir, c.Paths.WorkDir)
}

// HistoryPath returns the history database path, resolved against rootDir.
func (c *Config) HistoryPath(rootDir string) string {
	return resolve(rootDir, c.History.DBPath)
}

// ScriptPath returns the analyzer script path, resolved against rootDir.
func (c *Config) ScriptPath(rootDir string) string {
	return resolve(rootDir, c.Analyzer.Script)
}

// AnalyzerTimeout converts timeout_seconds to a duration.
func (c *Config) AnalyzerTimeout() time.Duration {
	return time.Duration(c.Analyzer.TimeoutSeconds) * time.Second
}

func resolve(rootDir, path string) string {
	if filepath.IsAbs(path) || rootDir == "" {
		return path
	}
	return filepath.Join(rootDir, path)
}
