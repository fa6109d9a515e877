package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrInvalidMode indicates an unsupported analyzer mode
	ErrInvalidMode = errors.New("invalid analyzer mode")

	// ErrEmptyScript indicates a missing analyzer script
	ErrEmptyScript = errors.New("empty analyzer script")

	// ErrEmptyPython indicates a missing interpreter in system mode
	ErrEmptyPython = errors.New("empty python interpreter")

	// ErrInvalidTimeout indicates a negative analyzer timeout
	ErrInvalidTimeout = errors.New("invalid analyzer timeout")

	// ErrEmptyPath indicates a missing work directory or document name
	ErrEmptyPath = errors.New("empty path")

	// ErrInvalidPattern indicates a marker pattern that does not compile
	ErrInvalidPattern = errors.New("invalid marker pattern")

	// ErrInvalidLogLevel indicates an unknown log level
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}
	if err := validateAnalyzer(&cfg.Analyzer); err != nil {
		errs = append(errs, err)
	}
	if err := validateRefactor(&cfg.Refactor); err != nil {
		errs = append(errs, err)
	}
	if cfg.History.Enabled && strings.TrimSpace(cfg.History.DBPath) == "" {
		errs = append(errs, fmt.Errorf("%w: history.db_path is required when history is enabled", ErrEmptyPath))
	}
	if err := validateLogging(&cfg.Logging); err != nil {
		errs = append(errs, err)
	}

	return joinErrors(errs)
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.WorkDir) == "" {
		errs = append(errs, fmt.Errorf("%w: paths.work_dir is required", ErrEmptyPath))
	}
	if strings.TrimSpace(cfg.ContextFile) == "" {
		errs = append(errs, fmt.Errorf("%w: paths.context_file is required", ErrEmptyPath))
	}
	if strings.TrimSpace(cfg.PlanFile) == "" {
		errs = append(errs, fmt.Errorf("%w: paths.plan_file is required", ErrEmptyPath))
	}

	return joinErrors(errs)
}

func validateAnalyzer(cfg *AnalyzerConfig) error {
	var errs []error

	mode := strings.ToLower(cfg.Mode)
	if mode != AnalyzerModeSystem && mode != AnalyzerModeEmbedded {
		errs = append(errs, fmt.Errorf("%w: must be 'system' or 'embedded', got '%s'", ErrInvalidMode, cfg.Mode))
	}
	if mode == AnalyzerModeSystem && strings.TrimSpace(cfg.Python) == "" {
		errs = append(errs, fmt.Errorf("%w: python is required in system mode", ErrEmptyPython))
	}
	if strings.TrimSpace(cfg.Script) == "" {
		errs = append(errs, fmt.Errorf("%w: script is required", ErrEmptyScript))
	}
	if cfg.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("%w: timeout_seconds cannot be negative, got %d", ErrInvalidTimeout, cfg.TimeoutSeconds))
	}

	return joinErrors(errs)
}

func validateRefactor(cfg *RefactorConfig) error {
	var errs []error

	for _, pattern := range cfg.MarkerPatterns {
		if _, err := glob.Compile(pattern); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	return joinErrors(errs)
}

func validateLogging(cfg *LoggingConfig) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("%w: must be debug, info, warn or error, got '%s'", ErrInvalidLogLevel, cfg.Level)
	}
}

// joinErrors combines multiple errors into a single error. A single error is
// returned as is.
func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errors.Join(errs...)
	}
}
