package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LoadGlobalConfig loads global configuration from ~/.hoist/config.yml.
// Returns default values if file doesn't exist (not an error).
// Environment variables override file values (HOIST_* prefix).
func LoadGlobalConfig() (*GlobalConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return loadGlobalConfigFrom(filepath.Join(home, ".hoist"))
}

func loadGlobalConfigFrom(hoistDir string) (*GlobalConfig, error) {
	v := viper.New()

	// Look for ~/.hoist/config.yml (NOT project .hoist/config.yml)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(hoistDir)

	v.SetEnvPrefix("HOIST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("runtime.python_dir")
	v.SetDefault("runtime.python_dir", filepath.Join(hoistDir, "runtime", "python"))

	// Read config (not an error if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &GlobalConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}
