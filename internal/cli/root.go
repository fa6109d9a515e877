// Package cli implements the hoist command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvp-joe/project-hoist/internal/config"
	"github.com/mvp-joe/project-hoist/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hoist",
	Short: "Hoist - extract abstractions from class models",
	Long: `Hoist finds shared features across the classes of a metamodel and lifts
them into new abstract classes or interfaces.

A run loads the model, writes a relational context document, hands it to an
external analyzer, and applies the refactoring plan the analyzer produces.
The refactored model is saved next to the input with a -refactored suffix.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .hoist/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// env is what every command needs after startup.
type env struct {
	rootDir string
	cfg     *config.Config
	logger  *zap.Logger
}

// loadEnv loads project configuration and builds the logger.
func loadEnv() (*env, error) {
	rootDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return loadEnvFrom(rootDir, cfgFile, verbose)
}

func loadEnvFrom(rootDir, configFile string, debug bool) (*env, error) {
	var loader config.Loader
	if configFile != "" {
		loader = config.NewFileLoader(rootDir, configFile)
	} else {
		loader = config.NewLoader(rootDir)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Logging.JSON)
	if err != nil {
		return nil, err
	}

	return &env{rootDir: rootDir, cfg: cfg, logger: logger}, nil
}

// signalContext returns a context cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
