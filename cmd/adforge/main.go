package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"adforge/internal/config"
	"adforge/internal/logging"
)

var (
	// Global flags
	verbose   bool
	workspace string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "adforge",
	Short: "adforge - AI campaign asset generation pipeline",
	Long: `adforge turns a campaign's objective, brand identity, and inspiration
into a set of generated marketing images.

The pipeline runs in stages:
  1. Conductor: analyze brand + inspiration, synthesize a creative brief
  2. Generation: parallel image generation with bounded retries
  3. Quality control: brand alignment, visual quality, accessibility, specs
  4. Persistence: results stored for review

Start with 'adforge init', then 'adforge campaign create' and
'adforge campaign generate'.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if err := logging.Initialize(resolveWorkspace()); err != nil {
			logger.Warn("category logging unavailable", zap.Error(err))
		}
		if verbose {
			logging.SetDebugMode(true)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current directory)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(campaignCmd)
	rootCmd.AddCommand(assetCmd)
}

// resolveWorkspace returns the effective workspace directory.
func resolveWorkspace() string {
	if workspace != "" {
		return workspace
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// configPath returns the workspace-relative config file path.
func configPath() string {
	return filepath.Join(resolveWorkspace(), ".adforge", "config.yaml")
}

// loadConfig loads the workspace config with env overrides applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
