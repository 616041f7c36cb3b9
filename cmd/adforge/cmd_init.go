package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"adforge/internal/config"
)

// initCmd writes a default config file into the workspace.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an adforge workspace",
	Long: `Creates .adforge/config.yaml with default settings in the workspace.

API keys are read from the environment (OPENAI_API_KEY or GEMINI_API_KEY for
image generation, ANTHROPIC_API_KEY for brief construction), not stored in
the config file.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("workspace already initialized: %s exists", path)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Println(passStyle.Render("Initialized adforge workspace"))
	fmt.Printf("%s %s\n", labelStyle.Render("Config:"), path)
	fmt.Printf("%s %s\n", labelStyle.Render("Database:"), cfg.Store.DatabasePath)
	return nil
}
