package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kitools/ki/internal/config"
	"github.com/kitools/ki/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Display the settings ki will use, after applying the config file
and KI_* environment overrides on top of the defaults.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		path, err := config.Path()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error locating config: %v\n", err)
			os.Exit(1)
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			fmt.Printf("File: %s %s\n", path, ui.RenderMuted("(not created, using defaults)"))
		} else {
			fmt.Printf("File: %s\n", path)
		}
		fmt.Printf("Branch: %s\n", cfg.Branch)
		fmt.Printf("Author name: %s\n", cfg.AuthorName)
		fmt.Printf("Author email: %s\n", cfg.AuthorEmail)
		fmt.Printf("Log file: %s\n", cfg.LogFile)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := config.Path()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error locating config: %v\n", err)
			os.Exit(1)
		}
		if err := config.Init(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Wrote %s\n", ui.RenderPass("✓"), path)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
