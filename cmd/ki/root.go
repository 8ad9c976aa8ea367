package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ki",
	Short: "Version control for flashcard collections",
	Long: `ki converts an Anki-style collection database into a git repository.

Each note becomes a markdown file inside the directory tree of its deck,
ready to edit, diff, and share like any other text.

Example:
  ki clone ~/.local/share/Anki2/User/collection.anki2 my-decks`,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
