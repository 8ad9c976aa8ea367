package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kitools/ki/internal/clone"
	"github.com/kitools/ki/internal/config"
	"github.com/kitools/ki/internal/ui"
)

var (
	cloneBranch  string
	cloneLogFile string
)

var cloneCmd = &cobra.Command{
	Use:   "clone <collection> [directory]",
	Short: "Clone a collection into a new git repository",
	Long: `Clone an Anki collection file into a directory.

The directory defaults to the collection file name without its extension,
created under the current working directory. It must be empty or absent.

The clone writes one markdown file per note, keeps a backup of the
collection under .ki/backups, and finishes with a single initial commit
tagged ` + clone.TagName + `.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		if cloneBranch != "" {
			cfg.Branch = cloneBranch
		}
		if cloneLogFile != "" {
			cfg.LogFile = cloneLogFile
		}

		target := ""
		if len(args) == 2 {
			target = args[1]
		}

		progress := ui.NewProgress(os.Stderr, "Writing notes")
		res, err := clone.Clone(context.Background(), clone.Options{
			Source:      args[0],
			Target:      target,
			Branch:      cfg.Branch,
			AuthorName:  cfg.AuthorName,
			AuthorEmail: cfg.AuthorEmail,
			Logger:      newCloneLogger(cfg),
			Progress:    progress.Update,
		})
		progress.Done()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to clone: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Cloned %d notes into %s\n", ui.RenderPass("✓"), res.NotesWritten, res.Target)
		fmt.Printf("   Decks: %d\n", res.DeckCount)
		fmt.Printf("   Commit: %s\n", res.Commit)
		fmt.Printf("   Collection: %s\n", ui.RenderMuted(res.MD5))
		if len(res.Warnings) > 0 {
			fmt.Printf("%s Finished with %d warnings\n", ui.RenderWarn("⚠"), len(res.Warnings))
		}
	},
}

// newCloneLogger routes clone diagnostics to the configured log file,
// falling back to stderr.
func newCloneLogger(cfg config.Config) *log.Logger {
	if cfg.LogFile == "" {
		return log.New(os.Stderr, "[clone] ", log.LstdFlags)
	}
	return log.New(&lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10,
		MaxBackups: 3,
	}, "[clone] ", log.LstdFlags)
}

func init() {
	cloneCmd.Flags().StringVar(&cloneBranch, "branch", "", "initial branch name (overrides config)")
	cloneCmd.Flags().StringVar(&cloneLogFile, "log-file", "", "append clone logs to this file (overrides config)")
	rootCmd.AddCommand(cloneCmd)
}
