package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/termsearch/termsearch/internal/config"
	"github.com/termsearch/termsearch/internal/history"
	"github.com/termsearch/termsearch/internal/logger"
	"github.com/termsearch/termsearch/internal/output"
	"github.com/termsearch/termsearch/internal/search"
	"github.com/termsearch/termsearch/internal/shell"
	"github.com/termsearch/termsearch/internal/tui"
)

var (
	version = "0.2.0"
	commit  = "release"
	date    = "2026-08-30"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger. TERMSEARCH_LOG overrides the configured level, and
	// diagnostics go to a log file: the terminal belongs to the interactive
	// session and stdout belongs to the invoking widget.
	loggerConfig := cfg.Log
	loggerConfig.Level = logger.LevelFromEnv(loggerConfig.Level)
	if err := logger.Init(&loggerConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Debug().Str("version", version).Msg("starting termsearch")

	rootCmd := &cobra.Command{
		Use:     "termsearch",
		Short:   "A minimalist and super fast terminal history search tool",
		Long: `termsearch ranks your shell history by a blend of recency and frequency and
lets you refine the list with a fuzzy query. The selected command is handed
back to the invoking shell widget, which splices it into the edit buffer.

Get started:
  termsearch init      Install the zsh widget (binds Ctrl+R)
  termsearch search    Search through the shell history`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Reload configuration when an explicit file is given
			if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				*cfg = *loaded
			}

			// Handle verbose flag
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				loggerConfig.Level = "debug"
				return logger.Init(&loggerConfig)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ~/.config/termsearch/config.toml)")

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(searchCmd(cfg))
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error().Msg("command failed")
		os.Exit(1)
	}
}

// searchCmd runs one interactive search session and writes the outcome to
// the output file. A committed selection and a cancelled session both exit
// zero; only I/O and terminal failures are fatal.
func searchCmd(cfg *config.Config) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search through the shell history",
		Long: `Search through the shell history interactively. Entries are ranked by a
blended recency/frequency score; typing refines the list with a fuzzy
subsequence match. The selection is written to the output file as a single
"commandline" record; cancelling leaves the file empty.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.GetLogger().Search()

			maxHistory, _ := cmd.Flags().GetInt("max-history")
			maxResults, _ := cmd.Flags().GetInt("max-results")

			initialQuery := ""
			if len(args) > 0 {
				initialQuery = args[0]
			}

			historyPath := cfg.History.File
			if historyPath == "" {
				var err error
				if historyPath, err = history.ResolvePath(); err != nil {
					return err
				}
			}

			agg, err := history.Load(historyPath, maxHistory)
			if err != nil {
				return err
			}
			log.Debug().Str("path", historyPath).Int("entries", agg.Len()).Msg("history ready")

			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return fmt.Errorf("standard input is not a terminal")
			}

			result, err := tui.Run(agg, tui.Options{
				InitialQuery: initialQuery,
				MaxResults:   maxResults,
				Weights: search.Weights{
					Recency:   cfg.Search.RecencyWeight,
					Frequency: cfg.Search.FrequencyWeight,
				},
				Prompt:    cfg.TUI.Prompt,
				Highlight: cfg.TUI.HighlightMatches,
			})
			if err != nil {
				return err
			}

			return output.WriteResult(outputPath, result.Command, result.Accepted)
		},
	}

	cmd.Flags().IntP("max-history", "m", cfg.History.MaxHistory, "Maximum number of history lines to read")
	cmd.Flags().IntP("max-results", "r", cfg.Search.MaxResults, "Maximum number of results to display")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file for the selected command")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// initCmd installs the zsh widget for the current shell
func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Install the zsh integration for the current shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(false)

			hookManager, err := shell.NewHookManager()
			if err != nil {
				formatter.Error("Failed to initialize: %v", err)
				return err
			}

			scriptPath, err := hookManager.Install()
			if err != nil {
				formatter.Error("Failed to install zsh integration: %v", err)
				return err
			}

			formatter.Success("Installed zsh widget to %s", scriptPath)
			formatter.Tip("Restart your terminal (or `source %s`) and press Ctrl+R.", scriptPath)
			return nil
		},
	}
}

// versionCmd prints version information
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("termsearch %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	}
}
