// Shepherd - worktree-per-session manager for AI coding assistants.
//
// This is the main entry point for the shepherd CLI. Launched without
// arguments it resumes the current repository's most recent session (or
// prompts for a new one) and runs the TUI; subcommands inspect the JSON
// files under ~/.shepherd/ without starting a manager.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ehayes2000/shepherd/internal/commands"
	"github.com/ehayes2000/shepherd/internal/config"
	"github.com/ehayes2000/shepherd/internal/eventlog"
	"github.com/ehayes2000/shepherd/internal/history"
	"github.com/ehayes2000/shepherd/internal/manager"
	"github.com/ehayes2000/shepherd/internal/tui"
	"github.com/ehayes2000/shepherd/internal/worktree"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Restore the terminal if we crash while in raw/alt-screen mode; the
	// deferred screen.Fini never runs past a panic in another goroutine.
	defer func() {
		if r := recover(); r != nil {
			fmt.Print("\033[?1049l") // Exit alt screen
			fmt.Print("\033[?1003l") // Disable mouse capture
			fmt.Print("\033[?25h")   // Show cursor
			fmt.Print("\033[0m")     // Reset colors

			fmt.Fprintf(os.Stderr, "\n\nPANIC: %v\n", r)
			os.Exit(1)
		}
	}()

	rootCmd := &cobra.Command{
		Use:     "shepherd",
		Short:   "Run many claude sessions, each in its own git worktree",
		Version: Version,
		RunE:    runManager,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := commands.ConfigShow()
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value by dot-notation key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := commands.ConfigGet(args[0])
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value by dot-notation key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.ConfigSet(args[0], args[1])
		},
	})
	rootCmd.AddCommand(configCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "history",
		Short: "Print the current repository's recent sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			out, err := commands.HistoryList(cwd)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "worktrees",
		Short: "List worktree directories for the current repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			out, err := commands.WorktreeList(cfg, cwd)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runManager is the argumentless launch path: set up logging, load state,
// and hand the terminal to the TUI until quit.
func runManager(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("shepherd requires a terminal")
	}

	logger, err := eventlog.Setup()
	if err != nil {
		// Logging is not worth refusing to start over.
		logger = slog.Default()
		fmt.Fprintf(os.Stderr, "warning: event log unavailable: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	hist := history.Load()
	wf := worktree.New(logger)
	mgr := manager.New(cfg, hist, wf, cwd, logger)

	ui, err := tui.New(mgr)
	if err != nil {
		return fmt.Errorf("initialize terminal: %w", err)
	}

	logger.Info("shepherd started", "version", Version, "repo", mgr.RepoName)
	defer logger.Info("shepherd exited")

	return ui.Run()
}
