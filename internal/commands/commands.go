// Package commands implements the CLI subcommands that operate directly on
// shepherd's JSON files without a running manager: config inspection and
// editing, the recent-session listing, and the worktree listing.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ehayes2000/shepherd/internal/config"
	"github.com/ehayes2000/shepherd/internal/history"
	"github.com/ehayes2000/shepherd/internal/worktree"
)

// ConfigShow returns the pretty-printed config file contents.
func ConfigShow() (string, error) {
	path, err := config.Path()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Materialize defaults so there is something to show.
		if _, err := config.Load(); err != nil {
			return "", err
		}
	}
	return JSONGet(path, "")
}

// ConfigGet returns one config value by dot-notation key.
func ConfigGet(key string) (string, error) {
	path, err := config.Path()
	if err != nil {
		return "", err
	}
	return JSONGet(path, key)
}

// ConfigSet sets one config value by dot-notation key.
func ConfigSet(key, value string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if _, err := config.Load(); err != nil {
			return err
		}
	}
	return JSONSet(path, key, value)
}

// HistoryList formats the recent-session list for the repository containing
// startupPath.
func HistoryList(startupPath string) (string, error) {
	toplevel, err := worktree.RepoToplevel(startupPath)
	if err != nil {
		return "", fmt.Errorf("not in a git repository: %w", err)
	}
	repoName := filepath.Base(toplevel)

	entries := history.Load().Entries(repoName)
	if len(entries) == 0 {
		return fmt.Sprintf("no recent sessions for %s", repoName), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "recent sessions for %s:\n", repoName)
	for i, e := range entries {
		fmt.Fprintf(&sb, "  %d. %s  %s\n", i+1, e.Name, e.ProjectPath)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// WorktreeList formats the worktree directories for the repository
// containing startupPath, the same listing WorktreeCleanup shows.
func WorktreeList(cfg *config.Config, startupPath string) (string, error) {
	toplevel, err := worktree.RepoToplevel(startupPath)
	if err != nil {
		return "", fmt.Errorf("not in a git repository: %w", err)
	}
	repoName := filepath.Base(toplevel)

	entries, err := worktree.List(cfg.WorkflowsPath, repoName)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return fmt.Sprintf("no worktrees under %s", filepath.Join(cfg.WorkflowsPath, repoName)), nil
	}

	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s\t%s\n", e.Name, e.Path)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
