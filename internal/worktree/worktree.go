// Package worktree implements the pre-session git worktree workflow: detect
// the current repository and its main branch, fetch it, and create a fresh
// worktree + branch for a new session. It also lists and deletes worktrees
// for the WorktreeCleanup flow.
package worktree

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Info is the outcome of a successful pre-session hook: the worktree path
// the session should be spawned in.
type Info struct {
	Path       string
	Branch     string
	RepoName   string
	MainBranch string
}

// Workflow runs the pre-session git worktree creation algorithm against a
// real git checkout by shelling out to the git binary.
type Workflow struct {
	logger *slog.Logger
}

// New returns a Workflow.
func New(logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{logger: logger}
}

// PreSessionHook prepares the directory a new session runs in:
//  1. rev-parse the toplevel of the repo at startupPath.
//  2. Detect the main branch (main, falling back to master).
//  3. Compute workflowsPath/repoName/sessionName.
//  4. Fetch origin/<mainBranch>.
//  5. git worktree add -b sessionName <path> origin/<mainBranch>.
//  6. Best-effort copy of developer-local dotfiles listed in .shepherd_copy.
func (w *Workflow) PreSessionHook(sessionName, workflowsPath, startupPath string) (*Info, error) {
	repoToplevel, err := revParseToplevel(startupPath)
	if err != nil {
		return nil, fmt.Errorf("not in a git repository: %w", err)
	}
	repoName := filepath.Base(repoToplevel)

	mainBranch, err := detectMainBranch(repoToplevel)
	if err != nil {
		return nil, err
	}

	worktreePath := filepath.Join(workflowsPath, repoName, sessionName)

	if err := runGit(repoToplevel, "fetch", "origin", mainBranch); err != nil {
		return nil, fmt.Errorf("failed to fetch origin/%s: %w", mainBranch, err)
	}

	if err := runGit(repoToplevel, "worktree", "add", "-b", sessionName, worktreePath, "origin/"+mainBranch); err != nil {
		return nil, fmt.Errorf("failed to create worktree: %w", err)
	}

	if err := w.copyLocalDotfiles(repoToplevel, worktreePath); err != nil {
		w.logger.Warn("copying local dotfiles into worktree", "error", err)
	}

	return &Info{
		Path:       worktreePath,
		Branch:     sessionName,
		RepoName:   repoName,
		MainBranch: mainBranch,
	}, nil
}

// revParseToplevel returns the absolute path of the repository containing
// dir.
func revParseToplevel(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// detectMainBranch tries "main" then falls back to "master", per the
// repo's convention.
func detectMainBranch(repoPath string) (string, error) {
	for _, candidate := range []string{"main", "master"} {
		cmd := exec.Command("git", "rev-parse", "--verify", candidate)
		cmd.Dir = repoPath
		if err := cmd.Run(); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not find main or master branch")
}

func runGit(dir string, args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s", strings.TrimSpace(string(out)))
	}
	return nil
}

// copyDotfilesName is the per-repo list of glob patterns (one per line) for
// untracked developer-local files (.env, editor settings) to copy from the
// repo toplevel into every freshly created worktree.
const copyDotfilesName = ".shepherd_copy"

func (w *Workflow) copyLocalDotfiles(repoToplevel, worktreePath string) error {
	patterns, err := readCopyPatterns(repoToplevel)
	if err != nil {
		return err
	}

	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			w.logger.Warn("invalid glob in "+copyDotfilesName, "pattern", pattern, "error", err)
			continue
		}

		entries, err := os.ReadDir(repoToplevel)
		if err != nil {
			return fmt.Errorf("reading repo toplevel: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !g.Match(entry.Name()) {
				continue
			}
			if err := copyIfAbsent(filepath.Join(repoToplevel, entry.Name()), filepath.Join(worktreePath, entry.Name())); err != nil {
				w.logger.Warn("copying dotfile into worktree", "file", entry.Name(), "error", err)
			}
		}
	}
	return nil
}

func readCopyPatterns(repoToplevel string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(repoToplevel, copyDotfilesName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns, nil
}

func copyIfAbsent(src, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	return os.WriteFile(dest, data, 0o644)
}

// Entry describes one worktree directory for the WorktreeCleanup listing.
type Entry struct {
	Path string
	Name string
	Live bool
}

// List returns every worktree directory under workflowsPath/repoName,
// regardless of whether git still considers it a registered worktree
// (orphaned directories are listed too so they can be cleaned up).
func List(workflowsPath, repoName string) ([]Entry, error) {
	root := filepath.Join(workflowsPath, repoName)
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing worktrees: %w", err)
	}

	var result []Entry
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		result = append(result, Entry{
			Path: filepath.Join(root, e.Name()),
			Name: e.Name(),
		})
	}
	return result, nil
}

// Delete removes a worktree: `git worktree remove`, falling back to a
// recursive directory removal if the directory still exists afterward (e.g.
// the worktree was already unregistered), then deletes the branch.
func Delete(repoToplevel, worktreePath, branchName string) error {
	cmd := exec.Command("git", "worktree", "remove", worktreePath, "--force")
	cmd.Dir = repoToplevel
	if out, err := cmd.CombinedOutput(); err != nil {
		_ = out // git worktree remove failing is expected for orphaned dirs; fall through to rm -rf
	}

	if _, err := os.Stat(worktreePath); err == nil {
		if err := os.RemoveAll(worktreePath); err != nil {
			return fmt.Errorf("removing worktree directory %s: %w", worktreePath, err)
		}
	}

	branchCmd := exec.Command("git", "branch", "-D", branchName)
	branchCmd.Dir = repoToplevel
	_ = branchCmd.Run() // best-effort: branch may already be gone or never existed

	return nil
}

// RepoToplevel resolves the git repository toplevel for dir. Exported for
// callers (the manager, the CLI) that need it outside PreSessionHook.
func RepoToplevel(dir string) (string, error) {
	return revParseToplevel(dir)
}
