package manager

import (
	"fmt"
	"strings"

	"github.com/ehayes2000/shepherd/internal/worktree"
)

// LivePaths returns the set of worktree paths with live sessions, for
// marking entries ACTIVE in the cleanup listing.
func (m *Manager) LivePaths() map[string]bool {
	paths := make(map[string]bool)
	if m.active != nil {
		paths[m.active.Path] = true
	}
	for _, bg := range m.background {
		paths[bg.Path] = true
	}
	return paths
}

// ListWorktrees returns the cleanup listing for the current repo, with
// live sessions marked.
func (m *Manager) ListWorktrees() ([]worktree.Entry, error) {
	if m.RepoName == "" {
		return nil, fmt.Errorf("not in a git repository")
	}

	entries, err := worktree.List(m.Config.WorkflowsPath, m.RepoName)
	if err != nil {
		return nil, err
	}

	live := m.LivePaths()
	for i := range entries {
		entries[i].Live = live[entries[i].Path]
	}
	return entries, nil
}

// DeleteWorktrees removes the given worktree entries. Live sessions at any
// of the paths are killed first so git never removes a directory out from
// under a running child. All deletions are attempted; per-item errors are
// aggregated into one status-bar message.
func (m *Manager) DeleteWorktrees(entries []worktree.Entry) {
	paths := make(map[string]bool, len(entries))
	for _, e := range entries {
		paths[e.Path] = true
	}

	if killed := m.killSessionsAt(paths); len(killed) > 0 {
		m.Logger.Info("killed sessions for worktree deletion", "names", killed)
	}

	var errs []string
	deleted := 0
	for _, e := range entries {
		if err := worktree.Delete(m.RepoToplevel, e.Path, e.Name); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", e.Name, err))
			m.Logger.Warn("deleting worktree", "path", e.Path, "error", err)
			continue
		}
		deleted++
		m.History.Remove(m.RepoName, e.Path)
	}

	if err := m.History.Save(); err != nil {
		m.Logger.Warn("saving history after cleanup", "error", err)
	}

	if len(errs) > 0 {
		m.Status.Error(fmt.Sprintf("Deleted %d worktree(s); failed: %s", deleted, strings.Join(errs, "; ")))
		return
	}
	m.Status.Info(fmt.Sprintf("Deleted %d worktree(s)", deleted))
}
