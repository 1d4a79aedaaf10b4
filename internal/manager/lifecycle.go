// Session lifecycle: creating sessions through the worktree workflow,
// resuming the most recent one on startup, switching the foreground
// session, and killing sessions.
package manager

import (
	"fmt"
	"os"

	"github.com/ehayes2000/shepherd/internal/sessionpair"
)

// NewSession runs the pre-session hook for name, records the session in
// history, spawns claude in the fresh worktree, and makes it active. The
// previous active session is backgrounded.
func (m *Manager) NewSession(name string) error {
	info, err := m.Workflow.PreSessionHook(name, m.Config.WorkflowsPath, m.StartupPath)
	if err != nil {
		return err
	}
	return m.startSessionAt(name, info.Path, false)
}

// StartSessionAt spawns claude at an existing path (a worktree directory
// picked from the selector) and makes it active.
func (m *Manager) StartSessionAt(name, path string, resume bool) error {
	return m.startSessionAt(name, path, resume)
}

func (m *Manager) startSessionAt(name, path string, resume bool) error {
	s, err := m.spawnClaude(name, path, resume)
	if err != nil {
		return err
	}

	if m.RepoName != "" {
		m.History.SetRecentSession(m.RepoName, name, path)
		if err := m.History.Save(); err != nil {
			m.Logger.Warn("saving history", "error", err)
		}
	}

	if m.active != nil {
		m.background = append(m.background, m.active.Detach())
	}
	m.active = sessionpair.New(name, path, s, resume)
	return nil
}

// ResumeOnStartup checks history for the current repo's most recent
// session. If its worktree still exists, claude is respawned there with
// --continue. Returns false when there is nothing to resume, in which case
// the caller opens the NewSession dialog.
func (m *Manager) ResumeOnStartup() bool {
	if m.RepoName == "" {
		return false
	}

	entry, ok := m.History.MostRecent(m.RepoName)
	if !ok {
		return false
	}
	if _, err := os.Stat(entry.ProjectPath); err != nil {
		return false
	}

	if err := m.startSessionAt(entry.Name, entry.ProjectPath, true); err != nil {
		m.Logger.Warn("resume on startup", "name", entry.Name, "error", err)
		return false
	}
	return true
}

// SwitchToSessionByName makes the named background session active. The
// current active session is detached into the background. No-op (returning
// true) when the name is already active; returns false when the name is
// unknown.
func (m *Manager) SwitchToSessionByName(name string) bool {
	if m.active != nil && m.active.Name == name {
		return true
	}

	for i, bg := range m.background {
		if bg.Name != name {
			continue
		}
		m.background = append(m.background[:i], m.background[i+1:]...)
		if m.active != nil {
			m.background = append(m.background, m.active.Detach())
		}
		m.active = bg.Attach()
		return true
	}
	return false
}

// KillActive shuts down the active session and its shell panes. The
// session's multiplexer and tracker are dropped with it.
func (m *Manager) KillActive() {
	if m.active == nil {
		return
	}

	name := m.active.Name
	m.active.Claude.Shutdown()
	m.active = nil

	if mux, ok := m.multiplexer[name]; ok {
		mux.Shutdown()
		delete(m.multiplexer, name)
	}
	delete(m.trackers, name)

	m.Logger.Info("killed session", "name", name)
}

// killSessionsAt shuts down any live session (active or background) whose
// path is in the deletion set, so worktree removal never orphans a running
// child. Returns the names of the sessions killed.
func (m *Manager) killSessionsAt(paths map[string]bool) []string {
	var killed []string

	if m.active != nil && paths[m.active.Path] {
		killed = append(killed, m.active.Name)
		m.KillActive()
	}

	remaining := m.background[:0]
	for _, bg := range m.background {
		if !paths[bg.Path] {
			remaining = append(remaining, bg)
			continue
		}
		killed = append(killed, bg.Name)
		bg.Claude.Shutdown()
		if mux, ok := m.multiplexer[bg.Name]; ok {
			mux.Shutdown()
			delete(m.multiplexer, bg.Name)
		}
		delete(m.trackers, bg.Name)
	}
	m.background = remaining

	return killed
}

// restartActive replaces the dead active claude with a fresh one (no
// --continue) at the same name and path.
func (m *Manager) restartActive() error {
	name, path := m.active.Name, m.active.Path
	m.active.Claude.Shutdown()

	s, err := m.spawnClaude(name, path, false)
	if err != nil {
		m.active = nil
		return fmt.Errorf("restart session %s: %w", name, err)
	}

	m.active = sessionpair.New(name, path, s, false)
	return nil
}
