// Package manager provides the central state management for shepherd.
//
// The Manager is the core orchestrator owning all session state: the single
// active pair, the background pairs, and the per-session shell
// multiplexers. It coordinates between the TUI, the worktree workflow, and
// the session history store. All state changes flow through the Manager.
//
// Thread-safety is provided by the TUI event loop: every Manager method is
// called from the single manager thread. Session internals (parser, writer,
// dirty flag) carry their own synchronization against reader goroutines.
package manager

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ehayes2000/shepherd/internal/config"
	"github.com/ehayes2000/shepherd/internal/history"
	"github.com/ehayes2000/shepherd/internal/multiplexer"
	"github.com/ehayes2000/shepherd/internal/notification"
	"github.com/ehayes2000/shepherd/internal/session"
	"github.com/ehayes2000/shepherd/internal/sessionpair"
	"github.com/ehayes2000/shepherd/internal/sharedsize"
	"github.com/ehayes2000/shepherd/internal/worktree"
)

// MaxScrollback caps how far up a session view can be scrolled.
const MaxScrollback = 1000

// ClaudeCommand is the AI assistant binary spawned per session.
const ClaudeCommand = "claude"

// Workflow is the pre-session capability: given a session name it produces
// the directory the session should run in.
type Workflow interface {
	PreSessionHook(sessionName, workflowsPath, startupPath string) (*worktree.Info, error)
}

// Manager owns one active session pair, the background pairs, and the
// shell multiplexers keyed by session name.
type Manager struct {
	Config  *config.Config
	History *history.History

	// Workflow creates worktrees for new sessions.
	Workflow Workflow

	// StartupPath is where shepherd was launched; repo detection runs here.
	StartupPath string

	// RepoToplevel and RepoName describe the repository shepherd was
	// started in. Empty when outside a repository.
	RepoToplevel string
	RepoName     string

	// Size is the host terminal's inner area; every PTY resizes to it.
	Size *sharedsize.Size

	Logger *slog.Logger

	// Status is the bottom-bar message state.
	Status *StatusBar

	active      *sessionpair.ActivePair
	background  []*sessionpair.BackgroundPair
	multiplexer map[string]*multiplexer.Multiplexer
	trackers    map[string]*notification.Tracker

	// sessionCounter names blank new sessions (claude-1, claude-2, ...).
	// Monotonic; never reused even after sessions close.
	sessionCounter int

	// ShouldQuit exits the main loop on the next tick once set.
	ShouldQuit bool
}

// New creates a Manager rooted at startupPath.
func New(cfg *config.Config, hist *history.History, wf Workflow, startupPath string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		Config:      cfg,
		History:     hist,
		Workflow:    wf,
		StartupPath: startupPath,
		Size:        sharedsize.New(24, 80),
		Logger:      logger,
		Status:      NewStatusBar(),
		multiplexer: make(map[string]*multiplexer.Multiplexer),
		trackers:    make(map[string]*notification.Tracker),
	}

	if toplevel, err := worktree.RepoToplevel(startupPath); err == nil {
		m.RepoToplevel = toplevel
		m.RepoName = filepath.Base(toplevel)
	}

	return m
}

// Active returns the current active pair, or nil if none.
func (m *Manager) Active() *sessionpair.ActivePair {
	return m.active
}

// Background returns the background pairs in order. Callers must not
// mutate the slice.
func (m *Manager) Background() []*sessionpair.BackgroundPair {
	return m.background
}

// SessionCount returns the number of live sessions (active plus
// background).
func (m *Manager) SessionCount() int {
	n := len(m.background)
	if m.active != nil {
		n++
	}
	return n
}

// Multiplexer returns the shell multiplexer for the named session,
// creating it on first use.
func (m *Manager) Multiplexer(name string) *multiplexer.Multiplexer {
	mux, ok := m.multiplexer[name]
	if !ok {
		mux = multiplexer.New()
		m.multiplexer[name] = mux
	}
	return mux
}

// ActiveMultiplexer returns the active session's multiplexer, or nil when
// no session is active.
func (m *Manager) ActiveMultiplexer() *multiplexer.Multiplexer {
	if m.active == nil {
		return nil
	}
	return m.Multiplexer(m.active.Name)
}

// NextSessionName returns the next auto-generated session name.
func (m *Manager) NextSessionName() string {
	m.sessionCounter++
	return fmt.Sprintf("claude-%d", m.sessionCounter)
}

// SetTerminalDims publishes the inner terminal area. Every session and
// shell pane is proactively resized so background PTYs don't wait for
// their next output to learn the new size.
func (m *Manager) SetTerminalDims(rows, cols uint16) {
	if rows == 0 || cols == 0 {
		return
	}
	m.Size.Store(rows, cols)

	if m.active != nil {
		m.active.Claude.Resize(rows, cols)
	}
	for _, bg := range m.background {
		bg.Claude.Resize(rows, cols)
	}
	for _, mux := range m.multiplexer {
		paneRows, paneCols := paneDims(rows, cols, mux.Len())
		for _, p := range mux.Panes() {
			p.Resize(paneRows, paneCols)
		}
	}
}

// paneDims computes per-pane dimensions for n side-by-side panes with
// single-column dividers between them.
func paneDims(rows, cols uint16, n int) (uint16, uint16) {
	if n <= 1 {
		return rows, cols
	}
	width := (int(cols) - (n - 1)) / n
	if width < 1 {
		width = 1
	}
	return rows, uint16(width)
}

// spawnClaude starts a claude child in cwd. resume prepends --continue to
// the configured args.
func (m *Manager) spawnClaude(name, cwd string, resume bool) (*session.Session, error) {
	args := append([]string{}, m.Config.ClaudeArgs...)
	if resume {
		args = append([]string{"--continue"}, args...)
	}

	command := m.Config.ClaudeCommand
	if command == "" {
		command = ClaudeCommand
	}

	rows, cols := m.Size.Load()
	s, err := session.New(command, args, cwd, nil, rows, cols, m.Logger)
	if err != nil {
		return nil, fmt.Errorf("spawn claude: %w", err)
	}
	s.Name = name

	tracker := notification.NewTracker()
	s.SetOutputObserver(tracker.Observe)
	m.trackers[name] = tracker
	m.Logger.Info("spawned claude session", "name", name, "path", cwd, "resume", resume)
	return s, nil
}

// SpawnShellPane starts the user's login shell in the active session's
// worktree and adds it to the session's multiplexer.
func (m *Manager) SpawnShellPane() error {
	if m.active == nil {
		return fmt.Errorf("no active session")
	}

	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}

	mux := m.Multiplexer(m.active.Name)
	rows, cols := m.Size.Load()
	paneRows, paneCols := paneDims(rows, cols, mux.Len()+1)

	s, err := session.New(shell, nil, m.active.Path, nil, paneRows, paneCols, m.Logger)
	if err != nil {
		return fmt.Errorf("spawn shell: %w", err)
	}
	s.Name = fmt.Sprintf("%s-shell-%d", m.active.Name, mux.Len()+1)

	mux.Add(s)

	// Existing panes shrink to make room.
	for _, p := range mux.Panes() {
		p.Resize(paneRows, paneCols)
	}
	return nil
}

// Tracker returns the activity tracker for the named session, or nil.
func (m *Manager) Tracker(name string) *notification.Tracker {
	return m.trackers[name]
}

// UpdateActivity refreshes each pair's Active/Stopped state from its
// tracker.
func (m *Manager) UpdateActivity() {
	if m.active != nil {
		m.active.Activity = m.activityOf(m.active.Name)
	}
	for _, bg := range m.background {
		bg.Activity = m.activityOf(bg.Name)
	}
}

func (m *Manager) activityOf(name string) sessionpair.Activity {
	if tr := m.trackers[name]; tr != nil && tr.Stopped() {
		return sessionpair.ActivityStopped
	}
	return sessionpair.ActivityActive
}

// Quit flags the main loop to exit. Session teardown happens in Shutdown.
func (m *Manager) Quit() {
	m.ShouldQuit = true
}

// Shutdown tears down every session and pane. Called once on exit.
func (m *Manager) Shutdown() {
	if m.active != nil {
		m.active.Claude.Shutdown()
		m.active = nil
	}
	for _, bg := range m.background {
		bg.Claude.Shutdown()
	}
	m.background = nil
	for _, mux := range m.multiplexer {
		mux.Shutdown()
	}
	m.multiplexer = make(map[string]*multiplexer.Multiplexer)
}
