package tui

// Mode is the UI state machine. Exactly one mode is active at a time;
// every mode except ModeNormal renders as an overlay above the session
// view.
type Mode int

const (
	ModeNormal Mode = iota
	ModeHelp
	ModeSelector
	ModeNewSession
	ModeKillConfirm
	ModeQuitConfirm
	ModeWorktreeCleanup
	ModeDeleteConfirm
)

func (m Mode) String() string {
	switch m {
	case ModeHelp:
		return "help"
	case ModeSelector:
		return "selector"
	case ModeNewSession:
		return "new_session"
	case ModeKillConfirm:
		return "kill_confirm"
	case ModeQuitConfirm:
		return "quit_confirm"
	case ModeWorktreeCleanup:
		return "worktree_cleanup"
	case ModeDeleteConfirm:
		return "delete_confirm"
	default:
		return "normal"
	}
}
