package tui

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/ehayes2000/shepherd/internal/worktree"
)

// cleanupState is the open WorktreeCleanup dialog: the worktree listing
// with live sessions marked, checkbox selection, and an incremental
// filter.
type cleanupState struct {
	entries []worktree.Entry
	checked map[string]bool
	query   string
	cursor  int

	// pending holds the deletion set while DeleteConfirm is showing.
	pending []worktree.Entry
}

func (t *TUI) openCleanup() {
	entries, err := t.mgr.ListWorktrees()
	if err != nil {
		t.mgr.Status.Error(err.Error())
		return
	}

	t.cleanup = &cleanupState{
		entries: entries,
		checked: make(map[string]bool),
	}
	t.mode = ModeWorktreeCleanup
}

func (s *cleanupState) filtered() []worktree.Entry {
	if s.query == "" {
		return s.entries
	}
	q := strings.ToLower(s.query)
	var out []worktree.Entry
	for _, e := range s.entries {
		if strings.Contains(strings.ToLower(e.Name), q) || strings.Contains(strings.ToLower(e.Path), q) {
			out = append(out, e)
		}
	}
	return out
}

func (s *cleanupState) clampCursor() {
	n := len(s.filtered())
	if n == 0 {
		s.cursor = 0
		return
	}
	if s.cursor >= n {
		s.cursor = n - 1
	}
}

// deletionSet is the checked entries, or the entry under the cursor when
// nothing is checked.
func (s *cleanupState) deletionSet() []worktree.Entry {
	var set []worktree.Entry
	for _, e := range s.entries {
		if s.checked[e.Path] {
			set = append(set, e)
		}
	}
	if len(set) > 0 {
		return set
	}

	rows := s.filtered()
	if s.cursor < len(rows) {
		return []worktree.Entry{rows[s.cursor]}
	}
	return nil
}

func (t *TUI) handleCleanupKey(ev *tcell.EventKey) {
	st := t.cleanup
	if st == nil {
		t.mode = ModeNormal
		return
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		t.cleanup = nil
		t.mode = ModeNormal

	case tcell.KeyUp:
		if st.cursor > 0 {
			st.cursor--
		}

	case tcell.KeyDown:
		if st.cursor < len(st.filtered())-1 {
			st.cursor++
		}

	case tcell.KeyEnter:
		rows := st.filtered()
		if st.cursor < len(rows) {
			path := rows[st.cursor].Path
			st.checked[path] = !st.checked[path]
		}

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(st.query) > 0 {
			st.query = st.query[:len(st.query)-1]
			st.clampCursor()
		}

	case tcell.KeyRune:
		if ev.Rune() == 'd' && st.query == "" {
			if set := st.deletionSet(); len(set) > 0 {
				st.pending = set
				t.mode = ModeDeleteConfirm
			}
			return
		}
		st.query += string(ev.Rune())
		st.clampCursor()
	}
}

func (t *TUI) handleDeleteConfirmKey(ev *tcell.EventKey) {
	st := t.cleanup
	if st == nil {
		t.mode = ModeNormal
		return
	}

	switch {
	case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyRune && ev.Rune() == 'n':
		st.pending = nil
		t.mode = ModeWorktreeCleanup

	case ev.Key() == tcell.KeyRune && ev.Rune() == 'y':
		t.mgr.DeleteWorktrees(st.pending)
		t.cleanup = nil
		t.mode = ModeNormal
	}
}
