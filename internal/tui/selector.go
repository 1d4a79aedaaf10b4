package tui

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/ehayes2000/shepherd/internal/sessionpair"
	"github.com/ehayes2000/shepherd/internal/worktree"
)

// entryKind orders the selector's three sections.
type entryKind int

const (
	entryLive entryKind = iota
	entryRecent
	entryWorktree
)

// selectorEntry is one selectable row.
type selectorEntry struct {
	Kind entryKind
	Name string
	Path string

	// Activity annotates live entries.
	Activity sessionpair.Activity
}

// selectorState is the open selector: a cached entry list, a filter
// query, and the name of the session that was active when it opened so
// Escape can revert the preview.
type selectorState struct {
	entries  []selectorEntry
	query    string
	cursor   int
	original string
}

// openSelector caches the entry list and enters ModeSelector.
func (t *TUI) openSelector() {
	st := &selectorState{}
	if a := t.mgr.Active(); a != nil {
		st.original = a.Name
	}
	st.entries = t.buildSelectorEntries()

	t.selector = st
	t.mode = ModeSelector
}

// buildSelectorEntries lists, in order: live sessions (active first, then
// background in stable order), recent history entries not already live,
// then worktree directories not already present above.
func (t *TUI) buildSelectorEntries() []selectorEntry {
	var entries []selectorEntry
	seenPaths := make(map[string]bool)
	seenNames := make(map[string]bool)

	add := func(e selectorEntry) {
		entries = append(entries, e)
		seenPaths[e.Path] = true
		seenNames[e.Name] = true
	}

	if a := t.mgr.Active(); a != nil {
		add(selectorEntry{Kind: entryLive, Name: a.Name, Path: a.Path, Activity: a.Activity})
	}
	for _, bg := range t.mgr.Background() {
		add(selectorEntry{Kind: entryLive, Name: bg.Name, Path: bg.Path, Activity: bg.Activity})
	}

	for _, h := range t.mgr.History.Entries(t.mgr.RepoName) {
		if seenPaths[h.ProjectPath] || seenNames[h.Name] {
			continue
		}
		if _, err := os.Stat(h.ProjectPath); err != nil {
			continue
		}
		add(selectorEntry{Kind: entryRecent, Name: h.Name, Path: h.ProjectPath})
	}

	if t.mgr.RepoName != "" {
		wts, err := worktree.List(t.mgr.Config.WorkflowsPath, t.mgr.RepoName)
		if err == nil {
			for _, wt := range wts {
				if seenPaths[wt.Path] {
					continue
				}
				add(selectorEntry{Kind: entryWorktree, Name: wt.Name, Path: wt.Path})
			}
		}
	}

	return entries
}

// filtered returns the entries matching the query as a substring of name
// or path.
func (s *selectorState) filtered() []selectorEntry {
	if s.query == "" {
		return s.entries
	}
	q := strings.ToLower(s.query)
	var out []selectorEntry
	for _, e := range s.entries {
		if strings.Contains(strings.ToLower(e.Name), q) || strings.Contains(strings.ToLower(e.Path), q) {
			out = append(out, e)
		}
	}
	return out
}

// clampCursor keeps the cursor on a real row after filtering.
func (s *selectorState) clampCursor() {
	n := len(s.filtered())
	if n == 0 {
		s.cursor = 0
		return
	}
	if s.cursor >= n {
		s.cursor = n - 1
	}
}

func (t *TUI) handleSelectorKey(ev *tcell.EventKey) {
	st := t.selector
	if st == nil {
		t.mode = ModeNormal
		return
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		t.closeSelector(true)

	case tcell.KeyUp:
		if st.cursor > 0 {
			st.cursor--
			t.previewSelection()
		}

	case tcell.KeyDown:
		if st.cursor < len(st.filtered())-1 {
			st.cursor++
			t.previewSelection()
		}

	case tcell.KeyEnter:
		t.confirmSelection()

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(st.query) > 0 {
			st.query = st.query[:len(st.query)-1]
			st.clampCursor()
		}

	case tcell.KeyRune:
		st.query += string(ev.Rune())
		st.clampCursor()
	}
}

// previewSelection switches the active session to the entry under the
// cursor when it is live, without closing the selector.
func (t *TUI) previewSelection() {
	st := t.selector
	rows := st.filtered()
	if st.cursor >= len(rows) {
		return
	}
	if e := rows[st.cursor]; e.Kind == entryLive {
		t.mgr.SwitchToSessionByName(e.Name)
	}
}

// confirmSelection acts on the entry under the cursor: live entries keep
// the preview, recent entries resume with --continue, worktree entries
// start a fresh session named after the directory.
func (t *TUI) confirmSelection() {
	st := t.selector
	rows := st.filtered()
	if len(rows) == 0 || st.cursor >= len(rows) {
		return
	}
	e := rows[st.cursor]

	switch e.Kind {
	case entryLive:
		t.mgr.SwitchToSessionByName(e.Name)

	case entryRecent:
		if err := t.mgr.StartSessionAt(e.Name, e.Path, true); err != nil {
			t.mgr.Status.Error(err.Error())
			return
		}

	case entryWorktree:
		name := filepath.Base(e.Path)
		if err := t.mgr.StartSessionAt(name, e.Path, false); err != nil {
			t.mgr.Status.Error(err.Error())
			return
		}
	}

	t.closeSelector(false)
}

// closeSelector leaves ModeSelector. revert restores the session that was
// active when the selector opened.
func (t *TUI) closeSelector(revert bool) {
	if revert && t.selector != nil && t.selector.original != "" {
		t.mgr.SwitchToSessionByName(t.selector.original)
	}
	t.selector = nil
	t.mode = ModeNormal
}
