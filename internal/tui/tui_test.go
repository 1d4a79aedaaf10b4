package tui

import (
	"bytes"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/ehayes2000/shepherd/internal/worktree"
)

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeNormal, "normal"},
		{ModeHelp, "help"},
		{ModeSelector, "selector"},
		{ModeNewSession, "new_session"},
		{ModeKillConfirm, "kill_confirm"},
		{ModeQuitConfirm, "quit_confirm"},
		{ModeWorktreeCleanup, "worktree_cleanup"},
		{ModeDeleteConfirm, "delete_confirm"},
		{Mode(99), "normal"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.mode.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHotkeyTableCoversAllBindings(t *testing.T) {
	want := map[tcell.Key]bool{
		tcell.KeyCtrlH:         true,
		tcell.KeyCtrlT:         true,
		tcell.KeyCtrlN:         true,
		tcell.KeyCtrlL:         true,
		tcell.KeyCtrlX:         true,
		tcell.KeyCtrlD:         true,
		tcell.KeyCtrlK:         true,
		tcell.KeyCtrlBackslash: true,
		tcell.KeyCtrlW:         true,
		tcell.KeyCtrlY:         true,
	}

	got := map[tcell.Key]bool{}
	for _, hk := range hotkeys {
		if hk.Description == "" {
			t.Errorf("hotkey %s has no help description", hk.Label)
		}
		got[hk.Key] = true
	}

	for k := range want {
		if !got[k] {
			t.Errorf("hotkey table missing key %v", k)
		}
	}
	if len(got) != len(want) {
		t.Errorf("hotkey table has %d keys, want %d", len(got), len(want))
	}
}

func TestSelectorFilter(t *testing.T) {
	st := &selectorState{
		entries: []selectorEntry{
			{Kind: entryLive, Name: "feat-auth", Path: "/wt/repo/feat-auth"},
			{Kind: entryLive, Name: "bugfix", Path: "/wt/repo/bugfix"},
			{Kind: entryRecent, Name: "old-auth", Path: "/wt/repo/old-auth"},
			{Kind: entryWorktree, Name: "stale", Path: "/wt/repo/stale"},
		},
	}

	if got := st.filtered(); len(got) != 4 {
		t.Errorf("empty query: %d entries, want 4", len(got))
	}

	st.query = "auth"
	got := st.filtered()
	if len(got) != 2 {
		t.Fatalf("query auth: %d entries, want 2", len(got))
	}
	if got[0].Name != "feat-auth" || got[1].Name != "old-auth" {
		t.Errorf("filtered order = %v", got)
	}

	// Path substring matches too.
	st.query = "repo/bug"
	if got := st.filtered(); len(got) != 1 || got[0].Name != "bugfix" {
		t.Errorf("path filter = %v", got)
	}

	// Case-insensitive.
	st.query = "AUTH"
	if got := st.filtered(); len(got) != 2 {
		t.Errorf("case-insensitive filter: %d entries, want 2", len(got))
	}
}

func TestSelectorClampCursor(t *testing.T) {
	st := &selectorState{
		entries: []selectorEntry{
			{Name: "a", Path: "/a"},
			{Name: "b", Path: "/b"},
			{Name: "c", Path: "/c"},
		},
		cursor: 2,
	}

	st.query = "a"
	st.clampCursor()
	if st.cursor != 0 {
		t.Errorf("cursor = %d, want 0 after filtering to one entry", st.cursor)
	}

	st.query = "zzz"
	st.clampCursor()
	if st.cursor != 0 {
		t.Errorf("cursor = %d, want 0 on empty result", st.cursor)
	}
}

func TestCleanupDeletionSet(t *testing.T) {
	st := &cleanupState{
		entries: []worktree.Entry{
			{Name: "a", Path: "/wt/a"},
			{Name: "b", Path: "/wt/b"},
			{Name: "c", Path: "/wt/c"},
		},
		checked: map[string]bool{},
	}

	// Nothing checked: the current item.
	st.cursor = 1
	set := st.deletionSet()
	if len(set) != 1 || set[0].Name != "b" {
		t.Errorf("deletionSet = %v, want [b]", set)
	}

	// Checked entries win over the cursor.
	st.checked["/wt/a"] = true
	st.checked["/wt/c"] = true
	set = st.deletionSet()
	if len(set) != 2 || set[0].Name != "a" || set[1].Name != "c" {
		t.Errorf("deletionSet = %v, want [a c]", set)
	}
}

func TestCleanupFilter(t *testing.T) {
	st := &cleanupState{
		entries: []worktree.Entry{
			{Name: "feat-x", Path: "/wt/feat-x"},
			{Name: "stale", Path: "/wt/stale"},
		},
		checked: map[string]bool{},
		query:   "sta",
	}

	got := st.filtered()
	if len(got) != 1 || got[0].Name != "stale" {
		t.Errorf("filtered = %v, want [stale]", got)
	}
}

func TestKeyToBytes(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want []byte
	}{
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), []byte{'\r'}},
		{"backspace", tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), []byte{0x7f}},
		{"tab", tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), []byte{'\t'}},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), []byte{0x1b}},
		{"up", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), []byte("\x1b[A")},
		{"down", tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), []byte("\x1b[B")},
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), []byte("x")},
		{"ctrl-c", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), []byte{3}},
		{"pgup", tcell.NewEventKey(tcell.KeyPgUp, 0, tcell.ModNone), []byte("\x1b[5~")},
		{"home", tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone), []byte("\x1b[H")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keyToBytes(tt.ev); !bytes.Equal(got, tt.want) {
				t.Errorf("keyToBytes = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateAndPad(t *testing.T) {
	if got := truncate("hello world", 8); got != "hello..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := pad("ab", 4); got != "ab  " {
		t.Errorf("pad = %q", got)
	}
}

func TestAbbreviateHome(t *testing.T) {
	t.Setenv("HOME", "/home/dev")

	if got := abbreviateHome("/home/dev/wt/x"); got != "~/wt/x" {
		t.Errorf("abbreviateHome = %q, want ~/wt/x", got)
	}
	if got := abbreviateHome("/tmp/other"); got != "/tmp/other" {
		t.Errorf("abbreviateHome = %q, want unchanged", got)
	}
}
