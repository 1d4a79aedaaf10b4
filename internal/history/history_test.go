package history

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func setConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SHEPHERD_CONFIG_DIR", dir)
	return dir
}

func TestSetRecentSessionOrdering(t *testing.T) {
	h := New()

	h.SetRecentSession("repo", "a", "/wt/a")
	h.SetRecentSession("repo", "b", "/wt/b")
	h.SetRecentSession("repo", "c", "/wt/c")

	want := []Entry{
		{Name: "c", ProjectPath: "/wt/c"},
		{Name: "b", ProjectPath: "/wt/b"},
		{Name: "a", ProjectPath: "/wt/a"},
	}
	if got := h.Entries("repo"); !reflect.DeepEqual(got, want) {
		t.Errorf("Entries = %v, want %v", got, want)
	}
}

func TestSetRecentSessionMovesToFrontWithoutDuplicating(t *testing.T) {
	h := New()

	h.SetRecentSession("repo", "a", "/wt/a")
	h.SetRecentSession("repo", "b", "/wt/b")
	h.SetRecentSession("repo", "a", "/wt/a")

	got := h.Entries("repo")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (no duplicates)", len(got))
	}
	if got[0].Name != "a" {
		t.Errorf("front entry = %q, want a", got[0].Name)
	}
}

func TestSetRecentSessionCap(t *testing.T) {
	h := New()

	names := []string{"a", "b", "c", "d", "e", "f", "g"}
	for _, n := range names {
		h.SetRecentSession("repo", n, "/wt/"+n)
	}

	got := h.Entries("repo")
	if len(got) != MaxEntriesPerRepo {
		t.Fatalf("len = %d, want %d", len(got), MaxEntriesPerRepo)
	}
	if got[0].Name != "g" {
		t.Errorf("front = %q, want g", got[0].Name)
	}
	// oldest entries fell off
	for _, e := range got {
		if e.Name == "a" || e.Name == "b" {
			t.Errorf("entry %q should have been trimmed", e.Name)
		}
	}
}

func TestMostRecent(t *testing.T) {
	h := New()

	if _, ok := h.MostRecent("repo"); ok {
		t.Error("MostRecent on empty history should report false")
	}

	h.SetRecentSession("repo", "x", "/wt/x")
	e, ok := h.MostRecent("repo")
	if !ok || e.Name != "x" {
		t.Errorf("MostRecent = %v, %v; want x, true", e, ok)
	}
}

func TestRemove(t *testing.T) {
	h := New()
	h.SetRecentSession("repo", "a", "/wt/a")
	h.SetRecentSession("repo", "b", "/wt/b")

	h.Remove("repo", "/wt/a")

	got := h.Entries("repo")
	if len(got) != 1 || got[0].Name != "b" {
		t.Errorf("after Remove, Entries = %v, want [b]", got)
	}

	h.Remove("repo", "/wt/b")
	if got := h.Entries("repo"); len(got) != 0 {
		t.Errorf("after removing all, Entries = %v, want empty", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	setConfigDir(t)

	h := New()
	h.SetRecentSession("repo1", "a", "/wt/a")
	h.SetRecentSession("repo2", "b", "/wt/b")
	if err := h.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := Load()
	if !reflect.DeepEqual(loaded.Entries("repo1"), h.Entries("repo1")) {
		t.Errorf("repo1 mismatch: %v vs %v", loaded.Entries("repo1"), h.Entries("repo1"))
	}
	if !reflect.DeepEqual(loaded.Entries("repo2"), h.Entries("repo2")) {
		t.Errorf("repo2 mismatch: %v vs %v", loaded.Entries("repo2"), h.Entries("repo2"))
	}
}

func TestLoadMissingFileYieldsEmpty(t *testing.T) {
	setConfigDir(t)

	h := Load()
	if len(h.Entries("anything")) != 0 {
		t.Error("missing file should yield empty history")
	}
}

func TestLoadCorruptFileYieldsEmpty(t *testing.T) {
	dir := setConfigDir(t)

	if err := os.WriteFile(filepath.Join(dir, "history.json"), []byte("{broken"), 0600); err != nil {
		t.Fatal(err)
	}

	h := Load()
	if len(h.Entries("anything")) != 0 {
		t.Error("corrupt file should yield empty history, not fail")
	}
	// and the empty history is still usable
	h.SetRecentSession("repo", "a", "/wt/a")
	if err := h.Save(); err != nil {
		t.Errorf("Save after corrupt load: %v", err)
	}
}
