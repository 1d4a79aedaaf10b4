package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeTestJSON(t *testing.T, v any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.json")
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestJSONGet(t *testing.T) {
	path := writeTestJSON(t, map[string]any{
		"claude_args":    []string{"--verbose"},
		"workflows_path": "/tmp/wt",
		"nested":         map[string]any{"depth": 2},
	})

	tests := []struct {
		key  string
		want string
	}{
		{"workflows_path", `"/tmp/wt"`},
		{"nested.depth", "2"},
	}
	for _, tt := range tests {
		got, err := JSONGet(path, tt.key)
		if err != nil {
			t.Fatalf("JSONGet(%q): %v", tt.key, err)
		}
		if got != tt.want {
			t.Errorf("JSONGet(%q) = %s, want %s", tt.key, got, tt.want)
		}
	}
}

func TestJSONGetEmptyPathReturnsWholeDocument(t *testing.T) {
	path := writeTestJSON(t, map[string]any{"k": "v"})

	got, err := JSONGet(path, "")
	if err != nil {
		t.Fatalf("JSONGet: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(got), &m); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if m["k"] != "v" {
		t.Errorf("got %v", m)
	}
}

func TestJSONGetMissingKey(t *testing.T) {
	path := writeTestJSON(t, map[string]any{"k": "v"})

	if _, err := JSONGet(path, "missing"); err == nil {
		t.Error("expected error for missing key")
	}
	if _, err := JSONGet(path, "k.deeper"); err == nil {
		t.Error("expected error when traversing through a non-object")
	}
}

func TestJSONGetBadFile(t *testing.T) {
	if _, err := JSONGet(filepath.Join(t.TempDir(), "nope.json"), "k"); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{nope"), 0600)
	if _, err := JSONGet(path, "k"); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestJSONSetString(t *testing.T) {
	path := writeTestJSON(t, map[string]any{"workflows_path": "/old"})

	if err := JSONSet(path, "workflows_path", "/new"); err != nil {
		t.Fatalf("JSONSet: %v", err)
	}

	got, _ := JSONGet(path, "workflows_path")
	if got != `"/new"` {
		t.Errorf("got %s, want %q", got, `"/new"`)
	}
}

func TestJSONSetParsesJSONValues(t *testing.T) {
	path := writeTestJSON(t, map[string]any{})

	if err := JSONSet(path, "claude_args", `["--verbose","--model","opus"]`); err != nil {
		t.Fatalf("JSONSet: %v", err)
	}

	got, _ := JSONGet(path, "claude_args")
	var args []string
	if err := json.Unmarshal([]byte(got), &args); err != nil {
		t.Fatalf("stored value is not an array: %v", err)
	}
	if len(args) != 3 || args[0] != "--verbose" {
		t.Errorf("args = %v", args)
	}
}

func TestJSONSetCreatesIntermediateObjects(t *testing.T) {
	path := writeTestJSON(t, map[string]any{})

	if err := JSONSet(path, "a.b.c", "deep"); err != nil {
		t.Fatalf("JSONSet: %v", err)
	}

	got, err := JSONGet(path, "a.b.c")
	if err != nil {
		t.Fatalf("JSONGet: %v", err)
	}
	if got != `"deep"` {
		t.Errorf("got %s", got)
	}
}

func TestJSONSetEmptyPath(t *testing.T) {
	path := writeTestJSON(t, map[string]any{})

	if err := JSONSet(path, "", "v"); err == nil {
		t.Error("expected error for empty key path")
	}
}

func TestJSONDelete(t *testing.T) {
	path := writeTestJSON(t, map[string]any{
		"keep":   1,
		"nested": map[string]any{"drop": 2, "stay": 3},
	})

	if err := JSONDelete(path, "nested.drop"); err != nil {
		t.Fatalf("JSONDelete: %v", err)
	}

	if _, err := JSONGet(path, "nested.drop"); err == nil {
		t.Error("deleted key still present")
	}
	if _, err := JSONGet(path, "nested.stay"); err != nil {
		t.Error("sibling key should survive")
	}
}

func TestJSONDeleteMissingKey(t *testing.T) {
	path := writeTestJSON(t, map[string]any{"k": "v"})

	if err := JSONDelete(path, "missing"); err == nil {
		t.Error("expected error for missing key")
	}
}

func TestExpandTilde(t *testing.T) {
	t.Setenv("HOME", "/home/dev")

	if got := expandTilde("~/x.json"); got != "/home/dev/x.json" {
		t.Errorf("expandTilde = %q", got)
	}
	if got := expandTilde("/abs/x.json"); got != "/abs/x.json" {
		t.Errorf("expandTilde = %q, want unchanged", got)
	}
}
