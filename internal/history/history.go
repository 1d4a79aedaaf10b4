// Package history persists the per-repository list of recently used
// sessions. The selector and the resume-on-startup flow both read it; every
// session creation writes it.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ehayes2000/shepherd/internal/config"
)

// MaxEntriesPerRepo caps how many recent sessions are remembered per repo.
const MaxEntriesPerRepo = 5

// Entry is one remembered session.
type Entry struct {
	Name        string `json:"name"`
	ProjectPath string `json:"project_path"`
}

// History maps repo name to its recent sessions, most recent first.
type History struct {
	repos map[string][]Entry
}

// New returns an empty History.
func New() *History {
	return &History{repos: make(map[string][]Entry)}
}

// Path returns the path to the history file.
func Path() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.json"), nil
}

// Load reads the history file. A missing or corrupt file yields an empty
// history; losing the recent-session list is an inconvenience, not a reason
// to refuse to start.
func Load() *History {
	h := New()

	path, err := Path()
	if err != nil {
		return h
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return h
	}

	var repos map[string][]Entry
	if err := json.Unmarshal(data, &repos); err != nil {
		return h
	}
	if repos != nil {
		h.repos = repos
	}
	return h
}

// Save writes the history file.
func (h *History) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(h.repos, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing history: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// SetRecentSession records (name, projectPath) as the most recent session
// for repo. An existing identical entry is moved to the front rather than
// duplicated; the list is trimmed to MaxEntriesPerRepo.
func (h *History) SetRecentSession(repo, name, projectPath string) {
	entry := Entry{Name: name, ProjectPath: projectPath}

	entries := h.repos[repo]
	filtered := entries[:0]
	for _, e := range entries {
		if e != entry {
			filtered = append(filtered, e)
		}
	}

	entries = append([]Entry{entry}, filtered...)
	if len(entries) > MaxEntriesPerRepo {
		entries = entries[:MaxEntriesPerRepo]
	}
	h.repos[repo] = entries
}

// MostRecent returns the most recent entry for repo, or false if none.
func (h *History) MostRecent(repo string) (Entry, bool) {
	entries := h.repos[repo]
	if len(entries) == 0 {
		return Entry{}, false
	}
	return entries[0], true
}

// Entries returns the recent sessions for repo, most recent first. The
// returned slice must not be mutated.
func (h *History) Entries(repo string) []Entry {
	return h.repos[repo]
}

// Remove deletes any entry for repo whose ProjectPath equals projectPath.
func (h *History) Remove(repo, projectPath string) {
	entries := h.repos[repo]
	filtered := entries[:0]
	for _, e := range entries {
		if e.ProjectPath != projectPath {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		delete(h.repos, repo)
		return
	}
	h.repos[repo] = filtered
}
