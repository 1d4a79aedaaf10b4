package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// JSONGet reads a value from a JSON file using a dot-notation key path and
// returns it pretty-printed. An empty key path returns the whole document.
func JSONGet(filePath, keyPath string) (string, error) {
	root, err := readJSON(filePath)
	if err != nil {
		return "", err
	}

	var value any = root
	for _, key := range splitKeys(keyPath) {
		obj, ok := value.(map[string]any)
		if !ok {
			return "", fmt.Errorf("key %q not found in path %q", key, keyPath)
		}
		value, ok = obj[key]
		if !ok {
			return "", fmt.Errorf("key %q not found in path %q", key, keyPath)
		}
	}

	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing value: %w", err)
	}
	return string(out), nil
}

// JSONSet sets a value in a JSON file using a dot-notation key path,
// creating intermediate objects as needed. The value is parsed as JSON
// first; if parsing fails it is stored as a string.
func JSONSet(filePath, keyPath, newValue string) error {
	root, err := readJSON(filePath)
	if err != nil {
		return err
	}

	keys := splitKeys(keyPath)
	if len(keys) == 0 {
		return fmt.Errorf("empty key path")
	}

	var parsed any
	if err := json.Unmarshal([]byte(newValue), &parsed); err != nil {
		parsed = newValue
	}

	current := root
	for _, key := range keys[:len(keys)-1] {
		next, ok := current[key]
		if !ok {
			child := make(map[string]any)
			current[key] = child
			current = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("key %q is not an object", key)
		}
		current = child
	}
	current[keys[len(keys)-1]] = parsed

	return writeJSON(filePath, root)
}

// JSONDelete deletes a key from a JSON file using a dot-notation key path.
func JSONDelete(filePath, keyPath string) error {
	root, err := readJSON(filePath)
	if err != nil {
		return err
	}

	keys := splitKeys(keyPath)
	if len(keys) == 0 {
		return fmt.Errorf("empty key path")
	}

	current := root
	for _, key := range keys[:len(keys)-1] {
		next, ok := current[key]
		if !ok {
			return fmt.Errorf("key %q not found", key)
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("key %q is not an object", key)
		}
		current = child
	}

	finalKey := keys[len(keys)-1]
	if _, ok := current[finalKey]; !ok {
		return fmt.Errorf("key %q not found", finalKey)
	}
	delete(current, finalKey)

	return writeJSON(filePath, root)
}

func readJSON(filePath string) (map[string]any, error) {
	filePath = expandTilde(filePath)

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}

	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	return root, nil
}

func writeJSON(filePath string, root map[string]any) error {
	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing JSON: %w", err)
	}
	if err := os.WriteFile(expandTilde(filePath), out, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", filePath, err)
	}
	return nil
}

func splitKeys(keyPath string) []string {
	var keys []string
	for _, key := range strings.Split(keyPath, ".") {
		if key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// expandTilde expands ~ to the user's home directory.
func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
