package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Executor performs filesystem tool calls against a designated repository
// working tree. It is stateless; every method maps one call to one side
// effect and a result string. Errors are reported as descriptive result
// text so the model can self-correct, never as Go errors.
type Executor struct {
	root string
}

// NewExecutor creates an executor rooted at the given checkout directory.
func NewExecutor(root string) *Executor {
	return &Executor{root: root}
}

// resolve maps a repository-relative path onto the working tree, rejecting
// anything that escapes the root.
func (e *Executor) resolve(rel string) (string, bool) {
	full := filepath.Join(e.root, filepath.FromSlash(rel))
	full = filepath.Clean(full)
	root := filepath.Clean(e.root)
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", false
	}
	return full, true
}

// ReadFile returns the file contents, or a descriptive error string.
func (e *Executor) ReadFile(in ReadFileInput) (string, bool) {
	full, ok := e.resolve(in.Path)
	if !ok {
		return fmt.Sprintf("Error: Path '%s' is outside the repository", in.Path), true
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("Error: File '%s' does not exist", in.Path), true
		}
		return fmt.Sprintf("Error: Could not read file '%s': %v", in.Path, err), true
	}
	return string(data), false
}

// ListDirectory returns a sorted, newline-joined listing with directories
// suffixed by '/', or a descriptive error string.
func (e *Executor) ListDirectory(in ListDirectoryInput) (string, bool) {
	full, ok := e.resolve(in.Path)
	if !ok {
		return fmt.Sprintf("Error: Path '%s' is outside the repository", in.Path), true
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("Error: Directory '%s' does not exist", in.Path), true
		}
		return fmt.Sprintf("Error: Could not list directory '%s': %v", in.Path, err), true
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		return "(empty directory)", false
	}
	return strings.Join(names, "\n"), false
}

// WriteFile creates missing parent directories and overwrites the file with
// the complete supplied content. On success the result embeds the byte count.
func (e *Executor) WriteFile(in WriteFileInput) (string, bool) {
	full, ok := e.resolve(in.Path)
	if !ok {
		return fmt.Sprintf("Error: Path '%s' is outside the repository", in.Path), true
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Sprintf("Error: Could not create directories for '%s': %v", in.Path, err), true
	}
	if err := os.WriteFile(full, []byte(in.Content), 0o644); err != nil {
		return fmt.Sprintf("Error: Could not write file '%s': %v", in.Path, err), true
	}
	return fmt.Sprintf("Successfully wrote %d bytes to '%s'", len(in.Content), in.Path), false
}
