package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExecutor_WriteReadRoundTrip(t *testing.T) {
	root := t.TempDir()
	exec := NewExecutor(root)

	content := "line one\nline \"two\" with quotes\n\tand a tab\n"
	out, isErr := exec.WriteFile(WriteFileInput{Path: "src/pages/contact.md", Content: content})
	if isErr {
		t.Fatalf("WriteFile returned error result: %q", out)
	}
	if !strings.Contains(out, "src/pages/contact.md") {
		t.Errorf("success message missing path: %q", out)
	}
	if !strings.Contains(out, "bytes") {
		t.Errorf("success message missing byte count: %q", out)
	}

	got, isErr := exec.ReadFile(ReadFileInput{Path: "src/pages/contact.md"})
	if isErr {
		t.Fatalf("ReadFile returned error result: %q", got)
	}
	if got != content {
		t.Errorf("round trip mismatch:\n got: %q\nwant: %q", got, content)
	}
}

func TestExecutor_ReadMissingFile(t *testing.T) {
	exec := NewExecutor(t.TempDir())

	got, isErr := exec.ReadFile(ReadFileInput{Path: "pages/missing.md"})
	if !isErr {
		t.Fatalf("expected error result, got %q", got)
	}
	want := "Error: File 'pages/missing.md' does not exist"
	if got != want {
		t.Errorf("error text = %q, want %q", got, want)
	}
}

func TestExecutor_ListDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "src", "pages"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"zeta.md", "alpha.md"} {
		if err := os.WriteFile(filepath.Join(root, "src", name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	exec := NewExecutor(root)

	got, isErr := exec.ListDirectory(ListDirectoryInput{Path: "src"})
	if isErr {
		t.Fatalf("ListDirectory returned error result: %q", got)
	}
	want := "alpha.md\npages/\nzeta.md"
	if got != want {
		t.Errorf("listing = %q, want %q", got, want)
	}
}

func TestExecutor_ListMissingDirectory(t *testing.T) {
	exec := NewExecutor(t.TempDir())

	got, isErr := exec.ListDirectory(ListDirectoryInput{Path: "nope"})
	if !isErr {
		t.Fatalf("expected error result, got %q", got)
	}
	if got != "Error: Directory 'nope' does not exist" {
		t.Errorf("error text = %q", got)
	}
}

func TestExecutor_ListEmptyDirectory(t *testing.T) {
	exec := NewExecutor(t.TempDir())

	got, isErr := exec.ListDirectory(ListDirectoryInput{Path: "."})
	if isErr {
		t.Fatalf("unexpected error result: %q", got)
	}
	if got != "(empty directory)" {
		t.Errorf("listing = %q", got)
	}
}

func TestExecutor_WriteCreatesParents(t *testing.T) {
	root := t.TempDir()
	exec := NewExecutor(root)

	out, isErr := exec.WriteFile(WriteFileInput{Path: "a/b/c/deep.md", Content: "x"})
	if isErr {
		t.Fatalf("WriteFile returned error result: %q", out)
	}
	if _, err := os.Stat(filepath.Join(root, "a", "b", "c", "deep.md")); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestExecutor_RejectsEscapingPaths(t *testing.T) {
	exec := NewExecutor(t.TempDir())

	tests := []struct {
		name string
		run  func() (string, bool)
	}{
		{"read", func() (string, bool) { return exec.ReadFile(ReadFileInput{Path: "../secret"}) }},
		{"list", func() (string, bool) { return exec.ListDirectory(ListDirectoryInput{Path: "../.."}) }},
		{"write", func() (string, bool) { return exec.WriteFile(WriteFileInput{Path: "../../etc/owned", Content: "x"}) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, isErr := tc.run()
			if !isErr {
				t.Fatalf("expected error result, got %q", got)
			}
			if !strings.Contains(got, "outside the repository") {
				t.Errorf("error text = %q", got)
			}
		})
	}
}
