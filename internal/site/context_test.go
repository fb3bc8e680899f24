package site

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFixture(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestContext_IncludesTreeAndKeyFiles(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "package.json", `{"name":"site"}`)
	writeFixture(t, root, "src/about.md", "# About")
	writeFixture(t, root, "src/pages/index.md", "hello")
	writeFixture(t, root, "node_modules/dep/index.js", "ignored")
	writeFixture(t, root, "_site/index.html", "ignored")
	writeFixture(t, root, ".git/config", "ignored")

	got, err := Context(root)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"# Website Repository Structure",
		"package.json",
		"src",
		`{"name":"site"}`,
		"# About",
		"## Modification Guidelines",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("context missing %q", want)
		}
	}
	for _, skip := range []string{"node_modules", "_site", ".git"} {
		if strings.Contains(got, skip) {
			t.Errorf("context should not include %q", skip)
		}
	}
}

func TestContext_TruncatesLargeKeyFiles(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "src/assets/css/style.css", strings.Repeat("a", 5000))

	got, err := Context(root)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "... (truncated)") {
		t.Error("large key file not truncated")
	}
	if strings.Contains(got, strings.Repeat("a", 2001)) {
		t.Error("more than the truncation limit included")
	}
}

func TestContext_MissingCheckout(t *testing.T) {
	if _, err := Context(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing checkout")
	}
}

func TestContext_MissingKeyFilesNoted(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "README.md", "hi")

	got, err := Context(root)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "(File not found)") {
		t.Error("missing key files should be noted")
	}
}
