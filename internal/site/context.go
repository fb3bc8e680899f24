// Package site handles the website checkout: building the context the model
// sees, and publishing committed changes back to the origin repository.
package site

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	treeMaxDepth     = 3
	keyFileMaxBytes  = 2000
	contextGuideline = `## Modification Guidelines

- You can modify any file in the ` + "`src/`" + ` directory
- CSS changes go in ` + "`src/assets/css/style.css`" + `
- Page files live in ` + "`src/pages/`" + `
- Data files: ` + "`src/_data/projects.json`" + `, ` + "`src/_data/people.json`" + `
- The site is built with Eleventy (11ty) static site generator
- Changes are automatically deployed via GitHub Actions
`
)

// keyFiles are shown in full (truncated) so the model starts with the load-
// bearing parts of the site instead of discovering them one read at a time.
var keyFiles = []string{
	".eleventy.js",
	"package.json",
	"src/_data/projects.json",
	"src/_data/people.json",
	"src/assets/css/style.css",
	"src/index.njk",
	"src/projects.njk",
	"src/people.njk",
	"src/about.md",
}

// Context builds a markdown description of the checkout: directory tree,
// key file contents, and modification guidelines. It is injected into the
// agent system prompt on session start.
func Context(root string) (string, error) {
	if _, err := os.Stat(root); err != nil {
		return "", fmt.Errorf("site context: checkout %s: %w", root, err)
	}

	var b strings.Builder
	b.WriteString("# Website Repository Structure\n\n")
	b.WriteString("## Project Structure\n\n```\n")
	writeTree(&b, root, "", 0)
	b.WriteString("```\n\n")

	b.WriteString("## Key Files Content\n\n")
	for _, rel := range keyFiles {
		b.WriteString(fmt.Sprintf("### %s\n\n", rel))
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			b.WriteString("(File not found)\n\n")
			continue
		}
		content := string(data)
		if len(content) > keyFileMaxBytes {
			content = content[:keyFileMaxBytes] + "\n... (truncated)"
		}
		b.WriteString(fmt.Sprintf("```\n%s\n```\n\n", content))
	}

	b.WriteString(contextGuideline)
	return b.String(), nil
}

func writeTree(b *strings.Builder, dir, prefix string, depth int) {
	if depth >= treeMaxDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	names := make([]string, 0, len(entries))
	isDir := make(map[string]bool, len(entries))
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || name == "node_modules" || name == "_site" {
			continue
		}
		names = append(names, name)
		isDir[name] = e.IsDir()
	}
	sort.Strings(names)

	for i, name := range names {
		connector := "├── "
		childPrefix := prefix + "│   "
		if i == len(names)-1 {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		b.WriteString(prefix + connector + name + "\n")
		if isDir[name] {
			writeTree(b, filepath.Join(dir, name), childPrefix, depth+1)
		}
	}
}
