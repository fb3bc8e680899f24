// Package agent implements the tool-calling session core: the catalog of
// actions exposed to the model, the executor that performs them against a
// website checkout, and the bounded session state machine that drives the
// model through them.
package agent

import (
	"github.com/plu-programming-party/partybot/internal/llm"
)

// ToolKind identifies one of the closed set of tools the model may call.
type ToolKind string

const (
	ToolReadFile      ToolKind = "read_file"
	ToolListDirectory ToolKind = "list_directory"
	ToolWriteFile     ToolKind = "write_file"
	ToolAskUser       ToolKind = "ask_user"
	ToolComplete      ToolKind = "complete"
)

// Catalog returns the fixed, ordered tool descriptors sent with every model
// call. This table is the entire action surface: adding or removing a tool
// changes only this function, not the session controller.
func Catalog() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		{
			Name:        string(ToolReadFile),
			Description: "Read the complete contents of a file in the website repository. Returns the file text, or an error message if the file does not exist.",
			InputSchema: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Repository-relative path of the file to read, e.g. src/pages/about.md",
				},
			},
		},
		{
			Name:        string(ToolListDirectory),
			Description: "List the entries of a directory in the website repository. Directories are suffixed with '/'. Returns an error message if the directory does not exist.",
			InputSchema: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Repository-relative path of the directory to list. Use '.' for the repository root.",
				},
			},
		},
		{
			Name:        string(ToolWriteFile),
			Description: "Create or overwrite a file in the website repository. Missing parent directories are created. Always supply the COMPLETE file content; partial or diff updates are not supported.",
			InputSchema: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Repository-relative path of the file to write.",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "The entire new content of the file, from first byte to last.",
				},
			},
		},
		{
			Name:        string(ToolAskUser),
			Description: "Ask the requester a clarifying question and pause until they answer. Use only for genuine ambiguity; make reasonable assumptions otherwise.",
			InputSchema: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The question to put to the requester.",
				},
			},
		},
		{
			Name:        string(ToolComplete),
			Description: "Signal that the requested change is fully implemented. Provide a short summary and the list of files you changed.",
			InputSchema: map[string]interface{}{
				"summary": map[string]interface{}{
					"type":        "string",
					"description": "One or two sentences describing what was done.",
				},
				"files_changed": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Repository-relative paths of the files that were modified.",
				},
			},
		},
	}
}
