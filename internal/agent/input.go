package agent

import (
	"encoding/json"
	"fmt"

	"github.com/plu-programming-party/partybot/internal/llm"
)

// ReadFileInput is the validated input for the read_file tool.
type ReadFileInput struct {
	Path string `json:"path"`
}

// ListDirectoryInput is the validated input for the list_directory tool.
type ListDirectoryInput struct {
	Path string `json:"path"`
}

// WriteFileInput is the validated input for the write_file tool.
type WriteFileInput struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// AskUserInput is the validated input for the ask_user tool.
type AskUserInput struct {
	Question string `json:"question"`
}

// CompleteInput is the validated input for the complete tool.
type CompleteInput struct {
	Summary      string   `json:"summary"`
	FilesChanged []string `json:"files_changed"`
}

// Invocation is the tagged union a raw tool call decodes into. Exactly one
// of the input pointers is set, matching Kind.
type Invocation struct {
	Kind          ToolKind
	ReadFile      *ReadFileInput
	ListDirectory *ListDirectoryInput
	WriteFile     *WriteFileInput
	AskUser       *AskUserInput
	Complete      *CompleteInput
}

// parseInvocation validates a model-issued tool call against the closed tool
// set and its input schema. Failures are returned as errors for the caller to
// surface as tool-result text; they never abort the session.
func parseInvocation(call llm.ToolCall) (*Invocation, error) {
	raw, err := json.Marshal(call.Input)
	if err != nil {
		return nil, fmt.Errorf("tool %q: unreadable input: %v", call.Name, err)
	}

	switch ToolKind(call.Name) {
	case ToolReadFile:
		var in ReadFileInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("tool read_file: invalid input: %v", err)
		}
		if in.Path == "" {
			return nil, fmt.Errorf("tool read_file: missing required field 'path'")
		}
		return &Invocation{Kind: ToolReadFile, ReadFile: &in}, nil

	case ToolListDirectory:
		var in ListDirectoryInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("tool list_directory: invalid input: %v", err)
		}
		if in.Path == "" {
			in.Path = "."
		}
		return &Invocation{Kind: ToolListDirectory, ListDirectory: &in}, nil

	case ToolWriteFile:
		var in WriteFileInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("tool write_file: invalid input: %v", err)
		}
		if in.Path == "" {
			return nil, fmt.Errorf("tool write_file: missing required field 'path'")
		}
		return &Invocation{Kind: ToolWriteFile, WriteFile: &in}, nil

	case ToolAskUser:
		var in AskUserInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("tool ask_user: invalid input: %v", err)
		}
		if in.Question == "" {
			return nil, fmt.Errorf("tool ask_user: missing required field 'question'")
		}
		return &Invocation{Kind: ToolAskUser, AskUser: &in}, nil

	case ToolComplete:
		var in CompleteInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("tool complete: invalid input: %v", err)
		}
		return &Invocation{Kind: ToolComplete, Complete: &in}, nil

	default:
		return nil, fmt.Errorf("unknown tool %q", call.Name)
	}
}
