package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/plu-programming-party/partybot/internal/llm"
	"github.com/plu-programming-party/partybot/internal/telemetry"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusNew            Status = "new"
	StatusRunning        Status = "running"
	StatusAwaitingAnswer Status = "awaiting_answer"
	StatusComplete       Status = "complete"
	StatusAborted        Status = "aborted"
)

// OutcomeStatus classifies what a run step returned to the front-end.
type OutcomeStatus string

const (
	OutcomeComplete OutcomeStatus = "complete"
	OutcomeQuestion OutcomeStatus = "question"
	OutcomeError    OutcomeStatus = "error"
)

// Outcome is the result of driving a session until it completes, suspends
// on a question, or fails.
type Outcome struct {
	Status OutcomeStatus
	Text   string
	Files  []string
}

// DefaultMaxIterations bounds the model-call loop when no explicit cap is set.
const DefaultMaxIterations = 20

const defaultMaxTokens = 8192

// SessionConfig configures a new session.
type SessionConfig struct {
	Identity      string
	Client        llm.Client
	Executor      *Executor
	Model         string
	System        string
	MaxIterations int
	MaxTokens     int
	Logger        *slog.Logger
	Metrics       *telemetry.Metrics
}

// Session is one bounded conversation between a requester and the model,
// scoped to a single change request. Its transcript is append-only; the
// model sees the full history on every call. A session is driven by a
// single goroutine at a time; the internal mutex only guards against a
// misbehaving host calling Run and Resume concurrently.
type Session struct {
	id       string
	identity string
	client   llm.Client
	exec     *Executor
	catalog  []llm.ToolDefinition
	model    string
	system   string
	maxIter  int
	maxTok   int
	logger   *slog.Logger
	metrics  *telemetry.Metrics

	mu                sync.Mutex
	transcript        []llm.Message
	filesChanged      []string
	changedSet        map[string]struct{}
	iterationCount    int
	status            Status
	pendingQuestion   string
	isComplete        bool
	completionSummary string
}

// NewSession creates a session in its initial (not yet started) state.
func NewSession(cfg SessionConfig) *Session {
	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	maxTok := cfg.MaxTokens
	if maxTok <= 0 {
		maxTok = defaultMaxTokens
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		id:         ulid.Make().String(),
		identity:   cfg.Identity,
		client:     cfg.Client,
		exec:       cfg.Executor,
		catalog:    Catalog(),
		model:      cfg.Model,
		system:     cfg.System,
		maxIter:    maxIter,
		maxTok:     maxTok,
		metrics:    cfg.Metrics,
		status:     StatusNew,
		changedSet: make(map[string]struct{}),
	}
	s.logger = logger.With(slog.String("session_id", s.id), slog.String("identity", cfg.Identity))
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Identity returns the requester identity that owns this session.
func (s *Session) Identity() string { return s.identity }

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// FilesChanged returns the ordered set of paths written so far.
func (s *Session) FilesChanged() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.filesChanged))
	copy(out, s.filesChanged)
	return out
}

// Iterations returns the number of model calls made so far.
func (s *Session) Iterations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.iterationCount
}

// Resume feeds a human answer into a session suspended on ask_user. It is
// valid only from AWAITING_ANSWER; the caller must invoke Run again to
// continue the loop.
func (s *Session) Resume(answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusAwaitingAnswer {
		return fmt.Errorf("session %s: resume from %s state", s.id, s.status)
	}
	s.transcript = append(s.transcript, llm.Message{Role: llm.RoleUser, Content: answer})
	s.pendingQuestion = ""
	s.status = StatusRunning
	return nil
}

// Run drives the session until it completes, suspends on a question, hits
// the iteration cap, or the model endpoint fails. On the first call prompt
// must be the requester's text; after a Resume it must be empty (the
// answer is already in the transcript).
func (s *Session) Run(ctx context.Context, prompt string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusComplete, StatusAborted:
		return Outcome{Status: OutcomeError, Text: fmt.Sprintf("session is %s", s.status)}
	case StatusAwaitingAnswer:
		return Outcome{Status: OutcomeError, Text: "session is awaiting an answer; resume it first"}
	}
	s.status = StatusRunning

	pending := prompt
	for {
		if pending != "" {
			s.transcript = append(s.transcript, llm.Message{Role: llm.RoleUser, Content: pending})
			pending = ""
		}

		s.iterationCount++
		if s.iterationCount > s.maxIter {
			s.status = StatusAborted
			s.logger.Warn("iteration cap reached", "iterations", s.iterationCount-1)
			s.metrics.RecordSessionFinish(string(OutcomeError), s.iterationCount-1)
			return Outcome{Status: OutcomeError, Text: "Max iterations reached"}
		}

		resp, err := s.client.Chat(ctx, llm.ChatRequest{
			Model:     s.model,
			Messages:  s.transcript,
			System:    s.system,
			Tools:     s.catalog,
			MaxTokens: s.maxTok,
		})
		if err != nil {
			s.status = StatusAborted
			s.logger.Error("model call failed", "error", err, "iteration", s.iterationCount)
			s.metrics.RecordSessionFinish(string(OutcomeError), s.iterationCount)
			return Outcome{Status: OutcomeError, Text: err.Error()}
		}

		if len(resp.ToolCalls) == 0 || resp.StopReason != llm.StopToolUse {
			// Plain answer: the model considers itself done.
			s.transcript = append(s.transcript, llm.Message{Role: llm.RoleAssistant, Content: resp.Content})
			summary := s.plainCompletionSummary(resp.Content)
			s.isComplete = true
			s.completionSummary = summary
			s.status = StatusComplete
			s.logger.Info("session complete", "iterations", s.iterationCount, "files_changed", len(s.filesChanged))
			s.metrics.RecordSessionFinish(string(OutcomeComplete), s.iterationCount)
			return Outcome{Status: OutcomeComplete, Text: summary, Files: s.filesChanged}
		}

		// The model's tool-use turn is appended verbatim; its own context
		// coherence depends on seeing its tool_use blocks unchanged.
		s.transcript = append(s.transcript, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		// Dispatch in emission order; the model expects exactly N results
		// for N calls, batched into a single user turn.
		results := make([]llm.ToolResult, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			results = append(results, s.dispatch(call))
		}
		s.transcript = append(s.transcript, llm.Message{Role: llm.RoleUser, ToolResults: results})

		if s.isComplete {
			s.status = StatusComplete
			s.logger.Info("session complete", "iterations", s.iterationCount, "files_changed", len(s.filesChanged))
			s.metrics.RecordSessionFinish(string(OutcomeComplete), s.iterationCount)
			return Outcome{Status: OutcomeComplete, Text: s.completionSummary, Files: s.filesChanged}
		}
		if s.pendingQuestion != "" {
			s.status = StatusAwaitingAnswer
			s.logger.Info("session awaiting answer", "iteration", s.iterationCount)
			s.metrics.RecordSessionFinish(string(OutcomeQuestion), s.iterationCount)
			return Outcome{Status: OutcomeQuestion, Text: s.pendingQuestion}
		}
	}
}

// dispatch executes a single tool call and returns its result. Control tools
// mutate session flags; filesystem tools touch the working tree. Faults stay
// inside the result text so the model can retry with corrected input.
func (s *Session) dispatch(call llm.ToolCall) llm.ToolResult {
	inv, err := parseInvocation(call)
	if err != nil {
		s.metrics.RecordToolCall(call.Name, true)
		return llm.ToolResult{ToolUseID: call.ID, Content: "Error: " + err.Error(), IsError: true}
	}

	var content string
	var isErr bool

	switch inv.Kind {
	case ToolReadFile:
		content, isErr = s.exec.ReadFile(*inv.ReadFile)
	case ToolListDirectory:
		content, isErr = s.exec.ListDirectory(*inv.ListDirectory)
	case ToolWriteFile:
		content, isErr = s.exec.WriteFile(*inv.WriteFile)
		if !isErr {
			s.recordChanged(inv.WriteFile.Path)
		}
	case ToolAskUser:
		// First control signal of a turn wins; a turn ends in at most one
		// of complete or question.
		if s.isComplete {
			content, isErr = "Ignored: the session is already marked complete", true
		} else {
			s.pendingQuestion = inv.AskUser.Question
			content = "Question sent to the user. Their answer will follow as the next message."
		}
	case ToolComplete:
		if s.pendingQuestion != "" {
			content, isErr = "Ignored: a question to the user is already pending", true
		} else {
			s.isComplete = true
			s.completionSummary = s.completeSummary(inv.Complete)
			content = "Session marked complete."
		}
	}

	s.logger.Debug("tool call", "tool", string(inv.Kind), "error", isErr)
	s.metrics.RecordToolCall(string(inv.Kind), isErr)
	return llm.ToolResult{ToolUseID: call.ID, Content: content, IsError: isErr}
}

func (s *Session) recordChanged(path string) {
	if _, seen := s.changedSet[path]; seen {
		return
	}
	s.changedSet[path] = struct{}{}
	s.filesChanged = append(s.filesChanged, path)
}

// plainCompletionSummary builds the completion text when the model stops
// without calling complete.
func (s *Session) plainCompletionSummary(modelText string) string {
	if len(s.filesChanged) > 0 {
		return fmt.Sprintf("Changes applied to: %s", strings.Join(s.filesChanged, ", "))
	}
	if strings.TrimSpace(modelText) != "" {
		return modelText
	}
	return "No changes were made."
}

// completeSummary builds the completion text for an explicit complete call.
// The model's files_changed hint is advisory; the session's own record of
// confirmed writes is authoritative.
func (s *Session) completeSummary(in *CompleteInput) string {
	summary := strings.TrimSpace(in.Summary)
	if summary == "" {
		summary = "Done."
	}
	if len(s.filesChanged) > 0 {
		return fmt.Sprintf("%s\nModified files: %s", summary, strings.Join(s.filesChanged, ", "))
	}
	return summary
}
