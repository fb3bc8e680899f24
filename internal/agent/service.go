package agent

import (
	"context"
	"log/slog"

	"github.com/plu-programming-party/partybot/internal/llm"
	"github.com/plu-programming-party/partybot/internal/telemetry"
)

// ServiceConfig configures the session service.
type ServiceConfig struct {
	Client        llm.Client
	Executor      *Executor
	Model         string
	System        string
	MaxIterations int
	Logger        *slog.Logger
	Metrics       *telemetry.Metrics
}

// Service owns the session registry and applies the prompt-routing rules:
// a prompt from an identity either creates a fresh session or resumes the
// single suspended one, never both. Terminal outcomes clear the registry
// entry; a question keeps the session alive for the answer.
type Service struct {
	cfg      ServiceConfig
	registry *Registry
	logger   *slog.Logger
}

// NewService creates a session service with an empty registry.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   logger,
	}
}

// Registry exposes the underlying registry, mainly for tests and status.
func (sv *Service) Registry() *Registry { return sv.registry }

// Prompt routes one piece of requester text: it resumes a session suspended
// on a question, or starts a new session. The call blocks until the session
// completes, suspends, or fails; the host should run it off its event loop.
func (sv *Service) Prompt(ctx context.Context, identity, text string) Outcome {
	if existing, ok := sv.registry.Get(identity); ok {
		if err := existing.Resume(text); err != nil {
			// A live session that is not awaiting an answer means a prompt
			// arrived while the previous run is still in flight.
			sv.logger.Warn("prompt rejected", "identity", identity, "error", err)
			return Outcome{Status: OutcomeError, Text: "I'm still working on your previous request."}
		}
		return sv.drive(ctx, existing, "")
	}

	sess := NewSession(SessionConfig{
		Identity:      identity,
		Client:        sv.cfg.Client,
		Executor:      sv.cfg.Executor,
		Model:         sv.cfg.Model,
		System:        sv.cfg.System,
		MaxIterations: sv.cfg.MaxIterations,
		Logger:        sv.cfg.Logger,
		Metrics:       sv.cfg.Metrics,
	})
	if err := sv.registry.Insert(sess); err != nil {
		sv.logger.Warn("session insert rejected", "identity", identity, "error", err)
		return Outcome{Status: OutcomeError, Text: "I'm still working on your previous request."}
	}
	sv.cfg.Metrics.RecordSessionStart()
	sv.logger.Info("session started", "identity", identity, "session_id", sess.ID())
	return sv.drive(ctx, sess, text)
}

// drive runs one step of the session loop and keeps the registry consistent
// with the outcome.
func (sv *Service) drive(ctx context.Context, sess *Session, prompt string) Outcome {
	outcome := sess.Run(ctx, prompt)
	if outcome.Status != OutcomeQuestion {
		sv.registry.Remove(sess.Identity())
	}
	return outcome
}
