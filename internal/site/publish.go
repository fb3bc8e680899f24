package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// PublisherConfig configures the git publisher.
type PublisherConfig struct {
	Path      string // local checkout directory
	Token     string // GitHub access token
	Owner     string
	Repo      string
	UserName  string
	UserEmail string
	Logger    *slog.Logger
}

// Publisher stages, commits, and pushes the files an agent session changed.
// Publish calls are serialized behind a mutex; the working tree itself is
// shared with the tool executor and stays unlocked.
type Publisher struct {
	cfg    PublisherConfig
	logger *slog.Logger
	mu     sync.Mutex
}

// NewPublisher creates a publisher for the given checkout.
func NewPublisher(cfg PublisherConfig) *Publisher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{cfg: cfg, logger: logger}
}

func (p *Publisher) tokenURL() string {
	return fmt.Sprintf("https://x-access-token:%s@github.com/%s/%s.git", p.cfg.Token, p.cfg.Owner, p.cfg.Repo)
}

func (p *Publisher) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = p.cfg.Path
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Init clones the repository if the checkout does not exist yet, otherwise
// pulls the latest changes, and configures the commit identity.
func (p *Publisher) Init(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := os.Stat(p.cfg.Path); os.IsNotExist(err) {
		p.logger.Info("cloning website repository", "path", p.cfg.Path)
		cmd := exec.CommandContext(ctx, "git", "clone", p.tokenURL(), p.cfg.Path)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("git clone: %s: %w", strings.TrimSpace(string(out)), err)
		}
	} else {
		if _, err := p.git(ctx, "pull", "--ff-only"); err != nil {
			p.logger.Warn("could not pull latest changes", "error", err)
		}
	}

	if _, err := p.git(ctx, "config", "user.email", p.cfg.UserEmail); err != nil {
		return err
	}
	if _, err := p.git(ctx, "config", "user.name", p.cfg.UserName); err != nil {
		return err
	}
	return nil
}

// Publish stages the given paths, commits them with the requester's prompt
// in the message, and pushes. It returns the commit hash. A push failure
// leaves the local commit in place; the caller reports partial success.
func (p *Publisher) Publish(ctx context.Context, paths []string, prompt string) (string, error) {
	if len(paths) == 0 {
		return "", fmt.Errorf("publish: no files to commit")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.git(ctx, "pull", "--ff-only"); err != nil {
		p.logger.Warn("pull before publish failed", "error", err)
	}

	addArgs := append([]string{"add", "--"}, paths...)
	if _, err := p.git(ctx, addArgs...); err != nil {
		return "", fmt.Errorf("publish: %w", err)
	}

	message := fmt.Sprintf("Student request: %s", prompt)
	if _, err := p.git(ctx, "commit", "-m", message); err != nil {
		return "", fmt.Errorf("publish: %w", err)
	}

	hash, err := p.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("publish: %w", err)
	}

	if _, err := p.git(ctx, "push"); err != nil {
		// Retry with the token embedded in the URL; plain push fails when
		// the clone predates the current token.
		p.logger.Warn("plain push failed, retrying with token URL", "error", err)
		if _, err := p.git(ctx, "push", p.tokenURL(), "HEAD:main"); err != nil {
			return hash, fmt.Errorf("publish: push: %w", err)
		}
	}

	p.logger.Info("published changes", "commit", hash, "files", len(paths))
	return hash, nil
}

// Rollback reverts a published commit and pushes the revert.
func (p *Publisher) Rollback(ctx context.Context, hash string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.git(ctx, "revert", "--no-edit", hash); err != nil {
		return fmt.Errorf("rollback %s: %w", hash, err)
	}
	if _, err := p.git(ctx, "push"); err != nil {
		return fmt.Errorf("rollback %s: push: %w", hash, err)
	}
	p.logger.Info("rolled back commit", "commit", hash)
	return nil
}
