package config

import (
	"testing"
)

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("CLAUDE_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without CLAUDE_API_KEY")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CLAUDE_API_KEY", "sk-test")
	t.Setenv("CLAUDE_MODEL", "")
	t.Setenv("AGENT_MAX_ITERATIONS", "")
	t.Setenv("REPO_LOCAL_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != defaultModel {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.RepoLocalPath != defaultRepoPath {
		t.Errorf("RepoLocalPath = %q", cfg.RepoLocalPath)
	}
	if cfg.MaxIterations != defaultMaxIterations {
		t.Errorf("MaxIterations = %d", cfg.MaxIterations)
	}
}

func TestLoad_MaxIterationsOverride(t *testing.T) {
	t.Setenv("CLAUDE_API_KEY", "sk-test")
	t.Setenv("AGENT_MAX_ITERATIONS", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxIterations != 7 {
		t.Errorf("MaxIterations = %d", cfg.MaxIterations)
	}

	t.Setenv("AGENT_MAX_ITERATIONS", "zero")
	if _, err := Load(); err == nil {
		t.Error("non-numeric AGENT_MAX_ITERATIONS should fail")
	}
}

func TestRequireBotAndGit(t *testing.T) {
	cfg := &Config{}
	if err := cfg.RequireBot(); err == nil {
		t.Error("RequireBot should fail without token")
	}
	if err := cfg.RequireGit(); err == nil {
		t.Error("RequireGit should fail without GitHub settings")
	}

	cfg.DiscordToken = "tok"
	cfg.DiscordChannelID = "123"
	cfg.GitHubToken = "gh"
	cfg.GitHubRepoOwner = "owner"
	cfg.GitHubRepoName = "repo"
	if err := cfg.RequireBot(); err != nil {
		t.Errorf("RequireBot: %v", err)
	}
	if err := cfg.RequireGit(); err != nil {
		t.Errorf("RequireGit: %v", err)
	}
}
