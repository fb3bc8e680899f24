// Package config loads partybot configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the bot and the webwritten service need to run.
type Config struct {
	// Model endpoint.
	ClaudeAPIKey string
	Model        string

	// Discord front-end.
	DiscordToken     string
	DiscordChannelID string

	// Website repository.
	RepoLocalPath   string
	GitHubToken     string
	GitHubRepoOwner string
	GitHubRepoName  string
	GitHubUserName  string
	GitHubUserEmail string

	// Agent loop.
	MaxIterations int

	// Webwritten service.
	WebwrittenDBPath string
	WebwrittenAddr   string
	AdminKey         string
	AllowedOrigins   []string
}

const (
	defaultModel         = "claude-sonnet-4-20250514"
	defaultRepoPath      = "./website_repo"
	defaultDBPath        = "./webwritten.db"
	defaultListenAddr    = ":8090"
	defaultMaxIterations = 20
	defaultUserName      = "Programming Party Bot"
	defaultUserEmail     = "bot@programmingparty.plu.edu"
)

var defaultOrigins = []string{
	"https://plu-programming-party.github.io",
	"http://localhost:8080",
}

// Load reads configuration from the environment, consulting a .env file if
// one is present. Required keys depend on what the caller runs, so Load
// itself only validates formats; use RequireBot / RequireGit for commands
// that need them.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ClaudeAPIKey:     os.Getenv("CLAUDE_API_KEY"),
		Model:            envOr("CLAUDE_MODEL", defaultModel),
		DiscordToken:     os.Getenv("DISCORD_TOKEN"),
		DiscordChannelID: os.Getenv("DISCORD_CHANNEL_ID"),
		RepoLocalPath:    envOr("REPO_LOCAL_PATH", defaultRepoPath),
		GitHubToken:      os.Getenv("GITHUB_TOKEN"),
		GitHubRepoOwner:  os.Getenv("GITHUB_REPO_OWNER"),
		GitHubRepoName:   os.Getenv("GITHUB_REPO_NAME"),
		GitHubUserName:   envOr("GITHUB_USER_NAME", defaultUserName),
		GitHubUserEmail:  envOr("GITHUB_USER_EMAIL", defaultUserEmail),
		MaxIterations:    defaultMaxIterations,
		WebwrittenDBPath: envOr("WEBWRITTEN_DB_PATH", defaultDBPath),
		WebwrittenAddr:   envOr("WEBWRITTEN_ADDR", defaultListenAddr),
		AdminKey:         os.Getenv("ADMIN_KEY"),
		AllowedOrigins:   defaultOrigins,
	}

	if raw := os.Getenv("AGENT_MAX_ITERATIONS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("AGENT_MAX_ITERATIONS must be a positive integer, got %q", raw)
		}
		cfg.MaxIterations = n
	}

	if cfg.ClaudeAPIKey == "" {
		return nil, fmt.Errorf("CLAUDE_API_KEY not found in environment")
	}
	return cfg, nil
}

// RequireBot validates the keys the Discord front-end needs.
func (c *Config) RequireBot() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN not found in environment")
	}
	if c.DiscordChannelID == "" {
		return fmt.Errorf("DISCORD_CHANNEL_ID not found in environment")
	}
	return nil
}

// RequireGit validates the keys the publisher needs.
func (c *Config) RequireGit() error {
	if c.GitHubToken == "" || c.GitHubRepoOwner == "" || c.GitHubRepoName == "" {
		return fmt.Errorf("missing GitHub configuration (GITHUB_TOKEN, GITHUB_REPO_OWNER, GITHUB_REPO_NAME)")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
