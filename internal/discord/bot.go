// Package discord wires the chat platform to the agent service. It is thin
// by design: deliver (identity, text) in, render (status, text) out.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/plu-programming-party/partybot/internal/agent"
	"github.com/plu-programming-party/partybot/internal/site"
)

// BotConfig configures the Discord front-end.
type BotConfig struct {
	Token     string
	ChannelID string
	Service   *agent.Service
	Publisher *site.Publisher
	Logger    *slog.Logger
}

// Bot is the Discord gateway for website change requests.
type Bot struct {
	cfg     BotConfig
	session *discordgo.Session
	logger  *slog.Logger
}

// NewBot creates the gateway session and registers handlers.
func NewBot(cfg BotConfig) (*Bot, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	b := &Bot{cfg: cfg, session: session, logger: logger}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessage)
	return b, nil
}

// Start opens the gateway connection and blocks until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	<-ctx.Done()
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("bot logged in", "user", r.User.Username)
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}
	if m.ChannelID != b.cfg.ChannelID {
		return
	}

	// HAL 9000 easter egg for users with "dav" in their name.
	if strings.Contains(strings.ToLower(m.Author.Username), "dav") {
		b.reply(m, "I'm sorry dav, but I can't do that.")
		return
	}

	// The session loop blocks on model calls; keep the gateway handler free.
	go b.process(m)
}

func (b *Bot) process(m *discordgo.MessageCreate) {
	_ = b.session.ChannelTyping(m.ChannelID)
	b.logger.Info("processing prompt", "author", m.Author.Username)

	outcome := b.cfg.Service.Prompt(context.Background(), m.Author.ID, m.Content)
	switch outcome.Status {
	case agent.OutcomeQuestion:
		b.reply(m, fmt.Sprintf("I have a question to better understand your request:\n\n• %s", outcome.Text))
	case agent.OutcomeError:
		b.reply(m, fmt.Sprintf("❌ %s", outcome.Text))
	case agent.OutcomeComplete:
		b.finish(m, outcome)
	}
}

func (b *Bot) finish(m *discordgo.MessageCreate, outcome agent.Outcome) {
	if len(outcome.Files) == 0 {
		b.reply(m, outcome.Text)
		return
	}

	b.reply(m, "🚀 Pushing to GitHub...")
	if _, err := b.cfg.Publisher.Publish(context.Background(), outcome.Files, m.Content); err != nil {
		b.logger.Error("publish failed", "error", err)
		b.reply(m, "⚠️ Changes applied but failed to push to GitHub. Please check the repository.")
		return
	}

	var files strings.Builder
	for _, f := range outcome.Files {
		files.WriteString("✅ " + f + "\n")
	}
	b.reply(m, fmt.Sprintf("✨ Changes deployed successfully!\n\nModified files:\n%s\nThe website will update in a few moments...", files.String()))
}

func (b *Bot) reply(m *discordgo.MessageCreate, text string) {
	if _, err := b.session.ChannelMessageSendReply(m.ChannelID, text, m.Reference()); err != nil {
		b.logger.Error("reply failed", "error", err)
	}
}
