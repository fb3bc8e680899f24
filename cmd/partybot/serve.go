package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/plu-programming-party/partybot/internal/agent"
	"github.com/plu-programming-party/partybot/internal/config"
	"github.com/plu-programming-party/partybot/internal/discord"
	"github.com/plu-programming-party/partybot/internal/llm"
	"github.com/plu-programming-party/partybot/internal/site"
	"github.com/plu-programming-party/partybot/internal/telemetry"
	"github.com/plu-programming-party/partybot/internal/webwritten"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Discord bot, the webwritten API, and the daily scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireBot(); err != nil {
		return err
	}
	if err := cfg.RequireGit(); err != nil {
		return err
	}

	logger := newLogger()
	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)
	client := llm.NewAnthropicClientWithKey(cfg.ClaudeAPIKey)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Website checkout and publisher.
	publisher := site.NewPublisher(site.PublisherConfig{
		Path:      cfg.RepoLocalPath,
		Token:     cfg.GitHubToken,
		Owner:     cfg.GitHubRepoOwner,
		Repo:      cfg.GitHubRepoName,
		UserName:  cfg.GitHubUserName,
		UserEmail: cfg.GitHubUserEmail,
		Logger:    telemetry.ComponentLogger(logger, "publisher"),
	})
	if err := publisher.Init(ctx); err != nil {
		return fmt.Errorf("init repository: %w", err)
	}

	siteContext, err := site.Context(cfg.RepoLocalPath)
	if err != nil {
		return err
	}

	service := agent.NewService(agent.ServiceConfig{
		Client:        client,
		Executor:      agent.NewExecutor(cfg.RepoLocalPath),
		Model:         cfg.Model,
		System:        agent.SystemPrompt(siteContext),
		MaxIterations: cfg.MaxIterations,
		Logger:        telemetry.ComponentLogger(logger, "agent"),
		Metrics:       metrics,
	})

	bot, err := discord.NewBot(discord.BotConfig{
		Token:     cfg.DiscordToken,
		ChannelID: cfg.DiscordChannelID,
		Service:   service,
		Publisher: publisher,
		Logger:    telemetry.ComponentLogger(logger, "discord"),
	})
	if err != nil {
		return err
	}

	// Webwritten voting service.
	store, err := webwritten.OpenStore(cfg.WebwrittenDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	gen := webwritten.NewGenerator(client, telemetry.ComponentLogger(logger, "generator"))
	if err := webwritten.Seed(ctx, store, gen, telemetry.ComponentLogger(logger, "webwritten")); err != nil {
		return fmt.Errorf("seed webwritten: %w", err)
	}

	api := webwritten.NewServer(webwritten.ServerConfig{
		Store:          store,
		Generator:      gen,
		AdminKey:       cfg.AdminKey,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         telemetry.ComponentLogger(logger, "webwritten"),
		Metrics:        metrics,
	})
	httpServer := &http.Server{Addr: cfg.WebwrittenAddr, Handler: api.Handler()}

	scheduler := webwritten.NewScheduler(store, gen, telemetry.ComponentLogger(logger, "scheduler"), metrics)
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Start(ctx)
	})
	g.Go(func() error {
		logger.Info("webwritten API listening", "addr", cfg.WebwrittenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	logger.Info("partybot ready")
	return g.Wait()
}
