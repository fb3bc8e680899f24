package webwritten

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/plu-programming-party/partybot/internal/llm"
)

const (
	generatorModel     = "claude-sonnet-4-20250514"
	generatorMaxTokens = 2048

	// Pool maintenance thresholds.
	poolLowWater   = 30
	poolRefillSize = 20
	poolSeedSize   = 50

	fallbackOpening = "The old lighthouse had been dark for seventeen years, but tonight, a light flickered in its highest window."
)

var fallbackSentences = []string{
	"A chill ran down my spine as I watched.",
	"The sound of footsteps echoed from somewhere above.",
	"I had to know who—or what—was inside.",
	"The villagers had warned me to stay away.",
	"My flashlight flickered, then died completely.",
}

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// Generator produces candidate next sentences for the story pool.
type Generator struct {
	client llm.Client
	logger *slog.Logger
}

// NewGenerator creates a sentence generator backed by the model client.
func NewGenerator(client llm.Client, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, logger: logger}
}

// Sentences asks the model for count candidate continuations of the story.
// Failures return an empty slice; pool maintenance tolerates missed rounds.
func (g *Generator) Sentences(ctx context.Context, story string, count int) []string {
	if g.client == nil {
		return nil
	}
	if story == "" {
		story = "(Story has not started yet)"
	}

	prompt := fmt.Sprintf(`You are helping write a collaborative story. Here is the story so far:

%q

Generate %d unique, creative potential next sentences.
Each sentence should:
- Be 10-30 words
- Continue the story naturally
- Vary in tone and direction (some dramatic, some calm, some mysterious)
- Be appropriate for all ages
- Be a complete thought that flows from the current story

Return ONLY a JSON array of strings, no other text:
["sentence1", "sentence2", ...]`, story, count)

	resp, err := g.client.Chat(ctx, llm.ChatRequest{
		Model:     generatorModel,
		MaxTokens: generatorMaxTokens,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
	})
	if err != nil {
		g.logger.Error("sentence generation failed", "error", err)
		return nil
	}

	sentences, err := parseSentenceArray(resp.Content)
	if err != nil {
		g.logger.Warn("could not parse generated sentences", "error", err)
		return nil
	}
	g.logger.Info("generated sentences", "count", len(sentences))
	return sentences
}

// Opening asks the model for a story opening, falling back to a fixed line.
func (g *Generator) Opening(ctx context.Context) string {
	if g.client == nil {
		return fallbackOpening
	}
	resp, err := g.client.Chat(ctx, llm.ChatRequest{
		Model:     generatorModel,
		MaxTokens: 100,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: "Write a single opening sentence for a collaborative mystery story. The sentence should be intriguing and set the scene. Just the sentence, no quotes or explanation.",
		}},
	})
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		return fallbackOpening
	}
	return strings.Trim(strings.TrimSpace(resp.Content), `"`)
}

func parseSentenceArray(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	candidate := text
	if !strings.HasPrefix(candidate, "[") {
		match := jsonArrayPattern.FindString(text)
		if match == "" {
			return nil, fmt.Errorf("no JSON array in response")
		}
		candidate = match
	}
	var sentences []string
	if err := json.Unmarshal([]byte(candidate), &sentences); err != nil {
		return nil, fmt.Errorf("parse sentence array: %w", err)
	}
	return sentences, nil
}

// Seed populates an empty database with an opening line and an initial pool.
func Seed(ctx context.Context, store *Store, gen *Generator, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	n, err := store.StoryLength(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	logger.Info("seeding initial story content")
	opening := gen.Opening(ctx)
	if err := store.AppendStory(ctx, opening, "seed"); err != nil {
		return err
	}

	sentences := gen.Sentences(ctx, opening, poolSeedSize)
	if len(sentences) == 0 {
		sentences = fallbackSentences
	}
	for _, sentence := range sentences {
		if _, err := store.AddPending(ctx, sentence, "", "llm"); err != nil {
			return err
		}
	}
	logger.Info("seeded story", "pool", len(sentences))
	return nil
}
