package webwritten

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/plu-programming-party/partybot/internal/telemetry"
)

// ServerConfig configures the webwritten HTTP API.
type ServerConfig struct {
	Store          *Store
	Generator      *Generator
	AdminKey       string
	AllowedOrigins []string
	Logger         *slog.Logger
	Metrics        *telemetry.Metrics
}

// Server exposes the story voting API.
type Server struct {
	cfg    ServerConfig
	logger *slog.Logger
	router chi.Router
}

// NewServer builds the router with CORS, request logging, and all routes.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{cfg: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Admin-Key"},
	}))

	r.Get("/healthz", s.handleHealthz)
	r.Method("GET", "/metrics", promhttp.Handler())
	r.Route("/api/webwritten", func(r chi.Router) {
		r.Get("/story", s.handleStory)
		r.Post("/vote", s.handleVote)
		r.Post("/submit", s.handleSubmit)
		r.Get("/stats", s.handleStats)
		r.Post("/admin/regenerate", s.handleRegenerate)
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler, for ListenAndServe or httptest.
func (s *Server) Handler() http.Handler { return s.router }

// voterID derives an anonymous, stable voter identity from the client
// address and user agent.
func voterID(r *http.Request) string {
	ip := r.RemoteAddr
	if host := strings.LastIndex(ip, ":"); host > 0 {
		ip = ip[:host]
	}
	if ip == "" {
		ip = "unknown"
	}
	ua := r.Header.Get("User-Agent")
	if ua == "" {
		ua = "unknown"
	}
	sum := sha256.Sum256([]byte(ip + ":" + ua))
	return hex.EncodeToString(sum[:])[:16]
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	voter := voterID(r)

	story, err := s.cfg.Store.Story(ctx)
	if err != nil {
		s.logger.Error("load story", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load story")
		return
	}
	sentence, err := s.cfg.Store.RandomActive(ctx, voter)
	if err != nil {
		s.logger.Error("pick sentence", "error", err)
		writeError(w, http.StatusInternalServerError, "could not pick a sentence")
		return
	}
	pending, err := s.cfg.Store.ActiveCount(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not count pool")
		return
	}
	voted, err := s.cfg.Store.VotedCount(ctx, voter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not count votes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"story":                   story,
		"current_sentence":        sentence,
		"total_pending_sentences": pending,
		"sentences_voted":         voted,
	})
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	voter := voterID(r)

	var req struct {
		SentenceID int64 `json:"sentence_id"`
		Rating     int   `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SentenceID == 0 || req.Rating == 0 {
		writeError(w, http.StatusBadRequest, "Missing sentence_id or rating")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "Rating must be 1-5")
		return
	}

	if err := s.cfg.Store.AddVote(ctx, req.SentenceID, voter, req.Rating); err != nil {
		if err == ErrAlreadyVoted {
			writeError(w, http.StatusBadRequest, "Already voted on this sentence")
			return
		}
		s.logger.Error("add vote", "error", err)
		writeError(w, http.StatusInternalServerError, "could not record vote")
		return
	}
	s.cfg.Metrics.RecordVote()

	next, err := s.cfg.Store.RandomActive(ctx, voter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not pick next sentence")
		return
	}
	voted, err := s.cfg.Store.VotedCount(ctx, voter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not count votes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"next_sentence":   next,
		"sentences_voted": voted,
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	voter := voterID(r)

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "Sentence text required")
		return
	}
	if len(text) > MaxSentenceLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Sentence too long (max %d chars)", MaxSentenceLength))
		return
	}
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")

	id, err := s.cfg.Store.AddPending(ctx, text, voter, "user")
	if err != nil {
		s.logger.Error("submit sentence", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save sentence")
		return
	}
	s.cfg.Metrics.RecordSubmission()
	s.logger.Info("user sentence submitted", "id", id)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"sentence_id": id,
		"message":     "Your sentence has been added to the pool!",
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storyLen, err := s.cfg.Store.StoryLength(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not read stats")
		return
	}
	pending, err := s.cfg.Store.ActiveCount(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not read stats")
		return
	}
	votesToday, err := s.cfg.Store.VotesToday(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not read stats")
		return
	}

	writeJSON(w, http.StatusOK, Stats{
		StoryLength:      storyLen,
		PendingSentences: pending,
		TotalVotesToday:  votesToday,
		NextSelection:    nextMidnightUTC(time.Now()),
	})
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AdminKey == "" || r.Header.Get("X-Admin-Key") != s.cfg.AdminKey {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	ctx := r.Context()

	deleted, err := s.cfg.Store.DeleteUnvotedActive(ctx)
	if err != nil {
		s.logger.Error("regenerate: delete", "error", err)
		writeError(w, http.StatusInternalServerError, "could not clear pool")
		return
	}

	story, err := s.cfg.Store.Story(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load story")
		return
	}
	sentences := s.cfg.Generator.Sentences(ctx, story, poolSeedSize)
	for _, sentence := range sentences {
		if _, err := s.cfg.Store.AddPending(ctx, sentence, "", "llm"); err != nil {
			s.logger.Error("regenerate: insert", "error", err)
			writeError(w, http.StatusInternalServerError, "could not refill pool")
			return
		}
	}
	s.logger.Info("regenerated pool", "deleted", deleted, "added", len(sentences))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": deleted,
		"added":   len(sentences),
	})
}

// nextMidnightUTC returns the next selection time.
func nextMidnightUTC(now time.Time) time.Time {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !midnight.After(now) {
		midnight = midnight.Add(24 * time.Hour)
	}
	return midnight
}
