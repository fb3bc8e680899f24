// Package webwritten implements the collaborative story voting service:
// a SQLite-backed sentence pool, an HTTP API for reading the story and
// voting, an LLM candidate generator, and the daily winner selection.
package webwritten

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Winner floor: a sentence needs this many votes before it can win a day.
const minWinnerVotes = 3

// MaxSentenceLength bounds user submissions.
const MaxSentenceLength = 500

// Sentence is a pool entry offered for voting.
type Sentence struct {
	ID            int64   `json:"id"`
	Text          string  `json:"text"`
	VotesCount    int     `json:"votes_count"`
	AverageRating float64 `json:"average_rating"`
}

// Winner is the sentence promoted into the story by a selection round.
type Winner struct {
	Sentence string  `json:"sentence"`
	Rating   float64 `json:"rating"`
	Votes    int     `json:"votes"`
}

// Stats summarizes service state for the public stats endpoint.
type Stats struct {
	StoryLength      int       `json:"story_length"`
	PendingSentences int       `json:"pending_sentences"`
	TotalVotesToday  int       `json:"total_votes_today"`
	NextSelection    time.Time `json:"next_selection"`
}

// ErrAlreadyVoted is reported when a voter rates the same sentence twice.
var ErrAlreadyVoted = fmt.Errorf("already voted on this sentence")

// Store is the SQLite-backed persistence layer.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and if needed creates) the webwritten database.
func OpenStore(path string) (*Store, error) {
	dsn := path + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS story (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sentence TEXT NOT NULL,
		added_date DATETIME DEFAULT CURRENT_TIMESTAMP,
		position INTEGER NOT NULL,
		source TEXT DEFAULT 'llm'
	);
	CREATE TABLE IF NOT EXISTS pending_sentences (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		submitter_id TEXT,
		submitted_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		source TEXT DEFAULT 'llm',
		total_rating INTEGER DEFAULT 0,
		vote_count INTEGER DEFAULT 0,
		is_active BOOLEAN DEFAULT 1
	);
	CREATE TABLE IF NOT EXISTS votes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sentence_id INTEGER NOT NULL,
		voter_id TEXT NOT NULL,
		rating INTEGER NOT NULL,
		voted_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (sentence_id) REFERENCES pending_sentences(id),
		UNIQUE(sentence_id, voter_id)
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Story returns the full story text, sentences joined in position order.
func (s *Store) Story(ctx context.Context) (string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT sentence FROM story ORDER BY position ASC`)
	if err != nil {
		return "", fmt.Errorf("load story: %w", err)
	}
	defer rows.Close()

	var sentences []string
	for rows.Next() {
		var sentence string
		if err := rows.Scan(&sentence); err != nil {
			return "", fmt.Errorf("load story: %w", err)
		}
		sentences = append(sentences, sentence)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("load story: %w", err)
	}
	return strings.Join(sentences, " "), nil
}

// StoryLength returns the number of sentences in the story.
func (s *Store) StoryLength(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM story`).Scan(&n)
	return n, err
}

// AppendStory adds a sentence at the next position.
func (s *Store) AppendStory(ctx context.Context, sentence, source string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO story (sentence, position, source)
		VALUES (?, COALESCE((SELECT MAX(position) FROM story), 0) + 1, ?)`,
		sentence, source)
	if err != nil {
		return fmt.Errorf("append story: %w", err)
	}
	return nil
}

// AddPending inserts a candidate sentence into the pool.
func (s *Store) AddPending(ctx context.Context, text, submitterID, source string) (int64, error) {
	var sub interface{}
	if submitterID != "" {
		sub = submitterID
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO pending_sentences (text, submitter_id, source) VALUES (?, ?, ?)`,
		text, sub, source)
	if err != nil {
		return 0, fmt.Errorf("add pending sentence: %w", err)
	}
	return res.LastInsertId()
}

// ActiveCount returns the number of sentences still open for voting.
func (s *Store) ActiveCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_sentences WHERE is_active = 1`).Scan(&n)
	return n, err
}

// RandomActive returns a random active sentence the voter has not yet rated,
// or nil when the voter has exhausted the pool.
func (s *Store) RandomActive(ctx context.Context, voterID string) (*Sentence, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, text, vote_count,
		       CASE WHEN vote_count > 0 THEN CAST(total_rating AS FLOAT) / vote_count ELSE 0 END
		FROM pending_sentences
		WHERE is_active = 1
		  AND id NOT IN (SELECT sentence_id FROM votes WHERE voter_id = ?)
		ORDER BY RANDOM()
		LIMIT 1`, voterID)

	var sent Sentence
	if err := row.Scan(&sent.ID, &sent.Text, &sent.VotesCount, &sent.AverageRating); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("random active sentence: %w", err)
	}
	return &sent, nil
}

// VotedCount returns how many sentences a voter has rated.
func (s *Store) VotedCount(ctx context.Context, voterID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes WHERE voter_id = ?`, voterID).Scan(&n)
	return n, err
}

// AddVote records a rating and updates the sentence totals atomically.
// Duplicate votes by the same voter are rejected with ErrAlreadyVoted.
func (s *Store) AddVote(ctx context.Context, sentenceID int64, voterID string, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be 1-5")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("add vote: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO votes (sentence_id, voter_id, rating) VALUES (?, ?, ?)`,
		sentenceID, voterID, rating); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return ErrAlreadyVoted
		}
		return fmt.Errorf("add vote: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE pending_sentences SET total_rating = total_rating + ?, vote_count = vote_count + 1 WHERE id = ?`,
		rating, sentenceID); err != nil {
		return fmt.Errorf("add vote: %w", err)
	}

	return tx.Commit()
}

// VotesToday returns the number of votes cast today (UTC database time).
func (s *Store) VotesToday(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM votes WHERE DATE(voted_at) = DATE('now')`).Scan(&n)
	return n, err
}

// SelectWinner promotes the highest-rated sentence with at least
// minWinnerVotes votes into the story and deactivates it. Average rating
// decides; vote count breaks ties. Returns nil when no sentence qualifies.
func (s *Store) SelectWinner(ctx context.Context) (*Winner, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("select winner: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, text, vote_count,
		       CAST(total_rating AS FLOAT) / vote_count AS avg_rating
		FROM pending_sentences
		WHERE is_active = 1 AND vote_count >= ?
		ORDER BY avg_rating DESC, vote_count DESC
		LIMIT 1`, minWinnerVotes)

	var (
		id        int64
		text      string
		voteCount int
		avg       float64
	)
	if err := row.Scan(&id, &text, &voteCount, &avg); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("select winner: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO story (sentence, position, source)
		VALUES (?, COALESCE((SELECT MAX(position) FROM story), 0) + 1, 'voted')`, text); err != nil {
		return nil, fmt.Errorf("select winner: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE pending_sentences SET is_active = 0 WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("select winner: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("select winner: %w", err)
	}

	return &Winner{Sentence: text, Rating: avg, Votes: voteCount}, nil
}

// DeleteUnvotedActive removes active sentences nobody has rated yet,
// returning how many were deleted. Used by the admin regenerate endpoint.
func (s *Store) DeleteUnvotedActive(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM pending_sentences WHERE is_active = 1 AND vote_count = 0`)
	if err != nil {
		return 0, fmt.Errorf("delete unvoted: %w", err)
	}
	return res.RowsAffected()
}
