package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pollcast/pollcast/identity"
	"github.com/pollcast/pollcast/models"
)

var ErrPollNotFound = errors.New("poll not found")

// Store provides read access to poll and option definitions and their
// vote counts. It reads committed state directly, so a tally fetched
// after a vote insert always reflects that insert.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreatePoll inserts a poll and its options atomically. Option order
// follows the input slice and becomes the display order. Validation of
// question and option text happens at the handler boundary; this method
// assumes well-formed input.
func (s *Store) CreatePoll(ctx context.Context, question string, options []string) (models.Poll, []models.Option, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Poll{}, nil, fmt.Errorf("begin poll creation: %w", err)
	}
	defer tx.Rollback()

	poll := models.Poll{
		ID:        identity.NewID(),
		Question:  question,
		CreatedAt: time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO poll (id, question, created_at)
		VALUES ($1, $2, $3)
	`, poll.ID, poll.Question, poll.CreatedAt)
	if err != nil {
		return models.Poll{}, nil, fmt.Errorf("insert poll: %w", err)
	}

	opts := make([]models.Option, 0, len(options))
	for i, text := range options {
		opt := models.Option{
			ID:       identity.NewID(),
			PollID:   poll.ID,
			Text:     text,
			Position: i,
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO option (id, poll_id, text, position)
			VALUES ($1, $2, $3, $4)
		`, opt.ID, opt.PollID, opt.Text, opt.Position)
		if err != nil {
			return models.Poll{}, nil, fmt.Errorf("insert option: %w", err)
		}
		opts = append(opts, opt)
	}

	if err := tx.Commit(); err != nil {
		return models.Poll{}, nil, fmt.Errorf("commit poll creation: %w", err)
	}

	return poll, opts, nil
}

// GetPoll returns the poll definition, or ErrPollNotFound.
func (s *Store) GetPoll(ctx context.Context, id string) (models.Poll, error) {
	var poll models.Poll
	err := s.db.QueryRowContext(ctx, `
		SELECT id, question, created_at FROM poll WHERE id = $1
	`, id).Scan(&poll.ID, &poll.Question, &poll.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return models.Poll{}, ErrPollNotFound
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("query poll: %w", err)
	}

	return poll, nil
}

// OptionInPoll reports whether the option exists and belongs to the
// given poll.
func (s *Store) OptionInPoll(ctx context.Context, pollID, optionID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM option WHERE id = $1 AND poll_id = $2
		)
	`, optionID, pollID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query option: %w", err)
	}
	return exists, nil
}

// GetTally returns the vote count for every option of the poll, in
// display order, zero-filled for options with no votes. Counts are a
// full recount from the vote table, not an incremental figure.
func (s *Store) GetTally(ctx context.Context, pollID string) (models.Tally, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.text, COUNT(v.id)
		FROM option o
		LEFT JOIN vote v ON v.option_id = o.id
		WHERE o.poll_id = $1
		GROUP BY o.id, o.text, o.position
		ORDER BY o.position
	`, pollID)
	if err != nil {
		return models.Tally{}, fmt.Errorf("query tally: %w", err)
	}
	defer rows.Close()

	tally := models.Tally{PollID: pollID, Options: []models.OptionCount{}}
	for rows.Next() {
		var oc models.OptionCount
		if err := rows.Scan(&oc.ID, &oc.Text, &oc.Votes); err != nil {
			return models.Tally{}, fmt.Errorf("scan tally row: %w", err)
		}
		tally.Options = append(tally.Options, oc)
	}
	if err := rows.Err(); err != nil {
		return models.Tally{}, fmt.Errorf("iterate tally rows: %w", err)
	}

	return tally, nil
}
