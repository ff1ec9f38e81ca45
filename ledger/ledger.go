package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/pollcast/pollcast/identity"
	"github.com/pollcast/pollcast/models"
	"github.com/pollcast/pollcast/store"
)

var ErrInvalidOption = errors.New("option does not belong to poll")

// DuplicateVoteError rejects a vote attempt whose fingerprint or token
// already admitted a vote for the poll. Mechanism records which check
// fired; the caller-visible effect is the same either way.
type DuplicateVoteError struct {
	Mechanism string
}

func (e *DuplicateVoteError) Error() string {
	return "duplicate vote detected by " + e.Mechanism
}

// Ledger is the authoritative record of one vote per identity per poll.
// Uniqueness is enforced by the storage constraints, not an in-process
// lock, so it holds across concurrent requests and serving instances.
type Ledger struct {
	db    *sql.DB
	store *store.Store
}

func New(db *sql.DB, st *store.Store) *Ledger {
	return &Ledger{db: db, store: st}
}

// CastVote admits or rejects a single vote attempt and, on success,
// returns the poll's tally recomputed by full count.
//
// The fingerprint check runs before the token check; a shared network
// egress and a repeat browser are reported as distinct duplicate
// mechanisms. Both pre-checks exist for error quality only - the
// UNIQUE constraints catch any race at insert time, and that violation
// is remapped to DuplicateVoteError rather than surfaced as a storage
// failure.
func (l *Ledger) CastVote(ctx context.Context, pollID, optionID, fingerprint, voterToken string) (models.Tally, error) {
	if _, err := l.store.GetPoll(ctx, pollID); err != nil {
		return models.Tally{}, err
	}

	ok, err := l.store.OptionInPoll(ctx, pollID, optionID)
	if err != nil {
		return models.Tally{}, err
	}
	if !ok {
		return models.Tally{}, ErrInvalidOption
	}

	dup, err := l.voteExists(ctx, pollID, "fingerprint", fingerprint)
	if err != nil {
		return models.Tally{}, err
	}
	if dup {
		return models.Tally{}, &DuplicateVoteError{Mechanism: models.MechanismFingerprint}
	}

	dup, err = l.voteExists(ctx, pollID, "voter_token", voterToken)
	if err != nil {
		return models.Tally{}, err
	}
	if dup {
		return models.Tally{}, &DuplicateVoteError{Mechanism: models.MechanismToken}
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO vote (id, poll_id, option_id, fingerprint, voter_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, identity.NewID(), pollID, optionID, fingerprint, voterToken, time.Now().UTC())
	if err != nil {
		if mechanism, isDup := duplicateMechanism(err); isDup {
			return models.Tally{}, &DuplicateVoteError{Mechanism: mechanism}
		}
		return models.Tally{}, fmt.Errorf("insert vote: %w", err)
	}

	return l.store.GetTally(ctx, pollID)
}

func (l *Ledger) voteExists(ctx context.Context, pollID, column, value string) (bool, error) {
	// column is one of two fixed names picked by CastVote, never input
	query := `SELECT EXISTS(SELECT 1 FROM vote WHERE poll_id = $1 AND ` + column + ` = $2)`

	var exists bool
	if err := l.db.QueryRowContext(ctx, query, pollID, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("query existing vote: %w", err)
	}
	return exists, nil
}

// duplicateMechanism classifies a storage error as a uniqueness
// violation and names the mechanism from the violated constraint.
// Postgres reports the constraint name through pq.Error; sqlite names
// the columns in its message. Both carry "fingerprint" or "voter_token".
func duplicateMechanism(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code != "23505" {
			return "", false
		}
		if strings.Contains(pqErr.Constraint, "fingerprint") {
			return models.MechanismFingerprint, true
		}
		return models.MechanismToken, true
	}

	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return "", false
	}
	if strings.Contains(msg, "fingerprint") {
		return models.MechanismFingerprint, true
	}
	return models.MechanismToken, true
}
