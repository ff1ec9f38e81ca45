package models

import "time"

// Dedup mechanisms reported on a rejected duplicate vote
const (
	MechanismFingerprint = "fingerprint"
	MechanismToken       = "token"
)

// Request types

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type CastVoteRequest struct {
	OptionID   string `json:"option_id"`
	VoterToken string `json:"voter_token"`
}

// Response types

type CreatePollResponse struct {
	ID        string   `json:"id"`
	Question  string   `json:"question"`
	Options   []Option `json:"options"`
	ShareLink string   `json:"share_link"`
}

type PollResponse struct {
	ID        string        `json:"id"`
	Question  string        `json:"question"`
	CreatedAt time.Time     `json:"created_at"`
	Options   []OptionCount `json:"options"`
}

type CastVoteResponse struct {
	Success bool          `json:"success"`
	Options []OptionCount `json:"options"`
}

type DuplicateVoteResponse struct {
	Error     string `json:"error"`
	Mechanism string `json:"mechanism,omitempty"`
}

// Domain types

type Poll struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	CreatedAt time.Time `json:"created_at"`
}

type Option struct {
	ID       string `json:"id"`
	PollID   string `json:"poll_id"`
	Text     string `json:"text"`
	Position int    `json:"-"`
}

type Vote struct {
	ID          string    `json:"id"`
	PollID      string    `json:"poll_id"`
	OptionID    string    `json:"option_id"`
	Fingerprint string    `json:"-"` // Never expose in JSON
	VoterToken  string    `json:"-"` // Never expose in JSON
	CreatedAt   time.Time `json:"created_at"`
}

// OptionCount is one option with its current vote count.
type OptionCount struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

// Tally is the derived per-option vote counts for a poll, recomputed
// from the vote table after every accepted write. Never cached across
// a write.
type Tally struct {
	PollID  string        `json:"poll_id"`
	Options []OptionCount `json:"options"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
