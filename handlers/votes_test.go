package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pollcast/pollcast/fanout"
	"github.com/pollcast/pollcast/identity"
	"github.com/pollcast/pollcast/ledger"
	"github.com/pollcast/pollcast/models"
	"github.com/pollcast/pollcast/store"
	"github.com/pollcast/pollcast/testutil"
)

func newVoteHandler(db *sql.DB) (*VoteHandler, *fanout.Hub) {
	hub := fanout.NewHub()
	return NewVoteHandler(ledger.New(db, store.New(db)), hub, testutil.GetTestConfig()), hub
}

func castVoteRequest(pollID, optionID, token, ip string) *http.Request {
	req := testutil.MakeRequest("POST", "/polls/"+pollID+"/votes", models.CastVoteRequest{
		OptionID:   optionID,
		VoterToken: token,
	}, map[string]string{"X-Forwarded-For": ip})
	req.SetPathValue("id", pollID)
	return req
}

func TestCastVoteSuccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	voteHandler, _ := newVoteHandler(db)

	pollID, optionIDs := testutil.CreateTestPoll(t, db, "Colors?", "Red", "Blue")

	w := httptest.NewRecorder()
	voteHandler.CastVote(w, castVoteRequest(pollID, optionIDs[0], identity.NewID(), "203.0.113.1"))

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.CastVoteResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.Success {
		t.Error("Expected success to be true")
	}
	if len(resp.Options) != 2 || resp.Options[0].Votes != 1 || resp.Options[1].Votes != 0 {
		t.Errorf("Expected recounted tally [1 0], got %+v", resp.Options)
	}
}

func TestCastVotePollNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	voteHandler, _ := newVoteHandler(db)

	w := httptest.NewRecorder()
	voteHandler.CastVote(w, castVoteRequest(identity.NewID(), identity.NewID(), identity.NewID(), "203.0.113.1"))

	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestCastVoteBadIdentifiers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	voteHandler, _ := newVoteHandler(db)

	pollID, optionIDs := testutil.CreateTestPoll(t, db, "Colors?", "Red", "Blue")

	cases := []struct {
		name     string
		pollID   string
		optionID string
		token    string
	}{
		{"malformed poll id", "not-a-uuid", optionIDs[0], identity.NewID()},
		{"malformed option id", pollID, "not-a-uuid", identity.NewID()},
		{"malformed voter token", pollID, optionIDs[0], "not-a-uuid"},
		{"empty voter token", pollID, optionIDs[0], ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			voteHandler.CastVote(w, castVoteRequest(tc.pollID, tc.optionID, tc.token, "203.0.113.1"))
			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestCastVoteOptionFromAnotherPoll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	voteHandler, _ := newVoteHandler(db)

	pollA, _ := testutil.CreateTestPoll(t, db, "Poll A", "One", "Two")
	_, optsB := testutil.CreateTestPoll(t, db, "Poll B", "Three", "Four")

	w := httptest.NewRecorder()
	voteHandler.CastVote(w, castVoteRequest(pollA, optsB[0], identity.NewID(), "203.0.113.1"))

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestCastVoteDuplicateTokenConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	voteHandler, _ := newVoteHandler(db)

	pollID, optionIDs := testutil.CreateTestPoll(t, db, "Colors?", "Red", "Blue")
	token := identity.NewID()

	w := httptest.NewRecorder()
	voteHandler.CastVote(w, castVoteRequest(pollID, optionIDs[0], token, "203.0.113.1"))
	testutil.AssertStatus(t, w, http.StatusOK)

	// Same token, different network
	w = httptest.NewRecorder()
	voteHandler.CastVote(w, castVoteRequest(pollID, optionIDs[1], token, "203.0.113.2"))
	testutil.AssertStatus(t, w, http.StatusConflict)

	var resp models.DuplicateVoteResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Mechanism != models.MechanismToken {
		t.Errorf("Expected token mechanism, got %q", resp.Mechanism)
	}
}

func TestCastVoteDuplicateFingerprintConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	voteHandler, _ := newVoteHandler(db)

	pollID, optionIDs := testutil.CreateTestPoll(t, db, "Colors?", "Red", "Blue")

	w := httptest.NewRecorder()
	voteHandler.CastVote(w, castVoteRequest(pollID, optionIDs[0], identity.NewID(), "203.0.113.1"))
	testutil.AssertStatus(t, w, http.StatusOK)

	// Fresh token, same network origin
	w = httptest.NewRecorder()
	voteHandler.CastVote(w, castVoteRequest(pollID, optionIDs[1], identity.NewID(), "203.0.113.1"))
	testutil.AssertStatus(t, w, http.StatusConflict)

	var resp models.DuplicateVoteResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Mechanism != models.MechanismFingerprint {
		t.Errorf("Expected fingerprint mechanism, got %q", resp.Mechanism)
	}
}

func TestCastVoteBroadcastsTallyToSubscribers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	voteHandler, hub := newVoteHandler(db)

	pollID, optionIDs := testutil.CreateTestPoll(t, db, "Colors?", "Red", "Blue")

	var buf bytes.Buffer
	hub.Subscribe(fanout.NewConn(&buf), pollID)

	w := httptest.NewRecorder()
	voteHandler.CastVote(w, castVoteRequest(pollID, optionIDs[0], identity.NewID(), "203.0.113.1"))
	testutil.AssertStatus(t, w, http.StatusOK)

	var frame fanout.Frame
	if err := json.NewDecoder(&buf).Decode(&frame); err != nil {
		t.Fatalf("Expected a broadcast frame, got decode error: %v", err)
	}
	if frame.Type != fanout.FrameUpdate || frame.PollID != pollID {
		t.Errorf("Unexpected frame %+v", frame)
	}
	if len(frame.Options) != 2 || frame.Options[0].Votes != 1 {
		t.Errorf("Expected broadcast tally [1 0], got %+v", frame.Options)
	}
}

func TestCastVoteRejectionDoesNotBroadcast(t *testing.T) {
	db := testutil.SetupTestDB(t)
	voteHandler, hub := newVoteHandler(db)

	pollID, optionIDs := testutil.CreateTestPoll(t, db, "Colors?", "Red", "Blue")
	token := identity.NewID()

	w := httptest.NewRecorder()
	voteHandler.CastVote(w, castVoteRequest(pollID, optionIDs[0], token, "203.0.113.1"))
	testutil.AssertStatus(t, w, http.StatusOK)

	var buf bytes.Buffer
	hub.Subscribe(fanout.NewConn(&buf), pollID)

	w = httptest.NewRecorder()
	voteHandler.CastVote(w, castVoteRequest(pollID, optionIDs[1], token, "203.0.113.2"))
	testutil.AssertStatus(t, w, http.StatusConflict)

	if buf.Len() != 0 {
		t.Errorf("Expected no broadcast for a rejected vote, got %q", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("connection reset")
}

// A dead subscriber connection must not turn an admitted vote into an
// error response.
func TestCastVoteAdmissionSurvivesBroadcastFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	voteHandler, hub := newVoteHandler(db)

	pollID, optionIDs := testutil.CreateTestPoll(t, db, "Colors?", "Red", "Blue")
	hub.Subscribe(fanout.NewConn(failingWriter{}), pollID)

	w := httptest.NewRecorder()
	voteHandler.CastVote(w, castVoteRequest(pollID, optionIDs[0], identity.NewID(), "203.0.113.1"))

	testutil.AssertStatus(t, w, http.StatusOK)

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM vote WHERE poll_id = $1", pollID).Scan(&count); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected the vote to be durable, got %d rows", count)
	}
}
