package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pollcast/pollcast/identity"
	"github.com/pollcast/pollcast/testutil"
)

// Distinct voters arriving at once must all be admitted and the final
// tally must account for every one of them.
func TestConcurrentDistinctVotersAllAdmitted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	voteHandler, _ := newVoteHandler(db)

	pollID, optionIDs := testutil.CreateTestPoll(t, db, "Colors?", "Red", "Green", "Blue")

	numVoters := 10
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			ip := fmt.Sprintf("203.0.113.%d", idx+1)
			w := httptest.NewRecorder()
			voteHandler.CastVote(w, castVoteRequest(pollID, optionIDs[idx%3], identity.NewID(), ip))

			if w.Code == http.StatusOK {
				successCount.Add(1)
			} else {
				t.Errorf("Voter %d: expected 200, got %d (%s)", idx, w.Code, w.Body.String())
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d admitted votes, got %d", numVoters, successCount.Load())
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM vote WHERE poll_id = $1", pollID).Scan(&count); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if count != numVoters {
		t.Errorf("Expected %d votes in database, got %d", numVoters, count)
	}
}

// The same client token racing against itself must admit exactly one
// vote at the HTTP layer; the losers get 409, never 500.
func TestConcurrentSameTokenSingleAdmission(t *testing.T) {
	db := testutil.SetupTestDB(t)
	voteHandler, _ := newVoteHandler(db)

	pollID, optionIDs := testutil.CreateTestPoll(t, db, "Colors?", "Red", "Blue")
	token := identity.NewID()

	numAttempts := 8
	var okCount, conflictCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			// Distinct addresses so only the token collides
			ip := fmt.Sprintf("198.51.100.%d", idx+1)
			w := httptest.NewRecorder()
			voteHandler.CastVote(w, castVoteRequest(pollID, optionIDs[idx%2], token, ip))

			switch w.Code {
			case http.StatusOK:
				okCount.Add(1)
			case http.StatusConflict:
				conflictCount.Add(1)
			default:
				t.Errorf("Attempt %d: unexpected status %d (%s)", idx, w.Code, w.Body.String())
			}
		}(i)
	}

	wg.Wait()

	if okCount.Load() != 1 {
		t.Errorf("Expected exactly 1 admission, got %d", okCount.Load())
	}
	if conflictCount.Load() != int32(numAttempts-1) {
		t.Errorf("Expected %d conflicts, got %d", numAttempts-1, conflictCount.Load())
	}
}
