package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/pollcast/pollcast/cliparse"
	"github.com/pollcast/pollcast/fanout"
	"github.com/pollcast/pollcast/identity"
	"github.com/pollcast/pollcast/ledger"
	"github.com/pollcast/pollcast/middleware"
	"github.com/pollcast/pollcast/models"
	"github.com/pollcast/pollcast/store"
)

// VoteHandler is the vote admission pipeline: validate the request,
// derive the identity signals, attempt the ledger write, and on success
// broadcast the new tally. Fanout problems never affect the admission
// response - the vote is durable either way.
type VoteHandler struct {
	ledger *ledger.Ledger
	hub    *fanout.Hub
	cfg    cliparse.Config
}

func NewVoteHandler(l *ledger.Ledger, hub *fanout.Hub, cfg cliparse.Config) *VoteHandler {
	return &VoteHandler{ledger: l, hub: hub, cfg: cfg}
}

// CastVote handles POST /polls/{id}/votes
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if _, err := uuid.Parse(pollID); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid poll ID format")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if _, err := uuid.Parse(req.OptionID); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid option ID format")
		return
	}

	// Identity signals: reject a malformed token before touching the
	// ledger, then derive the network fingerprint
	if err := identity.ValidateVoterToken(req.VoterToken); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid voter token")
		return
	}
	fingerprint := identity.Fingerprint(middleware.GetClientIP(r), h.cfg.IPHashSalt)

	tally, err := h.ledger.CastVote(r.Context(), pollID, req.OptionID, fingerprint, req.VoterToken)
	if err != nil {
		var dup *ledger.DuplicateVoteError
		switch {
		case errors.Is(err, store.ErrPollNotFound):
			middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		case errors.Is(err, ledger.ErrInvalidOption):
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid option for this poll")
		case errors.As(err, &dup):
			slog.Info("duplicate vote rejected", "poll_id", pollID, "mechanism", dup.Mechanism)
			middleware.JSONResponse(w, http.StatusConflict, models.DuplicateVoteResponse{
				Error:     "You have already voted on this poll",
				Mechanism: dup.Mechanism,
			})
		default:
			slog.Error("failed to record vote", "error", err, "poll_id", pollID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote. Please try again.")
		}
		return
	}

	slog.Info("vote recorded", "poll_id", pollID, "option_id", req.OptionID)

	// Fire-and-forget: subscribers that miss this update catch up via
	// their next update or the polling fallback
	h.hub.Broadcast(pollID, tally)

	middleware.JSONResponse(w, http.StatusOK, models.CastVoteResponse{
		Success: true,
		Options: tally.Options,
	})
}
