package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pollcast/pollcast/middleware"
	"github.com/pollcast/pollcast/models"
	"github.com/pollcast/pollcast/store"
)

// Poll creation limits
const (
	maxQuestionLen = 500
	maxOptionLen   = 200
	minOptions     = 2
	maxOptions     = 10
)

type PollHandler struct {
	store *store.Store
}

func NewPollHandler(st *store.Store) *PollHandler {
	return &PollHandler{store: st}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question is required")
		return
	}
	if len(question) > maxQuestionLen {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question must be under 500 characters")
		return
	}

	if len(req.Options) < minOptions || len(req.Options) > maxOptions {
		middleware.ErrorResponse(w, http.StatusBadRequest, "polls need between 2 and 10 options")
		return
	}

	options := make([]string, 0, len(req.Options))
	seen := make(map[string]bool, len(req.Options))
	for _, raw := range req.Options {
		text := strings.TrimSpace(raw)
		if text == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "option text is required")
			return
		}
		if len(text) > maxOptionLen {
			middleware.ErrorResponse(w, http.StatusBadRequest, "option must be under 200 characters")
			return
		}
		lower := strings.ToLower(text)
		if seen[lower] {
			middleware.ErrorResponse(w, http.StatusBadRequest, "duplicate options are not allowed")
			return
		}
		seen[lower] = true
		options = append(options, text)
	}

	poll, opts, err := h.store.CreatePoll(r.Context(), question, options)
	if err != nil {
		slog.Error("failed to create poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	slog.Info("poll created", "poll_id", poll.ID, "options", len(opts))

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		ID:        poll.ID,
		Question:  poll.Question,
		Options:   opts,
		ShareLink: "/poll/" + poll.ID,
	})
}

// GetPoll handles GET /polls/{id}
// Point-in-time read: poll definition plus the current tally. Serves
// both the initial page render and the polling fallback when a client
// has no live push channel.
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if _, err := uuid.Parse(pollID); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid poll ID format")
		return
	}

	poll, err := h.store.GetPoll(r.Context(), pollID)
	if errors.Is(err, store.ErrPollNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	tally, err := h.store.GetTally(r.Context(), pollID)
	if err != nil {
		slog.Error("failed to query tally", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollResponse{
		ID:        poll.ID,
		Question:  poll.Question,
		CreatedAt: poll.CreatedAt,
		Options:   tally.Options,
	})
}
