package router

import (
	"database/sql"
	"net/http"

	"github.com/pollcast/pollcast/cliparse"
	"github.com/pollcast/pollcast/fanout"
	"github.com/pollcast/pollcast/handlers"
	"github.com/pollcast/pollcast/ledger"
	"github.com/pollcast/pollcast/middleware"
	"github.com/pollcast/pollcast/store"
)

func NewRouter(db *sql.DB, hub *fanout.Hub, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Wire components: store → ledger → handlers
	st := store.New(db)
	lg := ledger.New(db, st)

	pollHandler := handlers.NewPollHandler(st)
	voteHandler := handlers.NewVoteHandler(lg, hub, cfg)
	liveHandler := handlers.NewLiveHandler(st, hub)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Poll management
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))

	// Voting
	mux.HandleFunc("POST /polls/{id}/votes", middleware.WithLogging(voteHandler.CastVote))

	// Live tally updates
	mux.Handle("GET /live", liveHandler.Socket())

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pollcast API v1"))
	})

	return mux
}
