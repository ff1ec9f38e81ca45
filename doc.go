/*
Package main provides the entry point for the pollcast API server.

Pollcast serves single-question multiple-choice polls with live vote
tallies: anyone with the link votes once, and every viewer of the poll
sees counts update in real time over a websocket, with plain polling as
the fallback.

# Starting the Server

The server requires environment variables or CLI flags for
configuration:

	DATABASE_URL=postgres://... IP_HASH_SALT=... go run main.go

Or with flags:

	go run main.go -p 3000 -t sqlite -d pollcast.db -ip-salt dev-salt

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string or SQLite DSN
  - IP_HASH_SALT (-ip-salt): secret for the voter fingerprint digest

Optional settings:

  - PORT (-p): server port (default: 3000)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (polls, votes, live updates)
  - router: route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: request/response types
  - identity: voter fingerprint and token validation
  - ledger: vote admission with race-safe uniqueness
  - store: poll/option reads and tally recounts
  - fanout: per-poll broadcast groups over websockets
  - db: schema creation
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
