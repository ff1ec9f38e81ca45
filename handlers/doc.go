/*
Package handlers contains HTTP request handlers for the pollcast API.

# Handler Types

Each handler is a struct with its dependencies injected via constructor:

  - PollHandler: poll creation and point-in-time reads
  - VoteHandler: the vote admission pipeline
  - LiveHandler: the websocket push channel

# Voting Flow

A browser creates a poll, shares the link, and viewers vote once each:

	POST /polls            → CreatePoll
	GET  /polls/{id}       → GetPoll (definition + current tally)
	POST /polls/{id}/votes → CastVote (body: option_id, voter_token)

CastVote derives a salted fingerprint from the caller's network address
and validates the client-held voter token, then asks the ledger to admit
the vote. Exactly one vote per fingerprint and one per token is ever
admitted per poll; a duplicate is a 409 naming which mechanism matched.

# Live Updates

	GET /live → websocket

Clients send {"type":"join","poll_id":...} and receive
{"type":"update","poll_id":...,"options":[...]} frames after every
accepted vote on the polls they joined. Clients without a working
websocket poll GET /polls/{id} instead.
*/
package handlers
