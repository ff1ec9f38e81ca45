/*
Package db handles database schema creation.

The schema is a single const SQL string executed at startup, written to
run unchanged on both PostgreSQL (production) and SQLite (tests and
single-node deploys).

# Tables

  - poll: question and creation time
  - option: poll options with an explicit display position
  - vote: one row per admitted vote, with two independent UNIQUE
    constraints on (poll_id, fingerprint) and (poll_id, voter_token)

The vote constraints are the authoritative one-vote-per-identity
enforcement; application-level duplicate checks exist only for better
error messages, not for correctness.
*/
package db
