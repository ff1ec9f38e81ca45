/*
Package ledger implements vote admission: the decision of whether a vote
attempt is recorded, with race-safe one-vote-per-identity enforcement.

# Admission Order

CastVote checks, in order: poll exists, option belongs to the poll,
no prior vote by network fingerprint, no prior vote by client token.
The fingerprint-before-token order is deliberate so that shared-egress
collisions and repeat-browser collisions surface as distinct duplicate
mechanisms.

# Race Safety

The existence checks give good error messages but are not load-bearing.
Two concurrent attempts with the same identity can both pass them; the
second insert then trips the table's UNIQUE constraint, and the ledger
remaps that violation to a DuplicateVoteError. Under any interleaving
at most one vote per (poll, fingerprint) and per (poll, token) is ever
admitted.

On success the updated tally is recomputed by full count rather than
incremented, so counts cannot drift.
*/
package ledger
