/*
Package fanout delivers live tally updates to poll viewers.

A Hub maps polls to subscribed connections and back. Clients join and
leave polls with explicit frames over a websocket; every accepted vote
triggers one update frame to each subscriber of that poll. Delivery is
best-effort with no acks or retries - a client that misses an update
catches up from the next one, from the snapshot sent on rejoin, or from
the plain poll read it falls back to while its push channel is down.

Subscriptions live only as long as the connection. Reconnecting clients
re-join the polls they care about.
*/
package fanout
