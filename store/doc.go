/*
Package store is the poll aggregate store: poll and option definitions
plus derived vote counts, backed by database/sql.

The tally query is a full recount joined against the option table so
options with zero votes still appear, in display order. There is no
caching layer; the vote ledger depends on a tally read immediately after
an insert reflecting that insert.
*/
package store
