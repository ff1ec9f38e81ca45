// Package models defines the request, response, and domain types shared
// across handlers, the vote ledger, and the realtime fanout.
//
// Fingerprint and voter token fields are tagged out of JSON output;
// they exist only for deduplication and never leave the server.
package models
