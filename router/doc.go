// Package router defines the route table using Go 1.22+ method routing
// on http.ServeMux and wires the store, ledger, fanout hub, and
// handlers together.
package router
