// Package middleware provides HTTP cross-cutting helpers: request
// logging, CORS, JSON request/response encoding, and client IP
// extraction behind proxies.
package middleware
