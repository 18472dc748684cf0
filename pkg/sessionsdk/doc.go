// Package sessionsdk provides a Go client and the shared wire types for the
// sessiond HTTP API. The server handlers and the end-to-end tests both build
// on these types, so the two cannot drift apart silently.
package sessionsdk
