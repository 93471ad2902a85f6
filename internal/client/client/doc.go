// Package client contains the client-side plumbing of lifesync: the gRPC
// connection to the sync service and the bootstrap of the local SQLite
// mirror.
//
// # Remote store
//
// GRPCClient implements the remote half of a sync pass (Select, Upsert,
// Delete) plus Ping for the connectivity watcher. Every call carries the
// access token in the "access_token" metadata entry. gRPC status codes are
// mapped to sentinel errors:
//
//   - Unavailable, DeadlineExceeded, Canceled -> ErrUnavailable
//   - Unauthenticated                         -> ErrUnauthorized
//   - anything else                           -> ErrRejected
//
// # Local database
//
// InitDatabase opens the SQLite file, applies the embedded goose migrations
// and NewRepositories binds one repository per synchronized table.
package client
