// Package cli provides the interactive lifesync command-line client.
//
// It wires configuration, the local SQLite mirror, the gRPC remote store, the
// sync engine and an interactive REPL that works the same online and
// offline. Every command writes locally first; synchronization happens in
// the background:
//   - a debounced pass after each mutation
//   - a pass on startup when the last one is stale
//   - a pass whenever the connectivity watcher sees the server come back
//   - an explicit "sync" command
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
