package client

import "errors"

var (
	// ErrUnavailable means the server could not be reached or did not answer
	// in time. The sync engine treats it as a transport failure.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized means the access token was missing, invalid or expired.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRejected means the server refused one request (bad row, foreign id).
	ErrRejected = errors.New("rejected by server")
)
