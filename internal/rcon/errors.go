package rcon

import "errors"

var (
	// ErrConnectionFailure means the WebSocket could not be opened. It is not retried.
	ErrConnectionFailure = errors.New("rcon: connection failed")

	// ErrMalformedMessage means an inbound frame was not a WebRcon JSON record.
	ErrMalformedMessage = errors.New("rcon: malformed message")

	// ErrConnectionLost means the server closed the connection or a read failed.
	ErrConnectionLost = errors.New("rcon: connection lost")
)
