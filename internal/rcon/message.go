// Package rcon speaks the WebRcon protocol of a Rust dedicated server: JSON
// text frames over a WebSocket whose URL path carries the password.
package rcon

import (
	"encoding/json"
	"fmt"
)

// Channel is the Name tag carried by every command the tool sends.
const Channel = "WebRcon"

// CommandIdentifier marks commands originated by this tool.
const CommandIdentifier = -1

// Message is one WebRcon frame, used for both commands and server output.
type Message struct {
	Identifier int    `json:"Identifier"`
	Message    string `json:"Message"`
	Name       string `json:"Name"`
}

// Command builds the frame for a console command.
func Command(text string) Message {
	return Message{Identifier: CommandIdentifier, Message: text, Name: Channel}
}

// Encode serialises m as a single text frame.
func Encode(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("rcon: encode: %w", err)
	}
	return data, nil
}

// Decode parses a frame. Fields the server adds (Type, Stacktrace) are ignored.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v (%q)", ErrMalformedMessage, err, preview(data))
	}
	return m, nil
}

func preview(data []byte) string {
	const max = 80
	if len(data) <= max {
		return string(data)
	}
	return string(data[:max]) + "..."
}
