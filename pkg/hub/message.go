// Package hub provides a websocket broadcast hub using a channel-based
// fan-out, plus a registry of named hubs. Every frame is JSON text.
package hub

// Message represents a message to be broadcast to clients
type Message struct {
	Data []byte
}

// NewJSONMessage creates a JSON message from pre-encoded bytes
func NewJSONMessage(data []byte) Message {
	return Message{Data: data}
}
