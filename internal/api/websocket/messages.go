package websocket

import (
	"time"

	"github.com/easygrow/plantcore/internal/storage"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Reading-related messages
	MessageTypeReading MessageType = "reading"

	// System messages
	MessageTypeSystemStatus MessageType = "system_status"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewMessage creates a new message with current timestamp
func NewMessage(msgType MessageType, data interface{}) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// NewReadingMessage wraps a freshly ingested reading for broadcast.
func NewReadingMessage(reading *storage.ReadingWithSensor) Message {
	return NewMessage(MessageTypeReading, reading)
}
