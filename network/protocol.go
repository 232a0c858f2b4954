package network

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lixenwraith/heartscroll/events"
)

// Message types on the wire
const (
	// MsgHello is sent once on connect with the current committed section in To
	MsgHello = "hello"
	// MsgSectionChange mirrors one committed transition
	MsgSectionChange = "section_change"
)

// Message is the JSON text frame sent to mirror clients
type Message struct {
	Type     string    `json:"type"`
	From     int       `json:"from"`
	To       int       `json:"to"`
	Progress float64   `json:"progress"`
	At       time.Time `json:"at"`
}

// NewSectionChangeMessage wraps a broadcast notification
func NewSectionChangeMessage(ev events.SectionChange, at time.Time) *Message {
	return &Message{Type: MsgSectionChange, From: ev.From, To: ev.To, Progress: ev.Progress, At: at}
}

// NewHelloMessage announces the section a newly connected client joins at
func NewHelloMessage(section int, at time.Time) *Message {
	return &Message{Type: MsgHello, From: section, To: section, Progress: 1, At: at}
}

// Encode renders the message as a JSON payload
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses a JSON payload
func Decode(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	if m.Type == "" {
		return nil, fmt.Errorf("decode message: missing type")
	}
	return &m, nil
}
