package events

import (
	"time"
)

// EventType represents the type of app event carried by the EventQueue
type EventType int

const (
	// EventNone is the zero value and never dispatched
	EventNone EventType = iota

	// EventContentLoaded signals one section's content became available
	// Trigger: content.Service fetch goroutine
	// Consumer: app.Experience | Payload: *ContentPayload
	EventContentLoaded

	// EventContentFailed signals one section's fetch rejected
	// Trigger: content.Service fetch goroutine
	// Consumer: app.Experience | Payload: *ContentPayload
	EventContentFailed

	// EventContentReloaded signals a full reload started after the content file changed
	// Trigger: content.Service watcher | Payload: *ContentPayload (SectionID empty)
	EventContentReloaded

	// EventSectionChange mirrors a committed transition onto the queue
	// Trigger: app.Experience broadcast listener
	// Consumer: logging, network bridge | Payload: *SectionChange
	EventSectionChange

	// EventAudioFailed signals the audio backend could not start or play
	// Trigger: audio.CuePlayer | Payload: *AudioFailedPayload
	EventAudioFailed
)

// GameEvent represents a single app event with metadata
type GameEvent struct {
	Type      EventType
	Payload   any
	Frame     int64
	Timestamp time.Time
}
