package events

import (
	"strings"
)

var (
	nameToType = make(map[string]EventType)
	typeToName = make(map[EventType]string)
)

// RegisterType maps a string name to an EventType
func RegisterType(name string, et EventType) {
	nameToType[name] = et
	typeToName[et] = name
}

// GetEventType returns the EventType for a given name, case-insensitive
func GetEventType(name string) (EventType, bool) {
	et, ok := nameToType[name]
	if ok {
		return et, true
	}
	for n, t := range nameToType {
		if strings.EqualFold(n, name) {
			return t, true
		}
	}
	return EventNone, false
}

// GetEventName returns the string name for an EventType
func GetEventName(et EventType) string {
	if name, ok := typeToName[et]; ok {
		return name
	}
	return "unknown"
}

// String implements fmt.Stringer for logging
func (et EventType) String() string {
	return GetEventName(et)
}

func init() {
	RegisterType("none", EventNone)
	RegisterType("content_loaded", EventContentLoaded)
	RegisterType("content_failed", EventContentFailed)
	RegisterType("content_reloaded", EventContentReloaded)
	RegisterType("section_change", EventSectionChange)
	RegisterType("audio_failed", EventAudioFailed)
}
