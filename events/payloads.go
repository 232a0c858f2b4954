package events

// ContentPayload identifies a section whose content state changed
type ContentPayload struct {
	SectionID  string
	Generation int64
	Err        string // Empty unless EventContentFailed
}

// AudioFailedPayload carries the audio backend error text
type AudioFailedPayload struct {
	Reason string
}
