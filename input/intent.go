package input

// IntentType discriminates semantic key actions
type IntentType uint8

const (
	IntentNone IntentType = iota

	// System-level intents, handled by the app loop
	IntentQuit       // q, Esc, Ctrl+C
	IntentToggleMute // m

	// Navigation intents, routed through the transition gate
	IntentNextSection // Down arrow, PgDn, j
	IntentPrevSection // Up arrow, PgUp, k

	// Control activation (replay on the finale)
	IntentActivate // Enter
)

var intentNames = [...]string{"none", "quit", "toggle_mute", "next_section", "prev_section", "activate"}

// String implements fmt.Stringer
func (i IntentType) String() string {
	if int(i) < len(intentNames) {
		return intentNames[i]
	}
	return "unknown"
}
