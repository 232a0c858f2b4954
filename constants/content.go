package constants

import "time"

// Section identifiers in display order
const (
	SectionLanding  = "landing"
	SectionBirthday = "birthday"
	SectionLetter   = "letter"
	SectionFinale   = "finale"
)

// SectionIDs lists every section in display order, index == SectionIndex
var SectionIDs = []string{
	SectionLanding,
	SectionBirthday,
	SectionLetter,
	SectionFinale,
}

// TotalSections is the fixed number of sections known at startup
const TotalSections = 4

// Content Loading Constants
const (
	// ContentFetchTimeout bounds a single section fetch
	ContentFetchTimeout = 10 * time.Second

	// ContentFetchConcurrency caps parallel section fetches
	ContentFetchConcurrency = 4

	// ContentReloadDebounce coalesces rapid saves of the content file
	ContentReloadDebounce = 300 * time.Millisecond

	// MaxContentBytes caps remote content responses
	MaxContentBytes = 1 << 20
)
