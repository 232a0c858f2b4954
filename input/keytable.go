package input

import "github.com/gdamore/tcell/v2"

// KeyTable maps terminal keys to intents
type KeyTable struct {
	// Special keys (Ctrl+*, arrows, paging)
	SpecialKeys map[tcell.Key]IntentType

	// Printable rune bindings
	Runes map[rune]IntentType
}

// DefaultKeyTable returns the default key bindings
func DefaultKeyTable() *KeyTable {
	return &KeyTable{
		SpecialKeys: map[tcell.Key]IntentType{
			tcell.KeyCtrlC:  IntentQuit,
			tcell.KeyEscape: IntentQuit,
			tcell.KeyDown:   IntentNextSection,
			tcell.KeyPgDn:   IntentNextSection,
			tcell.KeyUp:     IntentPrevSection,
			tcell.KeyPgUp:   IntentPrevSection,
			tcell.KeyEnter:  IntentActivate,
		},
		Runes: map[rune]IntentType{
			'q': IntentQuit,
			'm': IntentToggleMute,
			'j': IntentNextSection,
			'k': IntentPrevSection,
		},
	}
}

// Lookup resolves a key event to an intent, IntentNone when unbound
func (kt *KeyTable) Lookup(key tcell.Key, r rune) IntentType {
	if key == tcell.KeyRune {
		return kt.Runes[r]
	}
	return kt.SpecialKeys[key]
}
