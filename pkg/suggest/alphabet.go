package suggest

import "strings"

const (
	// AlphabetSize is the number of child slots per node: 26 letters plus the terminator.
	AlphabetSize = 27
	// Terminator is the edge label that closes a word.
	Terminator = '$'

	terminatorSlot = AlphabetSize - 1
)

// Slot maps c to its child slot. Letters are case-folded to 0..25 and the
// terminator maps to 26. Anything else has no slot.
func Slot(c rune) (int, bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return int(c - 'a'), true
	case c >= 'A' && c <= 'Z':
		return int(c - 'A'), true
	case c == Terminator:
		return terminatorSlot, true
	}
	return -1, false
}

// letterSlot is Slot restricted to letters; insertion must never follow the terminator edge mid-word.
func letterSlot(c rune) (int, bool) {
	idx, ok := Slot(c)
	if !ok || idx == terminatorSlot {
		return -1, false
	}
	return idx, true
}

// Filter returns the lowercase ASCII letters of word in order.
// This is the form that defines the tree path and the stored word.
func Filter(word string) string {
	var b strings.Builder
	b.Grow(len(word))
	for _, c := range word {
		if idx, ok := letterSlot(c); ok {
			b.WriteByte(byte('a' + idx))
		}
	}
	return b.String()
}
