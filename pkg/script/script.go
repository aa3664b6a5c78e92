// Package script handles Myanmar script encodings: Zawgyi detection,
// Zawgyi-to-Unicode conversion and a code point heuristic for spotting
// Myanmar text.
package script

// Myanmar Unicode block bounds, inclusive.
const (
	MyanmarBlockStart rune = 0x1000
	MyanmarBlockEnd   rune = 0x109F
)

// IsMyanmar reports whether r lies in the Myanmar Unicode block.
func IsMyanmar(r rune) bool {
	return r >= MyanmarBlockStart && r <= MyanmarBlockEnd
}

// ContainsMyanmar reports whether any rune of text lies in the Myanmar block.
func ContainsMyanmar(text string) bool {
	for _, r := range text {
		if IsMyanmar(r) {
			return true
		}
	}
	return false
}
