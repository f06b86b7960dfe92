package docbridge

import "unicode/utf8"

// InsertTag inserts "[tag] " at cursor (a byte offset into text), starting a
// new line first unless the cursor already sits at a line start. It returns
// the new text and the cursor position just after the inserted token.
// Out-of-range cursors are clamped, and a cursor inside a multi-byte rune
// is moved back to the rune start.
func InsertTag(text string, cursor int, tag string) (string, int) {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(text) {
		cursor = len(text)
	}
	for cursor > 0 && cursor < len(text) && !utf8.RuneStart(text[cursor]) {
		cursor--
	}

	token := "[" + tag + "] "
	if cursor > 0 && text[cursor-1] != '\n' {
		token = "\n" + token
	}
	return text[:cursor] + token + text[cursor:], cursor + len(token)
}
