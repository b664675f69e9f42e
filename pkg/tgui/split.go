package tgui

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageRunes is Telegram's hard limit for a single text message.
const MaxMessageRunes = 4096

// SplitMessage splits text into chunks of at most limit runes.
// Chunks are cut at the last newline inside the window when that newline is
// not too close to the window start; otherwise the window is cut mid-line.
// limit <= 0 uses MaxMessageRunes. Empty text returns nil.
func SplitMessage(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 {
		limit = MaxMessageRunes
	}
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var out []string
	start := 0 // byte index
	for start < len(text) {
		runes := 0
		end := start
		lastNL := -1 // byte index after last newline rune in this window
		lastNLRunes := 0
		for end < len(text) && runes < limit {
			r, size := utf8.DecodeRuneInString(text[end:])
			if r == '\n' {
				lastNL = end + size
				lastNLRunes = runes + 1
			}
			runes++
			end += size
		}
		if end < len(text) && lastNL != -1 && lastNLRunes >= limit/3 {
			end = lastNL
		}
		chunk := strings.TrimRight(text[start:end], "\n")
		if chunk != "" {
			out = append(out, chunk)
		}
		start = end
		for start < len(text) && text[start] == '\n' {
			start++
		}
	}
	return out
}
