package normalize

import (
	"regexp"
	"strings"
)

// Defaults applied by GameHeaders for tags a game does not carry.
const (
	UnknownPlayer = "Unknown"
	UnknownResult = "*"
)

//nolint:gochecknoglobals // compiled once
var pgnTagRe = regexp.MustCompile(`(?m)^[ \t]*\[([^\s\]"]+)[ \t]+"([^"]*)"\]`)

// ParsePGNHeaders collects the [Tag "Value"] pairs of a PGN text. A tag
// that appears twice keeps its last value. Anything that is not a
// well-formed tag line is ignored.
//
// Tags are read one per line, as PGN export format writes them: only the
// first pair of a line such as `[White "A"] [Black "B"]` is taken. This
// keeps bracketed comments in the movetext from being read as tags.
func ParsePGNHeaders(text string) map[string]string {
	headers := make(map[string]string)
	for _, m := range pgnTagRe.FindAllStringSubmatch(text, -1) {
		headers[m[1]] = m[2]
	}
	return headers
}

// GameHeaders is a parsed header map with display defaults.
type GameHeaders map[string]string

// Headers parses text into GameHeaders.
func Headers(text string) GameHeaders {
	return GameHeaders(ParsePGNHeaders(text))
}

func (h GameHeaders) get(tag, fallback string) string {
	if v := strings.TrimSpace(h[tag]); v != "" {
		return v
	}
	return fallback
}

// White returns the White tag or "Unknown".
func (h GameHeaders) White() string { return h.get("White", UnknownPlayer) }

// Black returns the Black tag or "Unknown".
func (h GameHeaders) Black() string { return h.get("Black", UnknownPlayer) }

// Event returns the Event tag or "".
func (h GameHeaders) Event() string { return h.get("Event", "") }

// Result returns the Result tag or "*".
func (h GameHeaders) Result() string { return h.get("Result", UnknownResult) }

// Tag returns any tag, "" when absent.
func (h GameHeaders) Tag(name string) string { return h.get(name, "") }

// StripHeaders returns the movetext of a single-game PGN, without its tag
// section.
func StripHeaders(text string) string {
	return strings.TrimSpace(pgnTagRe.ReplaceAllString(text, ""))
}
