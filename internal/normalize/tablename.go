package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const gamesTableSuffix = "_games"

// TableNameToDisplayName turns a storage table name such as
// "cdc_tournament_3_2025_games" into "Cdc Tournament 3 2025". Only the
// first letter of each word is touched.
func TableNameToDisplayName(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSuffix(raw, gamesTableSuffix)
	s = strings.ReplaceAll(s, "_", " ")

	words := make([]string, 0, strings.Count(s, " ")+1)
	for _, w := range strings.Split(s, " ") {
		if w == "" {
			continue
		}
		words = append(words, capitalize(w))
	}
	return strings.Join(words, " ")
}

func capitalize(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + w[size:]
}

// DisplayNameToTableName is the inverse used when naming imported game
// tables: "CDC Tournament 3 (2025)" becomes "cdc_tournament_3_2025_games".
func DisplayNameToTableName(name string) string {
	slug := Slug(name)
	if slug == "" {
		return ""
	}
	return slug + gamesTableSuffix
}

// Slug folds name and joins its letter and digit runs with underscores:
// "Limpopo Open (2025)" becomes "limpopo_open_2025".
func Slug(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range FoldName(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
