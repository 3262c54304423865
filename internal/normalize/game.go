package normalize

import "github.com/kgdevtools/lca-auth-sub003/internal/domain"

// NewGameRecord builds a display-ready game from a raw row. Header tags
// embedded in the PGN text take precedence over loose row columns.
func NewGameRecord(row domain.RawRow) domain.GameRecord {
	pgn := row.String("pgn", "pgn_text", "game_pgn")
	h := Headers(pgn)

	white := firstNonEmpty(h.Tag("White"), row.String("white"), UnknownPlayer)
	black := firstNonEmpty(h.Tag("Black"), row.String("black"), UnknownPlayer)

	rec := domain.GameRecord{
		ID:     row.String("id"),
		Title:  firstNonEmpty(row.String("title"), white+" vs "+black),
		PGN:    pgn,
		White:  white,
		Black:  black,
		Event:  firstNonEmpty(h.Tag("Event"), row.String("event")),
		Result: firstNonEmpty(h.Tag("Result"), row.String("result"), UnknownResult),
		Round:  firstNonEmpty(h.Tag("Round"), row.String("round")),
		Site:   h.Tag("Site"),
		ECO:    h.Tag("ECO"),
	}

	if d, ok := ParsePGNDate(h.Tag("Date")); ok {
		rec.Date = d
	} else if v, ok := row.Get("date"); ok {
		rec.Date, _ = ParseDateValue(v)
	}

	rec.WhiteElo = IntPtr(h.Tag("WhiteElo"))
	rec.BlackElo = IntPtr(h.Tag("BlackElo"))
	if v, ok := row.Get("move_count"); ok {
		rec.MoveCount = IntPtr(v)
	}
	return rec
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
