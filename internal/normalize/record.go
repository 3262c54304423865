package normalize

import (
	"encoding/json"
	"strings"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
)

// NewTournament builds a display-ready tournament from a raw row.
func NewTournament(row domain.RawRow) domain.Tournament {
	t := domain.Tournament{
		ID:           row.String("id"),
		Name:         row.String("name", "tournament_name", "title"),
		Location:     row.String("location", "venue", "place"),
		Federation:   row.String("federation", "fed"),
		TimeControl:  row.String("time_control", "rate_of_play"),
		ChiefArbiter: row.String("chief_arbiter", "arbiter"),
		Organizer:    row.String("organizer", "organiser"),
		Description:  row.String("description"),
		Source:       row.String("source"),
	}

	if v, ok := row.Get("start_date"); ok {
		t.StartDate, _ = ParseDateValue(v)
	}
	if v, ok := row.Get("end_date"); ok {
		t.EndDate, _ = ParseDateValue(v)
	}
	if t.StartDate == "" {
		if v, ok := row.Get("date", "dates"); ok {
			if s, isString := v.(string); isString {
				t.StartDate, t.EndDate = ParseDateRange(s)
			} else {
				t.StartDate, _ = ParseDateValue(v)
			}
		}
	}
	if v, ok := row.Get("rounds", "number_of_rounds"); ok {
		t.Rounds = IntPtr(v)
	}

	t.DisplayName = t.Name
	if t.DisplayName == "" {
		t.DisplayName = TableNameToDisplayName(t.ID)
	}
	return t
}

// NewPlayer builds a display-ready standings entry from a raw row.
// Tie-break columns are labelled with c, or the default rules when c is nil.
func NewPlayer(row domain.RawRow, c *TieBreakClassifier) domain.Player {
	if c == nil {
		c = DefaultTieBreakClassifier()
	}
	p := domain.Player{
		ID:           row.String("id"),
		TournamentID: row.String("tournament_id"),
		Name:         firstNonEmpty(row.String("name", "player_name"), UnknownPlayer),
		Title:        row.String("title"),
		Federation:   row.String("federation", "fed"),
	}
	if v, ok := row.Get("rank", "rk"); ok {
		p.Rank = IntPtr(v)
	}
	if v, ok := row.Get("start_no", "sno", "starting_rank"); ok {
		p.StartNo = IntPtr(v)
	}
	if v, ok := row.Get("rating", "elo", "rtg"); ok {
		p.Rating = IntPtr(v)
	}
	if v, ok := row.Get("points", "pts", "score"); ok {
		p.Points = FloatPtr(v)
	}
	if v, ok := row.Get("tie_breaks", "tiebreaks"); ok {
		p.TieBreaks = TieBreakMap(v)
	}
	if len(p.TieBreaks) > 0 {
		p.TieBreakLabels = c.Detect(p.TieBreaks)
		p.TieBreakDetail = c.Classify(p.TieBreaks)
	}
	return p
}

// NewOpponent reduces a player row to the details shown for an opponent.
// ok is false when the row carries no rank.
func NewOpponent(row domain.RawRow) (domain.OpponentDetails, bool) {
	v, ok := row.Get("rank", "rk")
	if !ok {
		return domain.OpponentDetails{}, false
	}
	rank, ok := NumberFromValue(v)
	if !ok {
		return domain.OpponentDetails{}, false
	}
	d := domain.OpponentDetails{
		PlayerID:   row.String("id"),
		Rank:       rank,
		Name:       firstNonEmpty(row.String("name", "player_name"), UnknownPlayer),
		Title:      row.String("title"),
		Federation: row.String("federation", "fed"),
	}
	if v, ok := row.Get("rating", "elo", "rtg"); ok {
		d.Rating = IntPtr(v)
	}
	if v, ok := row.Get("points", "pts", "score"); ok {
		d.Points = FloatPtr(v)
	}
	return d, true
}

// TieBreakMap accepts a tie-break value as stored: a decoded map or its
// JSON text. Anything else yields nil.
func TieBreakMap(v any) map[string]any {
	switch x := v.(type) {
	case map[string]any:
		return x
	case string:
		return decodeTieBreaks([]byte(strings.TrimSpace(x)))
	case []byte:
		return decodeTieBreaks(x)
	default:
		return nil
	}
}

func decodeTieBreaks(b []byte) map[string]any {
	if len(b) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}
