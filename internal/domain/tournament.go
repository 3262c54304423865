package domain

// Tournament is a normalized tournament ready for display.
type Tournament struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DisplayName  string `json:"display_name"`
	Location     string `json:"location,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	Rounds       *int   `json:"rounds,omitempty"`
	Federation   string `json:"federation,omitempty"`
	TimeControl  string `json:"time_control,omitempty"`
	ChiefArbiter string `json:"chief_arbiter,omitempty"`
	Organizer    string `json:"organizer,omitempty"`
	Description  string `json:"description,omitempty"`
	Source       string `json:"source,omitempty"`
}

// Player is a normalized standings entry of a tournament.
type Player struct {
	ID             string            `json:"id"`
	TournamentID   string            `json:"tournament_id"`
	Rank           *int              `json:"rank,omitempty"`
	StartNo        *int              `json:"start_no,omitempty"`
	Name           string            `json:"name"`
	Title          string            `json:"title,omitempty"`
	Federation     string            `json:"federation,omitempty"`
	Rating         *int              `json:"rating,omitempty"`
	Points         *float64          `json:"points,omitempty"`
	TieBreaks      map[string]any    `json:"tie_breaks,omitempty"`
	TieBreakLabels map[string]string `json:"tie_break_labels,omitempty"`
	TieBreakDetail []TieBreak        `json:"tie_break_detail,omitempty"`
}

// TieBreak is one classified tie-break column of a player.
type TieBreak struct {
	Key        string   `json:"key"`
	Label      string   `json:"label,omitempty"`
	Value      *float64 `json:"value,omitempty"`
	Classified bool     `json:"classified"`
}

// OpponentDetails is what the standings view shows about the player at a
// given rank.
type OpponentDetails struct {
	PlayerID   string   `json:"player_id"`
	Rank       int      `json:"rank"`
	Name       string   `json:"name"`
	Title      string   `json:"title,omitempty"`
	Federation string   `json:"federation,omitempty"`
	Rating     *int     `json:"rating,omitempty"`
	Points     *float64 `json:"points,omitempty"`
}
