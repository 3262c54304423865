package domain

// GameRecord is a game normalized from a raw row. The string fields of the
// core record are never empty placeholders for missing data; they carry the
// display defaults instead ("Unknown", "*").
type GameRecord struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	PGN       string `json:"pgn"`
	White     string `json:"white"`
	Black     string `json:"black"`
	Event     string `json:"event"`
	Result    string `json:"result"`
	Date      string `json:"date,omitempty"`
	Round     string `json:"round,omitempty"`
	Site      string `json:"site,omitempty"`
	ECO       string `json:"eco,omitempty"`
	WhiteElo  *int   `json:"white_elo,omitempty"`
	BlackElo  *int   `json:"black_elo,omitempty"`
	MoveCount *int   `json:"move_count,omitempty"`
}

// GameTable summarizes one imported game table.
type GameTable struct {
	Table       string `json:"table"`
	DisplayName string `json:"display_name"`
	Games       int    `json:"games"`
}
