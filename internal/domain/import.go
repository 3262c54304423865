package domain

import "time"

// ImportKind identifies what a source file contained.
type ImportKind string

const (
	ImportKindStandings   ImportKind = "standings"
	ImportKindTournaments ImportKind = "tournaments"
	ImportKindGames       ImportKind = "games"
)

// ImportRecord is the ledger entry written once a source file has been
// imported, keyed by the file's content fingerprint.
type ImportRecord struct {
	Fingerprint  string     `json:"fingerprint"`
	RunID        string     `json:"run_id"`
	Path         string     `json:"path"`
	Kind         ImportKind `json:"kind"`
	TournamentID string     `json:"tournament_id,omitempty"`
	Table        string     `json:"table,omitempty"`
	Rows         int        `json:"rows"`
	ImportedAt   time.Time  `json:"imported_at"`
}
