package importer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/corentings/chess/v2"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	"github.com/kgdevtools/lca-auth-sub003/internal/normalize"
)

const maxPGNLine = 1 << 20

// SplitPGN splits a multi-game PGN file into one text per game. A tag line
// that follows movetext starts the next game.
func SplitPGN(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxPGNLine)

	var (
		games   []string
		current strings.Builder
		inMoves bool
	)
	flush := func() {
		if text := strings.TrimSpace(current.String()); text != "" {
			games = append(games, text)
		}
		current.Reset()
		inMoves = false
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "["):
			if inMoves {
				flush()
			}
		case trimmed != "":
			inMoves = true
		}
		current.WriteString(line)
		current.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read pgn: %w", err)
	}
	flush()
	return games, nil
}

// GameAnalysis is what replaying a game tells us.
type GameAnalysis struct {
	// MoveCount counts full moves; a game ending on White's move counts it.
	MoveCount int
	// Outcome is "1-0", "0-1" or "1/2-1/2" when the moves decide the game
	// or the Result tag is set, "" otherwise.
	Outcome string
	Valid   bool
}

// AnalyzeGame replays text. A game the replay cannot read comes back with
// Valid false and zero values.
func AnalyzeGame(text string) (a GameAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			a = GameAnalysis{}
		}
	}()

	opt, err := chess.PGN(strings.NewReader(text))
	if err != nil {
		return GameAnalysis{}
	}
	game := chess.NewGame(opt)

	plies := len(game.Moves())
	a = GameAnalysis{MoveCount: (plies + 1) / 2, Valid: true}
	if outcome := game.Outcome(); outcome != chess.NoOutcome {
		a.Outcome = string(outcome)
	}
	return a
}

// GameRows turns the games of a PGN file into rows for a game table.
func GameRows(games []string, tournamentID string) []domain.RawRow {
	rows := make([]domain.RawRow, 0, len(games))
	for _, text := range games {
		h := normalize.Headers(text)
		row := domain.RawRow{
			"pgn":    text,
			"white":  h.White(),
			"black":  h.Black(),
			"result": h.Result(),
			"title":  h.White() + " vs " + h.Black(),
		}
		if v := h.Event(); v != "" {
			row["event"] = v
		}
		if v := h.Tag("Round"); v != "" {
			row["round"] = v
		}
		if v := h.Tag("Date"); v != "" {
			row["date"] = v
		}
		if tournamentID != "" {
			row["tournament_id"] = tournamentID
		}

		a := AnalyzeGame(text)
		if a.Valid {
			row["move_count"] = a.MoveCount
			if row["result"] == normalize.UnknownResult && a.Outcome != "" {
				row["result"] = a.Outcome
			}
		}
		rows = append(rows, row)
	}
	return rows
}
