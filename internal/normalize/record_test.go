package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
)

const samplePGN = `[Event "CDC Tournament 3"]
[Site "Polokwane"]
[Date "2025.10.03"]
[Round "4.2"]
[White "Mokoena, Thabo"]
[Black "Naidoo, Priya"]
[Result "0-1"]
[WhiteElo "1850"]
[BlackElo "?"]
[ECO "B22"]

1. e4 c5 2. c3 Nf6 0-1`

func TestNewGameRecord(t *testing.T) {
	rec := NewGameRecord(domain.RawRow{"id": int64(12), "pgn": samplePGN, "move_count": int64(2)})

	assert.Equal(t, "12", rec.ID)
	assert.Equal(t, "Mokoena, Thabo vs Naidoo, Priya", rec.Title)
	assert.Equal(t, "Mokoena, Thabo", rec.White)
	assert.Equal(t, "Naidoo, Priya", rec.Black)
	assert.Equal(t, "CDC Tournament 3", rec.Event)
	assert.Equal(t, "0-1", rec.Result)
	assert.Equal(t, "2025-10-03", rec.Date)
	assert.Equal(t, "4.2", rec.Round)
	assert.Equal(t, "Polokwane", rec.Site)
	assert.Equal(t, "B22", rec.ECO)
	require.NotNil(t, rec.WhiteElo)
	assert.Equal(t, 1850, *rec.WhiteElo)
	assert.Nil(t, rec.BlackElo)
	require.NotNil(t, rec.MoveCount)
	assert.Equal(t, 2, *rec.MoveCount)
}

func TestNewGameRecord_Defaults(t *testing.T) {
	rec := NewGameRecord(domain.RawRow{"id": "g1", "pgn": nil})

	assert.Equal(t, "g1", rec.ID)
	assert.Equal(t, "Unknown", rec.White)
	assert.Equal(t, "Unknown", rec.Black)
	assert.Equal(t, "", rec.Event)
	assert.Equal(t, "*", rec.Result)
	assert.Equal(t, "Unknown vs Unknown", rec.Title)
	assert.Empty(t, rec.PGN)
}

func TestNewGameRecord_RowColumnsAndTitle(t *testing.T) {
	rec := NewGameRecord(domain.RawRow{
		"title": "Final round decider",
		"white": "Dlamini",
		"date":  float64(45933),
		"pgn":   "1. d4 d5 *",
	})

	assert.Equal(t, "Final round decider", rec.Title)
	assert.Equal(t, "Dlamini", rec.White)
	assert.Equal(t, "Unknown", rec.Black)
	assert.Equal(t, "2025-10-03", rec.Date)
}

func TestNewTournament(t *testing.T) {
	tour := NewTournament(domain.RawRow{
		"id":       "cdc_open_2025",
		"location": "Polokwane",
		"date":     "2025/10/03 to 2025/10/05",
		"rounds":   "7",
	})

	assert.Equal(t, "cdc_open_2025", tour.ID)
	assert.Equal(t, "Cdc Open 2025", tour.DisplayName)
	assert.Equal(t, "2025-10-03", tour.StartDate)
	assert.Equal(t, "2025-10-05", tour.EndDate)
	require.NotNil(t, tour.Rounds)
	assert.Equal(t, 7, *tour.Rounds)

	tour = NewTournament(domain.RawRow{"id": "t2", "name": "Limpopo Open", "start_date": float64(45933), "rounds": "-"})
	assert.Equal(t, "Limpopo Open", tour.DisplayName)
	assert.Equal(t, "2025-10-03", tour.StartDate)
	assert.Nil(t, tour.Rounds)
}

func TestNewPlayer(t *testing.T) {
	p := NewPlayer(domain.RawRow{
		"id":            "p1",
		"tournament_id": "t1",
		"rank":          int64(1),
		"name":          "Mokoena, Thabo",
		"rating":        "2100",
		"points":        "6½",
		"tie_breaks":    `{"BH": 30.5, "TB1": 2}`,
	}, nil)

	require.NotNil(t, p.Rank)
	assert.Equal(t, 1, *p.Rank)
	require.NotNil(t, p.Rating)
	assert.Equal(t, 2100, *p.Rating)
	require.NotNil(t, p.Points)
	assert.Equal(t, 6.5, *p.Points)
	assert.Equal(t, map[string]string{"BH": "Buchholz"}, p.TieBreakLabels)
	require.Len(t, p.TieBreakDetail, 2)
	assert.Equal(t, "BH", p.TieBreakDetail[0].Key)
	assert.Equal(t, "TB1", p.TieBreakDetail[1].Key)
}

func TestNewPlayer_BadTieBreaks(t *testing.T) {
	p := NewPlayer(domain.RawRow{"name": "X", "tie_breaks": "{not json"}, nil)
	assert.Nil(t, p.TieBreaks)
	assert.Nil(t, p.TieBreakLabels)
	assert.Nil(t, p.Rank)
}

func TestNewOpponent(t *testing.T) {
	d, ok := NewOpponent(domain.RawRow{"id": "p2", "rank": "3", "name": "Naidoo", "fed": "RSA", "points": 5.5})
	require.True(t, ok)
	assert.Equal(t, 3, d.Rank)
	assert.Equal(t, "RSA", d.Federation)
	require.NotNil(t, d.Points)
	assert.Equal(t, 5.5, *d.Points)

	_, ok = NewOpponent(domain.RawRow{"name": "No rank", "rank": nil})
	assert.False(t, ok)
}
