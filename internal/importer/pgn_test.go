package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoGames = `[Event "CDC Tournament 3"]
[Site "Polokwane"]
[Date "2025.10.03"]
[Round "1"]
[White "Mokoena, Thabo"]
[Black "Nkosi, Elodie"]
[Result "1-0"]

1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0

[Event "CDC Tournament 3"]
[Round "2"]
[White "Dlamini, Lerato"]
[Black "Mokoena, Thabo"]
[Result "*"]

1. d4 d5 2. c4 *
`

func TestSplitPGN(t *testing.T) {
	games, err := SplitPGN(strings.NewReader(twoGames))
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.True(t, strings.HasPrefix(games[0], `[Event "CDC Tournament 3"]`))
	assert.True(t, strings.HasSuffix(games[0], "4. Qxf7# 1-0"))
	assert.Contains(t, games[1], `[White "Dlamini, Lerato"]`)

	games, err = SplitPGN(strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestAnalyzeGame(t *testing.T) {
	a := AnalyzeGame(`[Result "1-0"]

1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0`)
	assert.True(t, a.Valid)
	assert.Equal(t, 4, a.MoveCount)
	assert.Equal(t, "1-0", a.Outcome)

	a = AnalyzeGame("1. d4 d5 2. c4 *")
	assert.True(t, a.Valid)
	assert.Equal(t, 2, a.MoveCount)
	assert.Empty(t, a.Outcome)

	a = AnalyzeGame("1. e4 e5 2. Ke3 *")
	assert.Equal(t, GameAnalysis{}, a)
}

func TestGameRows(t *testing.T) {
	games, err := SplitPGN(strings.NewReader(twoGames))
	require.NoError(t, err)

	rows := GameRows(games, "cdc_3")
	require.Len(t, rows, 2)

	assert.Equal(t, "Mokoena, Thabo vs Nkosi, Elodie", rows[0]["title"])
	assert.Equal(t, "1-0", rows[0]["result"])
	assert.Equal(t, "2025.10.03", rows[0]["date"])
	assert.Equal(t, "1", rows[0]["round"])
	assert.Equal(t, 4, rows[0]["move_count"])
	assert.Equal(t, "cdc_3", rows[0]["tournament_id"])

	assert.Equal(t, "*", rows[1]["result"])
	assert.NotContains(t, rows[1], "date")
	assert.Equal(t, 2, rows[1]["move_count"])
}
