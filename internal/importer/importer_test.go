package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
)

func TestKindForFile(t *testing.T) {
	tests := []struct {
		path string
		kind domain.ImportKind
		ok   bool
	}{
		{"drop/standings.HTML", domain.ImportKindStandings, true},
		{"drop/standings.htm", domain.ImportKindStandings, true},
		{"calendar.csv", domain.ImportKindTournaments, true},
		{"cdc tournament 3 2025.pgn", domain.ImportKindGames, true},
		{"notes.txt", "", false},
		{"Makefile", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			kind, ok := KindForFile(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestTableNameForFile(t *testing.T) {
	assert.Equal(t, "cdc_tournament_3_2025_games", TableNameForFile("/srv/drop/cdc tournament 3 2025.pgn"))
	assert.Equal(t, "", TableNameForFile("/srv/drop/.pgn"))
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(strings.NewReader("same"))
	require.NoError(t, err)
	b, err := Fingerprint(strings.NewReader("same"))
	require.NoError(t, err)
	c, err := Fingerprint(strings.NewReader("different"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
