// Package importer turns the files dropped by the results team into raw
// rows for the store: standings pages exported as HTML, tournament
// calendars as CSV, and games as PGN.
package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"path/filepath"
	"strings"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	"github.com/kgdevtools/lca-auth-sub003/internal/normalize"
)

// KindForFile maps a file extension to the kind of import it holds.
// ok is false for files the importer does not handle.
func KindForFile(path string) (domain.ImportKind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return domain.ImportKindStandings, true
	case ".csv":
		return domain.ImportKindTournaments, true
	case ".pgn":
		return domain.ImportKindGames, true
	default:
		return "", false
	}
}

// TableNameForFile names the game table a PGN file is imported into:
// "cdc tournament 3 2025.pgn" becomes "cdc_tournament_3_2025_games".
func TableNameForFile(path string) string {
	base := filepath.Base(path)
	return normalize.DisplayNameToTableName(strings.TrimSuffix(base, filepath.Ext(base)))
}

// TournamentIDFor derives a stable tournament id from a name.
func TournamentIDFor(name string) string {
	return normalize.Slug(name)
}

// Fingerprint hashes r so a file dropped twice is imported once.
func Fingerprint(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
