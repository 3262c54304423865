package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
)

// ErrNoRows is returned when an import file holds a header and nothing else.
var ErrNoRows = errors.New("file has no data rows")

// ParseTournamentCSV reads a tournament calendar. The header row names the
// columns; keys are lowercased with spaces turned into underscores. Blank
// cells are left out of the row. Rows without an id get one derived from
// their name, and rows with neither are skipped.
func ParseTournamentCSV(r io.Reader) ([]domain.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = headerKey(h)
	}

	var rows []domain.RawRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		row := make(domain.RawRow, len(record))
		for i, cell := range record {
			if i >= len(keys) || keys[i] == "" {
				continue
			}
			if v := strings.TrimSpace(cell); v != "" {
				row[keys[i]] = v
			}
		}
		if row.String("id") == "" {
			id := TournamentIDFor(row.String("name", "tournament_name", "title"))
			if id == "" {
				continue
			}
			row["id"] = id
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}

// headerKey turns "Start Date" or "start-date" into "start_date".
func headerKey(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.Join(strings.FieldsFunc(h, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '.'
	}), "_")
}
