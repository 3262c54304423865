package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	domainerrors "github.com/kgdevtools/lca-auth-sub003/internal/errors"
	"github.com/kgdevtools/lca-auth-sub003/internal/store"
)

//nolint:gochecknoglobals // column whitelist
var gameColumns = []string{
	"tournament_id", "title", "pgn", "white", "black", "event", "result", "round", "date", "move_count",
}

const gameSelect = `SELECT id, source_table, tournament_id, title, pgn, white, black, event,
	result, round, date, move_count FROM games`

// GameTableCount is one source table and how many games it holds.
type GameTableCount struct {
	Table string
	Games int
}

// ReplaceGames swaps every game of a source table for rows in one
// transaction and returns how many were written.
func (s *Store) ReplaceGames(ctx context.Context, table string, rows []domain.RawRow) (int, error) {
	if strings.TrimSpace(table) == "" {
		return 0, domainerrors.Validation("game table name is required")
	}
	now := formatTime(time.Now())

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM games WHERE source_table = ?`, table); err != nil {
			return fmt.Errorf("clear games: %w", err)
		}
		for i, row := range rows {
			cols, args, err := columnValues(row, gameColumns)
			if err != nil {
				return domainerrors.Validationf("game row %d: %v", i, err)
			}
			cols = append(cols, "source_table", "created_at")
			args = append(args, table, now)

			query := fmt.Sprintf(`INSERT INTO games (%s) VALUES (%s)`,
				strings.Join(cols, ", "), placeholders(len(cols)))
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert game %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ListGameTables returns every source table with its game count, by name.
func (s *Store) ListGameTables(ctx context.Context) ([]GameTableCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_table, COUNT(*) FROM games GROUP BY source_table ORDER BY source_table`)
	if err != nil {
		return nil, fmt.Errorf("list game tables: %w", err)
	}
	defer rows.Close()

	var out []GameTableCount
	for rows.Next() {
		var c GameTableCount
		if err := rows.Scan(&c.Table, &c.Games); err != nil {
			return nil, fmt.Errorf("scan game table: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListGames returns a page of one source table's games in insertion order
// and the table's total.
func (s *Store) ListGames(ctx context.Context, table string, p store.PaginationParams) ([]domain.RawRow, int, error) {
	p.Validate()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games WHERE source_table = ?`, table).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count games: %w", err)
	}
	if total == 0 {
		return nil, 0, domainerrors.NotFoundf("game table %s not found", table)
	}

	rows, err := queryRawRows(ctx, s.db, gameSelect+` WHERE source_table = ? ORDER BY id LIMIT ? OFFSET ?`,
		table, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list games: %w", err)
	}
	return rows, total, nil
}

// GetGame returns one game row.
func (s *Store) GetGame(ctx context.Context, id int64) (domain.RawRow, error) {
	rows, err := queryRawRows(ctx, s.db, gameSelect+` WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	if len(rows) == 0 {
		return nil, domainerrors.NotFoundf("game %d not found", id)
	}
	return rows[0], nil
}
