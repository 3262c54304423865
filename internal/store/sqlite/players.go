package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	domainerrors "github.com/kgdevtools/lca-auth-sub003/internal/errors"
	"github.com/kgdevtools/lca-auth-sub003/internal/id"
)

//nolint:gochecknoglobals // column whitelist
var playerColumns = []string{
	"id", "tournament_id", "rank", "start_no", "name", "title", "federation",
	"rating", "points", "tie_breaks",
}

const playerSelect = `SELECT id, tournament_id, rank, start_no, name, title, federation,
	rating, points, tie_breaks FROM players`

// rankedOrder sorts numeric ranks first, then anything else by name.
const rankedOrder = ` ORDER BY (rank IS NULL OR rank = ''), CAST(rank AS INTEGER), name`

// ReplacePlayers swaps the standings of a tournament for rows in one
// transaction. Rows without an id get one.
func (s *Store) ReplacePlayers(ctx context.Context, tournamentID string, rows []domain.RawRow) error {
	now := formatTime(time.Now())

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM players WHERE tournament_id = ?`, tournamentID); err != nil {
			return fmt.Errorf("clear players: %w", err)
		}
		for i, row := range rows {
			r := make(domain.RawRow, len(row)+2)
			for k, v := range row {
				r[k] = v
			}
			r["tournament_id"] = tournamentID
			if domain.Stringify(r["id"]) == "" {
				r["id"] = id.MustGenerate("ply")
			}

			cols, args, err := columnValues(r, playerColumns)
			if err != nil {
				return domainerrors.Validationf("player row %d: %v", i, err)
			}
			cols = append(cols, "created_at")
			args = append(args, now)

			query := fmt.Sprintf(`INSERT INTO players (%s) VALUES (%s)`,
				strings.Join(cols, ", "), placeholders(len(cols)))
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				if isForeignKeyViolation(err) {
					return domainerrors.NotFoundf("tournament %s not found", tournamentID)
				}
				if isUniqueViolation(err) {
					return domainerrors.Conflictf("duplicate player id %v", r["id"])
				}
				return fmt.Errorf("insert player %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("players replaced", "tournament_id", tournamentID, "count", len(rows))
	return nil
}

// ListPlayers returns the standings of a tournament in rank order.
func (s *Store) ListPlayers(ctx context.Context, tournamentID string) ([]domain.RawRow, error) {
	rows, err := queryRawRows(ctx, s.db, playerSelect+` WHERE tournament_id = ?`+rankedOrder, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return rows, nil
}

// ListRankedPlayers returns only the players of a tournament that carry a
// rank.
func (s *Store) ListRankedPlayers(ctx context.Context, tournamentID string) ([]domain.RawRow, error) {
	rows, err := queryRawRows(ctx, s.db,
		playerSelect+` WHERE tournament_id = ? AND rank IS NOT NULL AND rank != ''`+rankedOrder, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list ranked players: %w", err)
	}
	return rows, nil
}

// EachPlayer calls fn for every player of every tournament, joined with
// the tournament name. Used to rebuild the search index.
func (s *Store) EachPlayer(ctx context.Context, fn func(row domain.RawRow) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT p.id, p.tournament_id, p.name, p.title, p.federation,
		p.rating, p.rank, t.name AS tournament_name
		FROM players p JOIN tournaments t ON t.id = p.tournament_id`)
	if err != nil {
		return fmt.Errorf("scan players: %w", err)
	}
	defer rows.Close()

	all, err := scanRawRows(rows)
	if err != nil {
		return fmt.Errorf("scan players: %w", err)
	}
	for _, row := range all {
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

// CountPlayers returns the number of stored players.
func (s *Store) CountPlayers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return n, nil
}
