package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	domainerrors "github.com/kgdevtools/lca-auth-sub003/internal/errors"
	"github.com/kgdevtools/lca-auth-sub003/internal/store"
)

// tournamentColumns lists the columns an import may write.
//
//nolint:gochecknoglobals // column whitelist
var tournamentColumns = []string{
	"id", "name", "location", "federation", "time_control", "chief_arbiter",
	"organizer", "description", "source", "date", "start_date", "end_date", "rounds",
}

const tournamentSelect = `SELECT id, name, location, federation, time_control, chief_arbiter,
	organizer, description, source, date, start_date, end_date, rounds FROM tournaments`

// TournamentFilter narrows ListTournaments.
type TournamentFilter struct {
	// Query matches tournament names case-insensitively.
	Query string
	store.PaginationParams
}

// UpsertTournament inserts row, or updates the columns row carries when a
// tournament with the same id exists. Keys outside the known columns are
// ignored.
func (s *Store) UpsertTournament(ctx context.Context, row domain.RawRow) error {
	cols, args, err := columnValues(row, tournamentColumns)
	if err != nil {
		return domainerrors.Validationf("tournament row: %v", err)
	}
	if id, _ := row.Get("id"); domain.Stringify(id) == "" {
		return domainerrors.Validation("tournament row has no id")
	}

	now := formatTime(time.Now())
	cols = append(cols, "created_at", "updated_at")
	args = append(args, now, now)

	updates := make([]string, 0, len(cols))
	for _, c := range cols {
		if c == "id" || c == "created_at" {
			continue
		}
		updates = append(updates, c+" = excluded."+c)
	}

	query := fmt.Sprintf(`INSERT INTO tournaments (%s) VALUES (%s)
		ON CONFLICT(id) DO UPDATE SET %s`,
		strings.Join(cols, ", "), placeholders(len(cols)), strings.Join(updates, ", "))

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert tournament: %w", err)
	}
	return nil
}

// GetTournament returns the raw row of one tournament.
func (s *Store) GetTournament(ctx context.Context, id string) (domain.RawRow, error) {
	rows, err := queryRawRows(ctx, s.db, tournamentSelect+` WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get tournament: %w", err)
	}
	if len(rows) == 0 {
		return nil, domainerrors.NotFoundf("tournament %s not found", id)
	}
	return rows[0], nil
}

// TournamentExists reports whether a tournament with id exists.
func (s *Store) TournamentExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM tournaments WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("tournament exists: %w", err)
	}
	return true, nil
}

// ListTournaments returns a page of tournaments, most recently updated
// first, and the total number matching the filter.
func (s *Store) ListTournaments(ctx context.Context, f TournamentFilter) ([]domain.RawRow, int, error) {
	f.Validate()

	where := ""
	var args []any
	if q := strings.TrimSpace(f.Query); q != "" {
		where = ` WHERE name LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(q)+"%")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournaments`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tournaments: %w", err)
	}

	rows, err := queryRawRows(ctx, s.db,
		tournamentSelect+where+` ORDER BY updated_at DESC, id LIMIT ? OFFSET ?`,
		append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tournaments: %w", err)
	}
	return rows, total, nil
}

// DeleteTournament removes a tournament with its players and registrations.
func (s *Store) DeleteTournament(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tournament: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domainerrors.NotFoundf("tournament %s not found", id)
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
