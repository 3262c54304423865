package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	domainerrors "github.com/kgdevtools/lca-auth-sub003/internal/errors"
)

// ErrReferenceTaken is the cause of the conflict returned when a new
// registration reuses an existing reference code.
var ErrReferenceTaken = errors.New("reference taken")

const registrationColumns = `id, reference, tournament_id, full_name, email, phone, rating, section, notes, created_at`

func scanRegistration(scanner interface{ Scan(dest ...any) error }) (*domain.Registration, error) {
	var (
		r         domain.Registration
		phone     sql.NullString
		rating    sql.NullInt64
		section   sql.NullString
		notes     sql.NullString
		createdAt string
	)
	if err := scanner.Scan(&r.ID, &r.Reference, &r.TournamentID, &r.FullName, &r.Email, &phone, &rating, &section, &notes, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	r.Phone = phone.String
	r.Section = section.String
	r.Notes = notes.String
	if rating.Valid {
		v := int(rating.Int64)
		r.Rating = &v
	}
	return &r, nil
}

// CreateRegistration stores a registration. A second registration with the
// same email for the same tournament is a conflict.
func (s *Store) CreateRegistration(ctx context.Context, r *domain.Registration) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO registrations (`+registrationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.Reference,
		r.TournamentID,
		r.FullName,
		r.Email,
		nullString(r.Phone),
		nullIntPtr(r.Rating),
		nullString(r.Section),
		nullString(r.Notes),
		formatTime(r.CreatedAt),
	)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err) && strings.Contains(err.Error(), "registrations.reference"):
		return domainerrors.Conflict("registration reference already in use").WithCause(ErrReferenceTaken)
	case isUniqueViolation(err):
		return domainerrors.Conflictf("%s is already registered for this tournament", r.Email)
	case isForeignKeyViolation(err):
		return domainerrors.NotFoundf("tournament %s not found", r.TournamentID)
	default:
		return fmt.Errorf("create registration: %w", err)
	}
}

// GetRegistrationByReference returns the registration quoting reference.
func (s *Store) GetRegistrationByReference(ctx context.Context, reference string) (*domain.Registration, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE reference = ?`, reference)
	r, err := scanRegistration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFoundf("registration %s not found", reference)
	}
	if err != nil {
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return r, nil
}

// ListRegistrations returns the registrations of a tournament, oldest first.
func (s *Store) ListRegistrations(ctx context.Context, tournamentID string) ([]*domain.Registration, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+registrationColumns+` FROM registrations
		WHERE tournament_id = ? ORDER BY created_at, id`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []*domain.Registration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
