// README: Company store backed by PostgreSQL; membership and booking
// back-references live in array columns on the company row.
package company

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taxihub/internal/modules/booking"
	"taxihub/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Company, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, admins, drivers, bookings, created_at
		FROM companies
		WHERE id = $1`, string(id),
	)

	var c Company
	var admins, drivers, bookings []string
	err := row.Scan(&c.ID, &c.Name, &admins, &drivers, &bookings, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	c.Admins = toIDs(admins)
	c.Drivers = toIDs(drivers)
	c.Bookings = toIDs(bookings)
	return &c, nil
}

func (s *Store) GetByName(ctx context.Context, name string) (*Company, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, admins, drivers, bookings, created_at
		FROM companies
		WHERE name = $1`, name,
	)

	var c Company
	var admins, drivers, bookings []string
	err := row.Scan(&c.ID, &c.Name, &admins, &drivers, &bookings, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	c.Admins = toIDs(admins)
	c.Drivers = toIDs(drivers)
	c.Bookings = toIDs(bookings)
	return &c, nil
}

func (s *Store) Create(ctx context.Context, c *Company) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO companies (id, name, admins, drivers, bookings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(c.ID), c.Name, fromIDs(c.Admins), fromIDs(c.Drivers), fromIDs(c.Bookings), c.CreatedAt,
	)
	return err
}

func (s *Store) AppendDriver(ctx context.Context, companyID, driverID types.ID) error {
	return s.appendTo(ctx, "drivers", companyID, driverID)
}

func (s *Store) RemoveDriver(ctx context.Context, companyID, driverID types.ID) error {
	return s.removeFrom(ctx, "drivers", companyID, driverID)
}

// Snapshot returns the company slice the booking engine authorizes against.
func (s *Store) Snapshot(ctx context.Context, id types.ID) (*booking.CompanySnapshot, error) {
	c, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, booking.ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking.CompanySnapshot{
		ID:      c.ID,
		Name:    c.Name,
		Admins:  c.Admins,
		Drivers: c.Drivers,
	}, nil
}

func (s *Store) AppendBooking(ctx context.Context, companyID, bookingID types.ID) error {
	return s.appendTo(ctx, "bookings", companyID, bookingID)
}

func (s *Store) RemoveBooking(ctx context.Context, companyID, bookingID types.ID) error {
	return s.removeFrom(ctx, "bookings", companyID, bookingID)
}

func (s *Store) appendTo(ctx context.Context, column string, companyID, memberID types.ID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE companies
		SET `+column+` = array_append(`+column+`, $1)
		WHERE id = $2 AND NOT ($1 = ANY(`+column+`))`,
		string(memberID), string(companyID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.exists(ctx, companyID)
	}
	return nil
}

func (s *Store) removeFrom(ctx context.Context, column string, companyID, memberID types.ID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE companies
		SET `+column+` = array_remove(`+column+`, $1)
		WHERE id = $2`,
		string(memberID), string(companyID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// exists distinguishes a missing company from an already-applied append.
func (s *Store) exists(ctx context.Context, id types.ID) error {
	var found bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM companies WHERE id = $1)`, string(id)).Scan(&found)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func toIDs(in []string) []types.ID {
	out := make([]types.ID, 0, len(in))
	for _, v := range in {
		out = append(out, types.ID(v))
	}
	return out
}

func fromIDs(in []types.ID) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		out = append(out, string(v))
	}
	return out
}
