// README: Booking store backed by PostgreSQL.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taxihub/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, b *Booking) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO bookings (
			id, pickup_location, destination, time, passengers,
			notes, status, customer_id, driver_id, company_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		string(b.ID),
		b.PickupLocation,
		b.Destination,
		b.Time,
		b.Passengers,
		notesOrEmpty(b.Notes),
		string(b.Status),
		string(b.CustomerID),
		idToStringPtr(b.DriverID),
		idToStringPtr(b.CompanyID),
		b.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Booking, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, pickup_location, destination, time, passengers,
		       notes, status, customer_id, driver_id, company_id, created_at
		FROM bookings
		WHERE id = $1`, string(id),
	)
	return scanBooking(row)
}

// Update persists every mutable field of the booking, including the full
// notes list, in a single write.
func (s *Store) Update(ctx context.Context, b *Booking) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET pickup_location = $1,
		    destination = $2,
		    time = $3,
		    passengers = $4,
		    notes = $5,
		    status = $6,
		    driver_id = $7,
		    company_id = $8
		WHERE id = $9`,
		b.PickupLocation,
		b.Destination,
		b.Time,
		b.Passengers,
		notesOrEmpty(b.Notes),
		string(b.Status),
		idToStringPtr(b.DriverID),
		idToStringPtr(b.CompanyID),
		string(b.ID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateIfStatus persists every mutable field like Update, but only while the
// stored status still equals from. A lost race reports ErrUnauthorizedEdit,
// matching how a claim on an already-claimed booking is reported.
func (s *Store) UpdateIfStatus(ctx context.Context, b *Booking, from Status) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET pickup_location = $1,
		    destination = $2,
		    time = $3,
		    passengers = $4,
		    notes = $5,
		    status = $6,
		    driver_id = $7,
		    company_id = $8
		WHERE id = $9 AND status = $10`,
		b.PickupLocation,
		b.Destination,
		b.Time,
		b.Passengers,
		notesOrEmpty(b.Notes),
		string(b.Status),
		idToStringPtr(b.DriverID),
		idToStringPtr(b.CompanyID),
		string(b.ID),
		string(from),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.Get(ctx, b.ID); err != nil {
			return err
		}
		return ErrUnauthorizedEdit
	}
	return nil
}

// ClearDriver nulls the booking's driver assignment, leaving every other
// field alone.
func (s *Store) ClearDriver(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET driver_id = NULL
		WHERE id = $1`, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListByStatus(ctx context.Context, status Status) ([]Booking, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, pickup_location, destination, time, passengers,
		       notes, status, customer_id, driver_id, company_id, created_at
		FROM bookings
		WHERE status = $1
		ORDER BY created_at`, string(status),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// MostRecentByCustomer orders by creation time rather than trusting list
// append order, which is easy to violate under concurrent writes.
func (s *Store) MostRecentByCustomer(ctx context.Context, customerID types.ID) (*Booking, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, pickup_location, destination, time, passengers,
		       notes, status, customer_id, driver_id, company_id, created_at
		FROM bookings
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, string(customerID),
	)
	b, err := scanBooking(row)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return b, err
}

// ByIDs returns the bookings for the given ids, preserving the input order
// and skipping ids that no longer resolve.
func (s *Store) ByIDs(ctx context.Context, ids []types.ID) ([]Booking, error) {
	out := make([]Booking, 0, len(ids))
	for _, id := range ids {
		b, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*Booking, error) {
	var b Booking
	var driverID, companyID sql.NullString
	var scheduled time.Time

	err := row.Scan(
		&b.ID, &b.PickupLocation, &b.Destination, &scheduled, &b.Passengers,
		&b.Notes, &b.Status, &b.CustomerID, &driverID, &companyID, &b.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	b.Time = scheduled
	if driverID.Valid {
		d := types.ID(driverID.String)
		b.DriverID = &d
	}
	if companyID.Valid {
		c := types.ID(companyID.String)
		b.CompanyID = &c
	}
	return &b, nil
}

func idToStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func notesOrEmpty(notes []string) []string {
	if notes == nil {
		return []string{}
	}
	return notes
}
