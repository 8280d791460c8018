// README: User store backed by PostgreSQL. Also serves the booking and
// company engines as their user directory, translating not-found errors to
// the sentinel each consumer matches on.
package identity

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taxihub/internal/modules/booking"
	"taxihub/internal/modules/company"
	"taxihub/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const userColumns = `id, name, email, password_hash, role, company_id, bookings, available, created_at`

func (s *Store) Create(ctx context.Context, u *User) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		string(u.ID), u.Name, u.Email, u.PasswordHash, string(u.Role),
		idToStringPtr(u.CompanyID), fromIDs(u.Bookings), u.Available, u.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1`, string(id),
	)
	return scanUser(row)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1`, email,
	)
	return scanUser(row)
}

func (s *Store) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// Update persists the mutable profile fields and the password hash.
func (s *Store) Update(ctx context.Context, u *User) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, available = $4
		WHERE id = $5`,
		u.Name, u.Email, u.PasswordHash, u.Available, string(u.ID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetMembership updates role and company affiliation together so a user is
// never a driver without a company or vice versa.
func (s *Store) SetMembership(ctx context.Context, userID types.ID, role types.Role, companyID *types.ID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users
		SET role = $1, company_id = $2
		WHERE id = $3`,
		string(role), idToStringPtr(companyID), string(userID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return company.ErrUserNotFound
	}
	return nil
}

func (s *Store) AppendBooking(ctx context.Context, userID, bookingID types.ID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users
		SET bookings = array_append(bookings, $1)
		WHERE id = $2 AND NOT ($1 = ANY(bookings))`,
		string(bookingID), string(userID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.exists(ctx, userID)
	}
	return nil
}

func (s *Store) RemoveBooking(ctx context.Context, userID, bookingID types.ID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users
		SET bookings = array_remove(bookings, $1)
		WHERE id = $2`,
		string(bookingID), string(userID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Actor serves the booking engine's directory contract.
func (s *Store) Actor(ctx context.Context, id types.ID) (*booking.Actor, error) {
	u, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, booking.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking.Actor{
		ID:        u.ID,
		Name:      u.Name,
		Role:      u.Role,
		CompanyID: u.CompanyID,
	}, nil
}

// Member serves the company roster engine's directory contract.
func (s *Store) Member(ctx context.Context, id types.ID) (*company.Member, error) {
	u, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, company.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company.Member{
		ID:        u.ID,
		Name:      u.Name,
		Role:      u.Role,
		CompanyID: u.CompanyID,
		Bookings:  u.Bookings,
	}, nil
}

func (s *Store) exists(ctx context.Context, id types.ID) error {
	var found bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, string(id)).Scan(&found)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	var companyID sql.NullString
	var bookings []string

	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&companyID, &bookings, &u.Available, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if companyID.Valid {
		c := types.ID(companyID.String)
		u.CompanyID = &c
	}
	u.Bookings = toIDs(bookings)
	return &u, nil
}

func idToStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
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
