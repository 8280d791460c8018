// README: Account service; registration, credential checks, token issuing,
// and self-service profile reads.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taxihub/internal/modules/booking"
	"taxihub/internal/types"
)

var (
	ErrNotFound             = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrUnauthorizedView     = errors.New("not authorized to view user")
	ErrUnauthorizedEdit     = errors.New("not authorized to edit user")
	ErrValidation           = errors.New("invalid user input")
)

// UserStore is the persistence contract for user accounts.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id types.ID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u *User) error
}

// TokenSigner issues the bearer token returned on successful authentication.
type TokenSigner interface {
	Sign(userID types.ID, role types.Role) (string, error)
}

// BookingResolver resolves a user's booking back-references for listing.
type BookingResolver interface {
	ByIDs(ctx context.Context, ids []types.ID) ([]booking.Booking, error)
}

type Deps struct {
	Store    UserStore
	Signer   TokenSigner
	Bookings BookingResolver
}

type Service struct {
	store    UserStore
	signer   TokenSigner
	bookings BookingResolver
}

func NewService(d Deps) *Service {
	return &Service{store: d.Store, signer: d.Signer, bookings: d.Bookings}
}

type RegisterCommand struct {
	Name     string
	Email    string
	Password string
}

// Register creates a customer account. New accounts always start as customers;
// driver and admin roles are granted through the company roster.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (types.ID, error) {
	name := strings.TrimSpace(cmd.Name)
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if name == "" || email == "" || cmd.Password == "" {
		return "", ErrValidation
	}

	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	u := &User{
		ID:        types.NewID(),
		Name:      name,
		Email:     email,
		Role:      types.RoleCustomer,
		Bookings:  []types.ID{},
		Available: true,
		CreatedAt: time.Now(),
	}
	if err := u.SetPassword(cmd.Password); err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.Create(ctx, u); err != nil {
		return "", err
	}
	return u.ID, nil
}

// Authenticate verifies the credentials and returns a signed bearer token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	u, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrNotFound) {
		return "", ErrAuthenticationFailed
	}
	if err != nil {
		return "", err
	}
	if !u.CheckPassword(password) {
		return "", ErrAuthenticationFailed
	}
	return s.signer.Sign(u.ID, u.Role)
}

// GetByID returns the user's own profile. Other users' profiles are reached
// only through the booking and company views, which resolve names themselves.
func (s *Service) GetByID(ctx context.Context, viewerID, userID types.ID) (*User, error) {
	if viewerID != userID {
		return nil, ErrUnauthorizedView
	}
	return s.store.Get(ctx, userID)
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}

// EditCommand carries the independently optional profile changes. Changing
// the password requires the current one.
type EditCommand struct {
	ActorID     types.ID
	UserID      types.ID
	Name        *string
	Email       *string
	Available   *bool
	OldPassword string
	NewPassword *string
}

// Edit applies the requested changes to the actor's own profile. The target
// record must exist before the self-edit rule is enforced.
func (s *Service) Edit(ctx context.Context, cmd EditCommand) error {
	u, err := s.store.Get(ctx, cmd.UserID)
	if err != nil {
		return err
	}
	if cmd.ActorID != cmd.UserID {
		return ErrUnauthorizedEdit
	}

	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			return ErrValidation
		}
		u.Name = name
	}
	if cmd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*cmd.Email))
		if email == "" {
			return ErrValidation
		}
		if email != u.Email {
			if _, err := s.store.GetByEmail(ctx, email); err == nil {
				return ErrEmailTaken
			} else if !errors.Is(err, ErrNotFound) {
				return err
			}
			u.Email = email
		}
	}
	if cmd.Available != nil {
		u.Available = *cmd.Available
	}
	if cmd.NewPassword != nil {
		if !u.CheckPassword(cmd.OldPassword) {
			return ErrAuthenticationFailed
		}
		if *cmd.NewPassword == "" {
			return ErrValidation
		}
		if err := u.SetPassword(*cmd.NewPassword); err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
	}

	return s.store.Update(ctx, u)
}

// Bookings lists the user's own bookings, most recent first, optionally
// filtered to active ones and capped at limit (0 means no cap). An empty
// history is reported as booking.ErrNotFound.
func (s *Service) Bookings(ctx context.Context, viewerID, userID types.ID, limit int, activeOnly bool) ([]booking.Booking, error) {
	if viewerID != userID {
		return nil, ErrUnauthorizedView
	}
	u, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(u.Bookings) == 0 {
		return nil, booking.ErrNotFound
	}

	resolved, err := s.bookings.ByIDs(ctx, u.Bookings)
	if err != nil {
		return nil, err
	}

	// Back-reference lists append in creation order; newest first for display.
	out := make([]booking.Booking, 0, len(resolved))
	for i := len(resolved) - 1; i >= 0; i-- {
		out = append(out, resolved[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if activeOnly {
		filtered := out[:0]
		for _, b := range out {
			if b.Active() {
				filtered = append(filtered, b)
			}
		}
		out = filtered
	}
	return out, nil
}
