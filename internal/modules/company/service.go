// README: Company roster engine; driver add/remove with cascading detachment
// of active bookings, plus company read operations.
package company

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
	ErrNotFound           = errors.New("company not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnauthorizedView   = errors.New("not authorized to view company")
	ErrUnauthorizedEdit   = errors.New("not authorized to edit company")
	ErrDriverAlreadyAdded = errors.New("driver already added to a company")
	ErrAlreadyAffiliated  = errors.New("user already affiliated with a company")
	ErrNameTaken          = errors.New("company name already taken")
	ErrValidation         = errors.New("invalid company input")
)

// CompanyStore is the persistence contract for company records.
type CompanyStore interface {
	Create(ctx context.Context, c *Company) error
	Get(ctx context.Context, id types.ID) (*Company, error)
	GetByName(ctx context.Context, name string) (*Company, error)
	AppendDriver(ctx context.Context, companyID, driverID types.ID) error
	RemoveDriver(ctx context.Context, companyID, driverID types.ID) error
}

// UserRoster exposes the identity reads and membership writes the roster
// engine needs. Member returns ErrUserNotFound for unknown ids.
type UserRoster interface {
	Member(ctx context.Context, id types.ID) (*Member, error)
	// SetMembership updates the user's role and company affiliation together.
	SetMembership(ctx context.Context, userID types.ID, role types.Role, companyID *types.ID) error
	RemoveBooking(ctx context.Context, userID, bookingID types.ID) error
}

// BookingDirectory resolves booking references and clears driver assignments
// during cascade detachment.
type BookingDirectory interface {
	ByIDs(ctx context.Context, ids []types.ID) ([]booking.Booking, error)
	ClearDriver(ctx context.Context, bookingID types.ID) error
}

type Deps struct {
	Store    CompanyStore
	Users    UserRoster
	Bookings BookingDirectory
}

type Service struct {
	store    CompanyStore
	users    UserRoster
	bookings BookingDirectory
}

func NewService(d Deps) *Service {
	return &Service{store: d.Store, users: d.Users, bookings: d.Bookings}
}

type CreateCommand struct {
	ActorID types.ID
	Name    string
}

// Create registers a new company with the actor as its first admin. The actor
// must not already belong to a company, and company names are unique.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (types.ID, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return "", ErrValidation
	}
	founder, err := s.users.Member(ctx, cmd.ActorID)
	if err != nil {
		return "", err
	}
	if founder.CompanyID != nil {
		return "", ErrAlreadyAffiliated
	}
	if _, err := s.store.GetByName(ctx, name); err == nil {
		return "", ErrNameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	c := &Company{
		ID:        types.NewID(),
		Name:      name,
		Admins:    []types.ID{cmd.ActorID},
		Drivers:   []types.ID{},
		Bookings:  []types.ID{},
		CreatedAt: time.Now(),
	}
	if err := s.store.Create(ctx, c); err != nil {
		return "", err
	}
	if err := s.users.SetMembership(ctx, cmd.ActorID, types.RoleCompanyAdmin, &c.ID); err != nil {
		return "", fmt.Errorf("set founder membership: %w", err)
	}
	return c.ID, nil
}

// GetByID returns the company record; admins and drivers of the company may
// view it.
func (s *Service) GetByID(ctx context.Context, viewerID, companyID types.ID) (*Company, error) {
	c, err := s.store.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if !CanManageCompany(viewerID, c, true) {
		return nil, ErrUnauthorizedView
	}
	return c, nil
}

// Bookings returns the company's bookings, most recent first, optionally
// filtered to active ones and capped at limit (0 means no cap). An empty
// result is reported as booking.ErrNotFound.
func (s *Service) Bookings(ctx context.Context, viewerID, companyID types.ID, limit int, activeOnly bool) ([]booking.Booking, error) {
	c, err := s.store.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if !CanManageCompany(viewerID, c, true) {
		return nil, ErrUnauthorizedView
	}
	if len(c.Bookings) == 0 {
		return nil, booking.ErrNotFound
	}

	resolved, err := s.bookings.ByIDs(ctx, c.Bookings)
	if err != nil {
		return nil, err
	}
	return filterBookings(resolved, limit, activeOnly), nil
}

// Drivers returns the company's drivers resolved to member summaries.
func (s *Service) Drivers(ctx context.Context, viewerID, companyID types.ID) ([]Member, error) {
	c, err := s.store.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if !CanManageCompany(viewerID, c, true) {
		return nil, ErrUnauthorizedView
	}
	if len(c.Drivers) == 0 {
		return nil, ErrUserNotFound
	}

	out := make([]Member, 0, len(c.Drivers))
	for _, id := range c.Drivers {
		m, err := s.users.Member(ctx, id)
		if errors.Is(err, ErrUserNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, nil
}

// AddDriver promotes an unaffiliated customer to a driver of the company.
func (s *Service) AddDriver(ctx context.Context, actorID, companyID, driverID types.ID) error {
	c, err := s.store.Get(ctx, companyID)
	if err != nil {
		return err
	}
	if !CanManageCompany(actorID, c, false) {
		return ErrUnauthorizedView
	}

	driver, err := s.users.Member(ctx, driverID)
	if err != nil {
		return err
	}
	if driver.Role == types.RoleDriver || driver.CompanyID != nil || c.HasDriver(driverID) {
		return ErrDriverAlreadyAdded
	}

	cid := companyID
	if err := s.users.SetMembership(ctx, driverID, types.RoleDriver, &cid); err != nil {
		return fmt.Errorf("set driver membership: %w", err)
	}
	return s.store.AppendDriver(ctx, companyID, driverID)
}

// RemoveDriver demotes the driver back to a customer and detaches them from
// every booking of theirs that is still active. Admins may remove any driver;
// a driver may remove themself.
func (s *Service) RemoveDriver(ctx context.Context, actorID, companyID, driverID types.ID) error {
	c, err := s.store.Get(ctx, companyID)
	if err != nil {
		return err
	}
	if !CanManageCompany(actorID, c, true) {
		return ErrUnauthorizedView
	}

	driver, err := s.users.Member(ctx, driverID)
	if err != nil {
		return err
	}
	if !c.HasAdmin(actorID) && actorID != driverID {
		return ErrUnauthorizedEdit
	}
	if !c.HasDriver(driverID) {
		return ErrUserNotFound
	}

	// Cascade: a driver leaving the company must not keep any active booking
	// assignment. Finished and Cancelled bookings stay on the record.
	assigned, err := s.bookings.ByIDs(ctx, driver.Bookings)
	if err != nil {
		return err
	}
	for _, b := range assigned {
		if !b.Active() {
			continue
		}
		if err := s.bookings.ClearDriver(ctx, b.ID); err != nil {
			return fmt.Errorf("clear booking driver: %w", err)
		}
		if err := s.users.RemoveBooking(ctx, driverID, b.ID); err != nil {
			return fmt.Errorf("detach booking from driver: %w", err)
		}
	}

	if err := s.users.SetMembership(ctx, driverID, types.RoleCustomer, nil); err != nil {
		return fmt.Errorf("reset driver membership: %w", err)
	}
	return s.store.RemoveDriver(ctx, companyID, driverID)
}

func filterBookings(in []booking.Booking, limit int, activeOnly bool) []booking.Booking {
	// Back-reference lists append in creation order; newest first for display.
	out := make([]booking.Booking, 0, len(in))
	for i := len(in) - 1; i >= 0; i-- {
		out = append(out, in[i])
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
	return out
}
