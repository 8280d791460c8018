// README: Booking lifecycle engine; orchestrates create/view/edit/claim/release
// and keeps the denormalized user/company back-references in step.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"taxihub/internal/types"
)

var (
	ErrNotFound         = errors.New("booking not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrCompanyNotFound  = errors.New("company not found")
	ErrUnauthorizedView = errors.New("not authorized to view booking")
	ErrUnauthorizedEdit = errors.New("not authorized to edit booking")
	ErrActiveBooking    = errors.New("customer already has an active booking")
	ErrValidation       = errors.New("invalid booking change")
)

// BookingStore is the narrow persistence contract the engine is written
// against; it is satisfied by the Postgres Store and by in-memory fakes in
// tests.
type BookingStore interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id types.ID) (*Booking, error)
	Update(ctx context.Context, b *Booking) error
	// UpdateIfStatus writes b only while the stored status still equals from;
	// a lost race reports ErrUnauthorizedEdit.
	UpdateIfStatus(ctx context.Context, b *Booking, from Status) error
	ListByStatus(ctx context.Context, status Status) ([]Booking, error)
	// MostRecentByCustomer returns the customer's newest booking by creation
	// time, or (nil, nil) when the customer has none.
	MostRecentByCustomer(ctx context.Context, customerID types.ID) (*Booking, error)
}

// UserDirectory exposes the identity lookups and back-reference writes the
// engine needs. Actor returns ErrUserNotFound for unknown ids.
type UserDirectory interface {
	Actor(ctx context.Context, id types.ID) (*Actor, error)
	AppendBooking(ctx context.Context, userID, bookingID types.ID) error
	RemoveBooking(ctx context.Context, userID, bookingID types.ID) error
}

// CompanyDirectory exposes company lookups and back-reference writes.
// Snapshot returns ErrCompanyNotFound for unknown ids.
type CompanyDirectory interface {
	Snapshot(ctx context.Context, id types.ID) (*CompanySnapshot, error)
	AppendBooking(ctx context.Context, companyID, bookingID types.ID) error
	RemoveBooking(ctx context.Context, companyID, bookingID types.ID) error
}

// DispatchBoard mirrors the set of unallocated bookings for dashboard reads.
type DispatchBoard interface {
	Add(ctx context.Context, id types.ID) error
	Remove(ctx context.Context, id types.ID) error
}

// RouteEstimator enriches booking detail reads with a travel estimate.
type RouteEstimator interface {
	Estimate(ctx context.Context, origin, destination string) (time.Duration, string, error)
}

type Deps struct {
	Store     BookingStore
	Users     UserDirectory
	Companies CompanyDirectory
	Board     DispatchBoard  // optional
	Events    EventPublisher // optional
	Routes    RouteEstimator // optional
}

type Service struct {
	store     BookingStore
	users     UserDirectory
	companies CompanyDirectory
	board     DispatchBoard
	events    EventPublisher
	routes    RouteEstimator
}

func NewService(d Deps) *Service {
	return &Service{
		store:     d.Store,
		users:     d.Users,
		companies: d.Companies,
		board:     d.Board,
		events:    d.Events,
		routes:    d.Routes,
	}
}

type CreateCommand struct {
	CustomerID     types.ID
	PickupLocation string
	Destination    string
	Time           time.Time
	Passengers     int
	Notes          []string
}

// EditCommand carries the independently optional field changes of an edit.
// Nil fields are left untouched. Role gates are evaluated against the
// editor's persisted record, not the request payload.
type EditCommand struct {
	EditorID  types.ID
	BookingID types.ID
	Driver    *types.ID
	Status    *Status
	Time      *time.Time
	Note      *string
}

type ClaimCommand struct {
	ActorID   types.ID
	BookingID types.ID
	CompanyID types.ID
}

type ReleaseCommand struct {
	ActorID   types.ID
	BookingID types.ID
}

// Create opens a new booking in Pending with no driver or company. The
// customer must exist and must not hold another active booking.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (types.ID, error) {
	if _, err := s.users.Actor(ctx, cmd.CustomerID); err != nil {
		return "", err
	}

	recent, err := s.store.MostRecentByCustomer(ctx, cmd.CustomerID)
	if err != nil {
		return "", err
	}
	if recent != nil && recent.Active() {
		return "", ErrActiveBooking
	}

	b := &Booking{
		ID:             types.NewID(),
		PickupLocation: cmd.PickupLocation,
		Destination:    cmd.Destination,
		Time:           cmd.Time,
		Passengers:     cmd.Passengers,
		Notes:          cmd.Notes,
		Status:         StatusPending,
		CustomerID:     cmd.CustomerID,
		CreatedAt:      time.Now(),
	}
	if err := s.store.Create(ctx, b); err != nil {
		return "", err
	}
	if err := s.users.AppendBooking(ctx, cmd.CustomerID, b.ID); err != nil {
		return "", fmt.Errorf("append booking to customer: %w", err)
	}

	s.boardAdd(ctx, b.ID)
	s.publish(ctx, EventCreated, b)
	return b.ID, nil
}

// GetByID returns the booking with customer and driver resolved to display
// names. Side-effect-free.
func (s *Service) GetByID(ctx context.Context, viewerID, bookingID types.ID) (*Detail, error) {
	b, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	viewer, err := s.actorOrNil(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if !CanViewOrEditBooking(viewer, b) {
		return nil, ErrUnauthorizedView
	}

	d := &Detail{Booking: *b}
	if customer, err := s.actorOrNil(ctx, b.CustomerID); err != nil {
		return nil, err
	} else if customer != nil {
		d.CustomerName = customer.Name
	}
	if b.DriverID != nil {
		if driver, err := s.actorOrNil(ctx, *b.DriverID); err != nil {
			return nil, err
		} else if driver != nil {
			d.DriverName = driver.Name
		}
	}
	if s.routes != nil {
		if dur, dist, err := s.routes.Estimate(ctx, b.PickupLocation, b.Destination); err == nil {
			d.RouteDuration = dur
			d.RouteDistance = dist
		}
	}
	return d, nil
}

// Edit applies the requested field changes after validating all of them, so
// no partially applied edit is ever persisted.
func (s *Service) Edit(ctx context.Context, cmd EditCommand) error {
	b, err := s.store.Get(ctx, cmd.BookingID)
	if err != nil {
		return err
	}

	editor, err := s.actorOrNil(ctx, cmd.EditorID)
	if err != nil {
		return err
	}
	if !CanViewOrEditBooking(editor, b) {
		return ErrUnauthorizedEdit
	}

	// Validate every change before touching anything.
	var newDriver *Actor
	if cmd.Driver != nil {
		if editor.Role == types.RoleCustomer {
			return ErrUnauthorizedEdit
		}
		newDriver, err = s.users.Actor(ctx, *cmd.Driver)
		if err != nil {
			return err
		}
		// Only drivers of the claiming company may be assigned.
		if newDriver.Role != types.RoleDriver ||
			newDriver.CompanyID == nil || b.CompanyID == nil ||
			*newDriver.CompanyID != *b.CompanyID {
			return ErrUnauthorizedEdit
		}
	}
	if cmd.Status != nil {
		if editor.Role == types.RoleCustomer {
			return ErrUnauthorizedEdit
		}
		// Pending is only reachable through release; terminal states stay put.
		if !cmd.Status.Valid() || *cmd.Status == StatusPending || !CanTransition(b.Status, *cmd.Status) {
			return ErrValidation
		}
	}

	// Apply.
	if newDriver != nil {
		if b.DriverID != nil {
			if err := s.users.RemoveBooking(ctx, *b.DriverID, b.ID); err != nil {
				return fmt.Errorf("detach booking from previous driver: %w", err)
			}
		}
		if err := s.users.AppendBooking(ctx, newDriver.ID, b.ID); err != nil {
			return fmt.Errorf("append booking to driver: %w", err)
		}
		id := newDriver.ID
		b.DriverID = &id
	}
	if cmd.Status != nil {
		b.Notes = append(b.Notes, fmt.Sprintf("Booking Status Changed From %s to %s", b.Status, *cmd.Status))
		b.Status = *cmd.Status
	}
	if cmd.Time != nil {
		b.Time = *cmd.Time
	}
	if cmd.Note != nil {
		b.Notes = append(b.Notes, *cmd.Note)
	}

	if err := s.store.Update(ctx, b); err != nil {
		return err
	}
	if cmd.Status != nil {
		s.publish(ctx, EventStatusChanged, b)
	}
	if newDriver != nil {
		s.publish(ctx, EventDriverChanged, b)
	}
	return nil
}

// ListUnallocated returns every booking still in Pending. An empty pool is
// reported as ErrNotFound rather than an empty list.
func (s *Service) ListUnallocated(ctx context.Context) ([]Booking, error) {
	bookings, err := s.store.ListByStatus(ctx, StatusPending)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, ErrNotFound
	}
	return bookings, nil
}

// Claim allocates a Pending booking to the actor's company and moves it to
// In_Progress. A booking that is no longer Pending reports an authorization
// failure, matching the policy decision.
func (s *Service) Claim(ctx context.Context, cmd ClaimCommand) error {
	b, err := s.store.Get(ctx, cmd.BookingID)
	if err != nil {
		return err
	}
	if b.Status != StatusPending {
		return ErrUnauthorizedEdit
	}

	company, err := s.companies.Snapshot(ctx, cmd.CompanyID)
	if err != nil {
		return err
	}
	actor, err := s.actorOrNil(ctx, cmd.ActorID)
	if err != nil {
		return err
	}
	if !CanClaimBooking(actor, b, company) {
		return ErrUnauthorizedEdit
	}

	b.Status = StatusInProgress
	id := cmd.CompanyID
	b.CompanyID = &id
	b.Notes = append(b.Notes, "Booking Claimed by: "+company.Name)

	// Conditional write so concurrent claims on the same booking cannot both
	// win; losers see the same error as a claim on a non-Pending booking.
	if err := s.store.UpdateIfStatus(ctx, b, StatusPending); err != nil {
		return err
	}
	if err := s.companies.AppendBooking(ctx, cmd.CompanyID, b.ID); err != nil {
		return fmt.Errorf("append booking to company: %w", err)
	}

	s.boardRemove(ctx, b.ID)
	s.publish(ctx, EventClaimed, b)
	return nil
}

// Release returns a claimed booking to the unallocated pool, clearing its
// driver and company and detaching the back-references on both.
func (s *Service) Release(ctx context.Context, cmd ReleaseCommand) error {
	b, err := s.store.Get(ctx, cmd.BookingID)
	if err != nil {
		return err
	}
	actor, err := s.actorOrNil(ctx, cmd.ActorID)
	if err != nil {
		return err
	}
	if !CanReleaseBooking(actor, b) {
		return ErrUnauthorizedEdit
	}

	oldDriver := b.DriverID
	oldCompany := b.CompanyID

	b.Status = StatusPending
	b.DriverID = nil
	b.CompanyID = nil
	b.Notes = append(b.Notes, "Booking Released")

	if err := s.store.Update(ctx, b); err != nil {
		return err
	}
	if oldDriver != nil {
		if err := s.users.RemoveBooking(ctx, *oldDriver, b.ID); err != nil {
			return fmt.Errorf("detach booking from driver: %w", err)
		}
	}
	if oldCompany != nil {
		if err := s.companies.RemoveBooking(ctx, *oldCompany, b.ID); err != nil {
			return fmt.Errorf("detach booking from company: %w", err)
		}
	}

	s.boardAdd(ctx, b.ID)
	s.publish(ctx, EventReleased, b)
	return nil
}

// actorOrNil loads an actor snapshot, mapping "no such user" to a nil actor
// so the policy's nil-is-unauthorized rule applies.
func (s *Service) actorOrNil(ctx context.Context, id types.ID) (*Actor, error) {
	actor, err := s.users.Actor(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return actor, nil
}

func (s *Service) boardAdd(ctx context.Context, id types.ID) {
	if s.board == nil {
		return
	}
	if err := s.board.Add(ctx, id); err != nil {
		log.Printf("dispatch board add %s: %v", id, err)
	}
}

func (s *Service) boardRemove(ctx context.Context, id types.ID) {
	if s.board == nil {
		return
	}
	if err := s.board.Remove(ctx, id); err != nil {
		log.Printf("dispatch board remove %s: %v", id, err)
	}
}

func (s *Service) publish(ctx context.Context, kind string, b *Booking) {
	if s.events == nil {
		return
	}
	e := Event{
		Kind:       kind,
		BookingID:  b.ID,
		CustomerID: b.CustomerID,
		DriverID:   b.DriverID,
		CompanyID:  b.CompanyID,
		Status:     b.Status,
		At:         time.Now(),
	}
	if err := s.events.Publish(ctx, e); err != nil {
		log.Printf("publish booking event %s %s: %v", kind, b.ID, err)
	}
}
