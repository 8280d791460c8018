// README: Booking aggregate, status state machine, and policy snapshots.
package booking

import (
	"time"

	"taxihub/internal/types"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In_Progress"
	StatusArrived    Status = "Arrived"
	StatusCancelled  Status = "Cancelled"
	StatusFinished   Status = "Finished"
)

// Valid reports whether s is a known booking status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusArrived, StatusCancelled, StatusFinished:
		return true
	}
	return false
}

// Terminal statuses have no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

type Booking struct {
	ID             types.ID
	PickupLocation string
	Destination    string
	Time           time.Time
	Passengers     int
	Notes          []string
	Status         Status
	CustomerID     types.ID
	DriverID       *types.ID
	CompanyID      *types.ID
	CreatedAt      time.Time
}

// Active reports whether the booking still occupies its customer's single
// active-booking slot.
func (b *Booking) Active() bool {
	return b.Status != StatusFinished && b.Status != StatusCancelled
}

// AllowedTransitions represents the booking status flow as code. Pending is
// re-entered only through the explicit release operation, never through edit,
// so it never appears as a target here.
var AllowedTransitions = map[Status][]Status{
	StatusPending:    {StatusInProgress},
	StatusInProgress: {StatusArrived, StatusCancelled, StatusFinished},
	StatusArrived:    {StatusFinished, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Actor is a snapshot of the acting user, loaded from the directory at
// decision time. Authorization is always evaluated against persisted state,
// never against values supplied in the request payload.
type Actor struct {
	ID        types.ID
	Name      string
	Role      types.Role
	CompanyID *types.ID
}

// CompanySnapshot is the slice of a company record the policy needs.
type CompanySnapshot struct {
	ID      types.ID
	Name    string
	Admins  []types.ID
	Drivers []types.ID
}

// HasAdmin reports whether id is listed among the company's admins.
func (c *CompanySnapshot) HasAdmin(id types.ID) bool {
	for _, a := range c.Admins {
		if a == id {
			return true
		}
	}
	return false
}

// Detail is the read-side view returned by GetByID, with customer and driver
// resolved to display names and an optional route estimate.
type Detail struct {
	Booking
	CustomerName  string
	DriverName    string
	RouteDuration time.Duration
	RouteDistance string
}
