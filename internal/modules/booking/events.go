// README: Lifecycle events emitted to the message broker, best-effort.
package booking

import (
	"context"
	"time"

	"taxihub/internal/types"
)

const (
	EventCreated       = "created"
	EventClaimed       = "claimed"
	EventReleased      = "released"
	EventStatusChanged = "status_changed"
	EventDriverChanged = "driver_changed"
)

type Event struct {
	Kind       string
	BookingID  types.ID
	CustomerID types.ID
	DriverID   *types.ID
	CompanyID  *types.ID
	Status     Status
	At         time.Time
}

// EventPublisher delivers lifecycle events to interested consumers. Publish
// failures never fail the originating operation.
type EventPublisher interface {
	Publish(ctx context.Context, e Event) error
}
