// README: Pure authorization decisions over booking, actor, and company snapshots.
package booking

import "taxihub/internal/types"

// CanViewOrEditBooking reports whether the actor may view or edit the booking:
// the booking's customer, its driver, or an admin of its claiming company.
// A nil actor is never authorized. A booking without a customer reference is
// treated as corrupt and is never viewable.
func CanViewOrEditBooking(actor *Actor, b *Booking) bool {
	if actor == nil || b == nil || b.CustomerID == "" {
		return false
	}
	if actor.ID == b.CustomerID {
		return true
	}
	if b.DriverID != nil && actor.ID == *b.DriverID {
		return true
	}
	if actor.Role == types.RoleCompanyAdmin && actor.CompanyID != nil &&
		b.CompanyID != nil && *actor.CompanyID == *b.CompanyID {
		return true
	}
	return false
}

// CanClaimBooking reports whether the actor may claim the booking for the
// company: the booking must still be unallocated and the actor must be one of
// the company's admins.
func CanClaimBooking(actor *Actor, b *Booking, c *CompanySnapshot) bool {
	if actor == nil || b == nil || c == nil {
		return false
	}
	return b.Status == StatusPending && c.HasAdmin(actor.ID)
}

// CanReleaseBooking reports whether the actor may return the booking to the
// unallocated pool. An already-Pending booking cannot be released again.
func CanReleaseBooking(actor *Actor, b *Booking) bool {
	if b == nil || b.Status == StatusPending {
		return false
	}
	return CanViewOrEditBooking(actor, b)
}
