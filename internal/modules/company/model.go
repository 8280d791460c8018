// README: Company record and membership policy.
package company

import (
	"time"

	"taxihub/internal/types"
)

type Company struct {
	ID        types.ID
	Name      string
	Admins    []types.ID
	Drivers   []types.ID
	Bookings  []types.ID
	CreatedAt time.Time
}

func (c *Company) HasAdmin(id types.ID) bool {
	return containsID(c.Admins, id)
}

func (c *Company) HasDriver(id types.ID) bool {
	return containsID(c.Drivers, id)
}

// CanManageCompany reports whether the actor may act on the company: always
// its admins, plus its drivers when allowDriver is set (read-style access).
func CanManageCompany(actorID types.ID, c *Company, allowDriver bool) bool {
	if c == nil || actorID == "" {
		return false
	}
	if c.HasAdmin(actorID) {
		return true
	}
	return allowDriver && c.HasDriver(actorID)
}

// Member is the slice of a user record the roster engine works with.
type Member struct {
	ID        types.ID
	Name      string
	Role      types.Role
	CompanyID *types.ID
	Bookings  []types.ID
}

func containsID(ids []types.ID, id types.ID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
