// README: Common identifier and role types shared across modules.
package types

// ID is an opaque entity identifier (32-char hex, see NewID).
type ID string

// Role is the closed set of user roles.
type Role string

const (
	RoleCustomer     Role = "Customer"
	RoleDriver       Role = "Driver"
	RoleCompanyAdmin Role = "Company_Admin"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleDriver, RoleCompanyAdmin:
		return true
	}
	return false
}
