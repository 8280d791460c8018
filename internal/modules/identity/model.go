// README: User account record and password hashing.
package identity

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"taxihub/internal/types"
)

type User struct {
	ID           types.ID
	Name         string
	Email        string
	PasswordHash string
	Role         types.Role
	CompanyID    *types.ID
	Bookings     []types.ID
	Available    bool
	CreatedAt    time.Time
}

// SetPassword replaces the stored hash with a bcrypt hash of the plaintext.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}
