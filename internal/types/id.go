// README: Random entity ID generation.
package types

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random 32-char hex identifier.
func NewID() ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return ID(hex.EncodeToString(b[:]))
}
