// README: Token round-trip and rejection tests.
package auth

import (
	"testing"
	"time"

	"taxihub/internal/types"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Sign("user1", types.RoleDriver)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	id, role, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id != "user1" || role != types.RoleDriver {
		t.Errorf("got %s/%s, want user1/Driver", id, role)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).Sign("user1", types.RoleCustomer)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, _, err := NewManager("secret-b", time.Hour).Verify(token); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)
	token, err := m.Sign("user1", types.RoleCustomer)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, _, err := m.Verify(token); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	for _, token := range []string{"", "not.a.jwt", "aaaa.bbbb.cccc"} {
		if _, _, err := m.Verify(token); err != ErrInvalidToken {
			t.Errorf("token %q: err = %v, want ErrInvalidToken", token, err)
		}
	}
}
