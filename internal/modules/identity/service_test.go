// README: Account service tests against an in-memory store.
package identity

import (
	"context"
	"errors"
	"testing"

	"taxihub/internal/modules/booking"
	"taxihub/internal/types"
)

type memStore struct {
	users map[types.ID]*User
}

func (m *memStore) Create(_ context.Context, u *User) error {
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) Get(_ context.Context, id types.ID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) List(_ context.Context) ([]User, error) {
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, u *User) error {
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

type stubSigner struct{}

func (stubSigner) Sign(userID types.ID, role types.Role) (string, error) {
	return "token-" + string(userID) + "-" + string(role), nil
}

type memBookings struct {
	bookings map[types.ID]booking.Booking
}

func (m *memBookings) ByIDs(_ context.Context, ids []types.ID) ([]booking.Booking, error) {
	out := make([]booking.Booking, 0, len(ids))
	for _, id := range ids {
		if b, ok := m.bookings[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

type testEnv struct {
	svc      *Service
	store    *memStore
	bookings *memBookings
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:    &memStore{users: map[types.ID]*User{}},
		bookings: &memBookings{bookings: map[types.ID]booking.Booking{}},
	}
	env.svc = NewService(Deps{Store: env.store, Signer: stubSigner{}, Bookings: env.bookings})
	return env
}

func mustRegister(t *testing.T, env *testEnv, name, email, password string) types.ID {
	t.Helper()
	id, err := env.svc.Register(context.Background(), RegisterCommand{
		Name: name, Email: email, Password: password,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return id
}

func TestRegister(t *testing.T) {
	env := newTestEnv()
	id := mustRegister(t, env, "Alice", "Alice@Example.com", "secret")

	u := env.store.users[id]
	if u.Role != types.RoleCustomer {
		t.Errorf("role = %s, want %s", u.Role, types.RoleCustomer)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercased", u.Email)
	}
	if u.PasswordHash == "secret" || u.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if !u.CheckPassword("secret") {
		t.Error("stored hash does not verify the password")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv()
	mustRegister(t, env, "Alice", "alice@example.com", "secret")

	_, err := env.svc.Register(context.Background(), RegisterCommand{
		Name: "Other", Email: "ALICE@example.com", Password: "secret2",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	env := newTestEnv()
	for _, cmd := range []RegisterCommand{
		{Email: "a@b.c", Password: "x"},
		{Name: "A", Password: "x"},
		{Name: "A", Email: "a@b.c"},
	} {
		if _, err := env.svc.Register(context.Background(), cmd); !errors.Is(err, ErrValidation) {
			t.Errorf("cmd %+v: err = %v, want ErrValidation", cmd, err)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv()
	id := mustRegister(t, env, "Alice", "alice@example.com", "secret")

	token, err := env.svc.Authenticate(context.Background(), "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	want := "token-" + string(id) + "-Customer"
	if token != want {
		t.Errorf("token = %q, want %q", token, want)
	}
}

func TestAuthenticateFailures(t *testing.T) {
	env := newTestEnv()
	mustRegister(t, env, "Alice", "alice@example.com", "secret")

	if _, err := env.svc.Authenticate(context.Background(), "alice@example.com", "wrong"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("wrong password err = %v, want ErrAuthenticationFailed", err)
	}
	if _, err := env.svc.Authenticate(context.Background(), "ghost@example.com", "secret"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("unknown email err = %v, want ErrAuthenticationFailed", err)
	}
}

func TestGetByIDSelfOnly(t *testing.T) {
	env := newTestEnv()
	id := mustRegister(t, env, "Alice", "alice@example.com", "secret")
	other := mustRegister(t, env, "Bob", "bob@example.com", "secret")

	if _, err := env.svc.GetByID(context.Background(), id, id); err != nil {
		t.Errorf("self view: %v", err)
	}
	if _, err := env.svc.GetByID(context.Background(), other, id); !errors.Is(err, ErrUnauthorizedView) {
		t.Errorf("other view err = %v, want ErrUnauthorizedView", err)
	}
}

func TestEditProfile(t *testing.T) {
	env := newTestEnv()
	id := mustRegister(t, env, "Alice", "alice@example.com", "secret")

	name := "Alicia"
	unavailable := false
	if err := env.svc.Edit(context.Background(), EditCommand{
		ActorID: id, UserID: id, Name: &name, Available: &unavailable,
	}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if env.store.users[id].Name != "Alicia" {
		t.Errorf("name = %q, want Alicia", env.store.users[id].Name)
	}
	if env.store.users[id].Available {
		t.Error("availability not updated")
	}
}

func TestEditNotSelf(t *testing.T) {
	env := newTestEnv()
	id := mustRegister(t, env, "Alice", "alice@example.com", "secret")
	other := mustRegister(t, env, "Bob", "bob@example.com", "secret")

	name := "Hacked"
	err := env.svc.Edit(context.Background(), EditCommand{ActorID: other, UserID: id, Name: &name})
	if !errors.Is(err, ErrUnauthorizedEdit) {
		t.Errorf("err = %v, want ErrUnauthorizedEdit", err)
	}
}

func TestEditMissingUser(t *testing.T) {
	env := newTestEnv()
	actor := mustRegister(t, env, "Alice", "alice@example.com", "secret")

	// A missing target reports not-found even when the actor would not be
	// allowed to edit it.
	name := "Ghost"
	err := env.svc.Edit(context.Background(), EditCommand{ActorID: actor, UserID: "ghost", Name: &name})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestEditPassword(t *testing.T) {
	env := newTestEnv()
	id := mustRegister(t, env, "Alice", "alice@example.com", "secret")

	newPw := "stronger"
	err := env.svc.Edit(context.Background(), EditCommand{
		ActorID: id, UserID: id, OldPassword: "wrong", NewPassword: &newPw,
	})
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("wrong old password err = %v, want ErrAuthenticationFailed", err)
	}

	if err := env.svc.Edit(context.Background(), EditCommand{
		ActorID: id, UserID: id, OldPassword: "secret", NewPassword: &newPw,
	}); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if !env.store.users[id].CheckPassword("stronger") {
		t.Error("new password does not verify")
	}
}

func TestUserBookings(t *testing.T) {
	env := newTestEnv()
	id := mustRegister(t, env, "Alice", "alice@example.com", "secret")
	other := mustRegister(t, env, "Bob", "bob@example.com", "secret")
	ctx := context.Background()

	if _, err := env.svc.Bookings(ctx, id, id, 0, false); !errors.Is(err, booking.ErrNotFound) {
		t.Errorf("empty history err = %v, want booking.ErrNotFound", err)
	}
	if _, err := env.svc.Bookings(ctx, other, id, 0, false); !errors.Is(err, ErrUnauthorizedView) {
		t.Errorf("other's history err = %v, want ErrUnauthorizedView", err)
	}

	env.bookings.bookings["b1"] = booking.Booking{ID: "b1", CustomerID: id, Status: booking.StatusFinished}
	env.bookings.bookings["b2"] = booking.Booking{ID: "b2", CustomerID: id, Status: booking.StatusPending}
	env.store.users[id].Bookings = []types.ID{"b1", "b2"}

	all, err := env.svc.Bookings(ctx, id, id, 0, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != "b2" {
		t.Errorf("expected newest-first ordering, got %v", all)
	}

	active, err := env.svc.Bookings(ctx, id, id, 0, true)
	if err != nil {
		t.Fatalf("active list: %v", err)
	}
	if len(active) != 1 || active[0].ID != "b2" {
		t.Errorf("active = %v, want [b2]", active)
	}
}
