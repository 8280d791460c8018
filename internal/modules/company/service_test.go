// README: Roster engine tests against in-memory fakes.
package company

import (
	"context"
	"errors"
	"testing"

	"taxihub/internal/modules/booking"
	"taxihub/internal/types"
)

// The production booking store must satisfy the cascade's directory contract.
var _ BookingDirectory = (*booking.Store)(nil)

type memCompanies struct {
	companies map[types.ID]*Company
}

func (m *memCompanies) Create(_ context.Context, c *Company) error {
	cp := *c
	m.companies[c.ID] = &cp
	return nil
}

func (m *memCompanies) GetByName(_ context.Context, name string) (*Company, error) {
	for _, c := range m.companies {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memCompanies) Get(_ context.Context, id types.ID) (*Company, error) {
	c, ok := m.companies[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	cp.Admins = append([]types.ID(nil), c.Admins...)
	cp.Drivers = append([]types.ID(nil), c.Drivers...)
	cp.Bookings = append([]types.ID(nil), c.Bookings...)
	return &cp, nil
}

func (m *memCompanies) AppendDriver(_ context.Context, companyID, driverID types.ID) error {
	c, ok := m.companies[companyID]
	if !ok {
		return ErrNotFound
	}
	c.Drivers = append(c.Drivers, driverID)
	return nil
}

func (m *memCompanies) RemoveDriver(_ context.Context, companyID, driverID types.ID) error {
	c, ok := m.companies[companyID]
	if !ok {
		return ErrNotFound
	}
	for i, id := range c.Drivers {
		if id == driverID {
			c.Drivers = append(c.Drivers[:i], c.Drivers[i+1:]...)
			return nil
		}
	}
	return nil
}

type memRoster struct {
	members map[types.ID]*Member
}

func (m *memRoster) Member(_ context.Context, id types.ID) (*Member, error) {
	u, ok := m.members[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	cp.Bookings = append([]types.ID(nil), u.Bookings...)
	return &cp, nil
}

func (m *memRoster) SetMembership(_ context.Context, userID types.ID, role types.Role, companyID *types.ID) error {
	u, ok := m.members[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Role = role
	u.CompanyID = companyID
	return nil
}

func (m *memRoster) RemoveBooking(_ context.Context, userID, bookingID types.ID) error {
	u, ok := m.members[userID]
	if !ok {
		return ErrUserNotFound
	}
	for i, id := range u.Bookings {
		if id == bookingID {
			u.Bookings = append(u.Bookings[:i], u.Bookings[i+1:]...)
			return nil
		}
	}
	return nil
}

type memBookings struct {
	bookings map[types.ID]*booking.Booking
}

func (m *memBookings) ByIDs(_ context.Context, ids []types.ID) ([]booking.Booking, error) {
	out := make([]booking.Booking, 0, len(ids))
	for _, id := range ids {
		if b, ok := m.bookings[id]; ok {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memBookings) ClearDriver(_ context.Context, bookingID types.ID) error {
	b, ok := m.bookings[bookingID]
	if !ok {
		return booking.ErrNotFound
	}
	b.DriverID = nil
	return nil
}

type testEnv struct {
	svc       *Service
	companies *memCompanies
	roster    *memRoster
	bookings  *memBookings
}

func idPtr(v types.ID) *types.ID { return &v }

func newTestEnv() *testEnv {
	env := &testEnv{
		companies: &memCompanies{companies: map[types.ID]*Company{
			"companyA": {
				ID:      "companyA",
				Name:    "Alpha Cabs",
				Admins:  []types.ID{"adm1"},
				Drivers: []types.ID{"drv1"},
			},
		}},
		roster: &memRoster{members: map[types.ID]*Member{
			"adm1":  {ID: "adm1", Name: "Ann", Role: types.RoleCompanyAdmin, CompanyID: idPtr("companyA")},
			"drv1":  {ID: "drv1", Name: "Dan", Role: types.RoleDriver, CompanyID: idPtr("companyA")},
			"cust1": {ID: "cust1", Name: "Alice", Role: types.RoleCustomer},
		}},
		bookings: &memBookings{bookings: map[types.ID]*booking.Booking{}},
	}
	env.svc = NewService(Deps{
		Store:    env.companies,
		Users:    env.roster,
		Bookings: env.bookings,
	})
	return env
}

func (env *testEnv) addBooking(id types.ID, status booking.Status, driverID *types.ID) {
	env.bookings.bookings[id] = &booking.Booking{
		ID:         id,
		CustomerID: "cust1",
		Status:     status,
		DriverID:   driverID,
	}
}

func TestCreateCompany(t *testing.T) {
	env := newTestEnv()
	id, err := env.svc.Create(context.Background(), CreateCommand{ActorID: "cust1", Name: "Beta Cars"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	c := env.companies.companies[id]
	if c == nil || !c.HasAdmin("cust1") {
		t.Fatal("founder not listed as admin")
	}
	u := env.roster.members["cust1"]
	if u.Role != types.RoleCompanyAdmin || u.CompanyID == nil || *u.CompanyID != id {
		t.Errorf("founder membership = %s/%v, want Company_Admin of %s", u.Role, u.CompanyID, id)
	}
}

func TestCreateCompanyAlreadyAffiliated(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.Create(context.Background(), CreateCommand{ActorID: "drv1", Name: "Beta Cars"})
	if !errors.Is(err, ErrAlreadyAffiliated) {
		t.Errorf("err = %v, want ErrAlreadyAffiliated", err)
	}
}

func TestCreateCompanyDuplicateName(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.Create(context.Background(), CreateCommand{ActorID: "cust1", Name: "Alpha Cabs"})
	if !errors.Is(err, ErrNameTaken) {
		t.Errorf("err = %v, want ErrNameTaken", err)
	}
}

func TestCreateCompanyEmptyName(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.Create(context.Background(), CreateCommand{ActorID: "cust1", Name: "  "})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestGetByID(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if _, err := env.svc.GetByID(ctx, "adm1", "companyA"); err != nil {
		t.Errorf("admin view: %v", err)
	}
	if _, err := env.svc.GetByID(ctx, "drv1", "companyA"); err != nil {
		t.Errorf("driver view: %v", err)
	}
	if _, err := env.svc.GetByID(ctx, "cust1", "companyA"); !errors.Is(err, ErrUnauthorizedView) {
		t.Errorf("outsider view err = %v, want ErrUnauthorizedView", err)
	}
	if _, err := env.svc.GetByID(ctx, "adm1", "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing company err = %v, want ErrNotFound", err)
	}
}

func TestAddDriver(t *testing.T) {
	env := newTestEnv()
	if err := env.svc.AddDriver(context.Background(), "adm1", "companyA", "cust1"); err != nil {
		t.Fatalf("add driver: %v", err)
	}

	u := env.roster.members["cust1"]
	if u.Role != types.RoleDriver {
		t.Errorf("role = %s, want %s", u.Role, types.RoleDriver)
	}
	if u.CompanyID == nil || *u.CompanyID != "companyA" {
		t.Errorf("company = %v, want companyA", u.CompanyID)
	}
	if !env.companies.companies["companyA"].HasDriver("cust1") {
		t.Error("driver not appended to company roster")
	}
}

func TestAddDriverByNonAdmin(t *testing.T) {
	env := newTestEnv()
	err := env.svc.AddDriver(context.Background(), "drv1", "companyA", "cust1")
	if !errors.Is(err, ErrUnauthorizedView) {
		t.Errorf("err = %v, want ErrUnauthorizedView", err)
	}
}

func TestAddDriverUnknownUser(t *testing.T) {
	env := newTestEnv()
	err := env.svc.AddDriver(context.Background(), "adm1", "companyA", "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestAddDriverAlreadyAffiliated(t *testing.T) {
	env := newTestEnv()
	err := env.svc.AddDriver(context.Background(), "adm1", "companyA", "drv1")
	if !errors.Is(err, ErrDriverAlreadyAdded) {
		t.Errorf("existing driver err = %v, want ErrDriverAlreadyAdded", err)
	}

	// A user affiliated elsewhere cannot be added either.
	env.roster.members["cust1"].CompanyID = idPtr("companyB")
	err = env.svc.AddDriver(context.Background(), "adm1", "companyA", "cust1")
	if !errors.Is(err, ErrDriverAlreadyAdded) {
		t.Errorf("affiliated user err = %v, want ErrDriverAlreadyAdded", err)
	}
}

func TestRemoveDriverCascade(t *testing.T) {
	env := newTestEnv()
	env.addBooking("b_active", booking.StatusInProgress, idPtr("drv1"))
	env.addBooking("b_done", booking.StatusFinished, idPtr("drv1"))
	env.roster.members["drv1"].Bookings = []types.ID{"b_active", "b_done"}

	if err := env.svc.RemoveDriver(context.Background(), "adm1", "companyA", "drv1"); err != nil {
		t.Fatalf("remove driver: %v", err)
	}

	if env.bookings.bookings["b_active"].DriverID != nil {
		t.Error("active booking still assigned to removed driver")
	}
	if env.bookings.bookings["b_done"].DriverID == nil {
		t.Error("finished booking must keep its driver record")
	}

	u := env.roster.members["drv1"]
	if u.Role != types.RoleCustomer || u.CompanyID != nil {
		t.Errorf("removed driver = %s/%v, want Customer with no company", u.Role, u.CompanyID)
	}
	if len(u.Bookings) != 1 || u.Bookings[0] != "b_done" {
		t.Errorf("driver bookings = %v, want [b_done]", u.Bookings)
	}
	if env.companies.companies["companyA"].HasDriver("drv1") {
		t.Error("driver still on company roster")
	}
}

func TestRemoveDriverSelf(t *testing.T) {
	env := newTestEnv()
	if err := env.svc.RemoveDriver(context.Background(), "drv1", "companyA", "drv1"); err != nil {
		t.Errorf("self removal: %v", err)
	}
}

func TestRemoveDriverByAnotherDriver(t *testing.T) {
	env := newTestEnv()
	env.companies.companies["companyA"].Drivers = append(env.companies.companies["companyA"].Drivers, "drv2")
	env.roster.members["drv2"] = &Member{ID: "drv2", Name: "Dee", Role: types.RoleDriver, CompanyID: idPtr("companyA")}

	err := env.svc.RemoveDriver(context.Background(), "drv2", "companyA", "drv1")
	if !errors.Is(err, ErrUnauthorizedEdit) {
		t.Errorf("err = %v, want ErrUnauthorizedEdit", err)
	}
}

func TestRemoveDriverNotOnRoster(t *testing.T) {
	env := newTestEnv()
	err := env.svc.RemoveDriver(context.Background(), "adm1", "companyA", "cust1")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestCompanyBookings(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if _, err := env.svc.Bookings(ctx, "adm1", "companyA", 0, false); !errors.Is(err, booking.ErrNotFound) {
		t.Errorf("empty history err = %v, want booking.ErrNotFound", err)
	}

	env.addBooking("b1", booking.StatusFinished, nil)
	env.addBooking("b2", booking.StatusInProgress, nil)
	env.addBooking("b3", booking.StatusArrived, nil)
	env.companies.companies["companyA"].Bookings = []types.ID{"b1", "b2", "b3"}

	all, err := env.svc.Bookings(ctx, "adm1", "companyA", 0, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != "b3" || all[2].ID != "b1" {
		t.Errorf("expected newest-first ordering, got %v", all)
	}

	capped, err := env.svc.Bookings(ctx, "adm1", "companyA", 2, false)
	if err != nil {
		t.Fatalf("capped list: %v", err)
	}
	if len(capped) != 2 || capped[0].ID != "b3" {
		t.Errorf("expected 2 newest bookings, got %v", capped)
	}

	active, err := env.svc.Bookings(ctx, "adm1", "companyA", 0, true)
	if err != nil {
		t.Fatalf("active list: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("expected 2 active bookings, got %v", active)
	}
}

func TestCompanyDrivers(t *testing.T) {
	env := newTestEnv()
	drivers, err := env.svc.Drivers(context.Background(), "adm1", "companyA")
	if err != nil {
		t.Fatalf("drivers: %v", err)
	}
	if len(drivers) != 1 || drivers[0].ID != "drv1" {
		t.Errorf("drivers = %v, want [drv1]", drivers)
	}
}
