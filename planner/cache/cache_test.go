package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Jhol55/agendai-sub000/cmd/models"
	"github.com/Jhol55/agendai-sub000/planner/daterange"
)

type stubAPI struct {
	appointments []models.Appointment
	fetchErr     error
	createErr    error
	updateErr    error
	deleteErr    error

	getCalls    int
	createCalls int
	updateCalls int
	deleteCalls int

	lastOld models.Appointment
	lastNew models.Appointment
}

func (s *stubAPI) GetAppointments(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	s.getCalls++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.appointments, nil
}

func (s *stubAPI) GetAppointment(ctx context.Context, id string) (models.Appointment, error) {
	for _, a := range s.appointments {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Appointment{}, errors.New("not found")
}

func (s *stubAPI) CreateAppointment(ctx context.Context, appt models.Appointment) (models.Appointment, error) {
	s.createCalls++
	if s.createErr != nil {
		return models.Appointment{}, s.createErr
	}
	appt.ID = "server-assigned"
	return appt, nil
}

func (s *stubAPI) UpdateAppointment(ctx context.Context, old, updated models.Appointment) (models.Appointment, error) {
	s.updateCalls++
	s.lastOld, s.lastNew = old, updated
	if s.updateErr != nil {
		return models.Appointment{}, s.updateErr
	}
	return updated, nil
}

func (s *stubAPI) DeleteAppointment(ctx context.Context, id string) error {
	s.deleteCalls++
	return s.deleteErr
}

func mkAppt(id string, day int) models.Appointment {
	start := time.Date(2024, time.March, day, 9, 0, 0, 0, time.UTC)
	return models.Appointment{
		ID:     id,
		Title:  "appt " + id,
		Start:  start,
		End:    start.Add(time.Hour),
		Status: models.AppointmentStatusConfirmed,
	}
}

func testRange() daterange.Range {
	return daterange.Range{
		From: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.March, 31, 23, 59, 0, 0, time.UTC),
	}
}

func TestLoadReplacesPreviousContents(t *testing.T) {
	api := &stubAPI{appointments: []models.Appointment{mkAppt("a", 4), mkAppt("b", 5)}}
	c := New(api)

	if _, err := c.Load(context.Background(), testRange(), ""); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 cached, got %d", c.Len())
	}

	api.appointments = []models.Appointment{mkAppt("c", 6)}
	if _, err := c.Load(context.Background(), testRange(), ""); err != nil {
		t.Fatal(err)
	}

	all := c.All()
	if len(all) != 1 || all[0].ID != "c" {
		t.Fatalf("expected only the fresh set, got %v", all)
	}
}

func TestLoadFailureKeepsPreviousContents(t *testing.T) {
	api := &stubAPI{appointments: []models.Appointment{mkAppt("a", 4)}}
	c := New(api)
	if _, err := c.Load(context.Background(), testRange(), ""); err != nil {
		t.Fatal(err)
	}

	api.fetchErr = errors.New("server down")
	if _, err := c.Load(context.Background(), testRange(), ""); err == nil {
		t.Fatal("expected load error")
	}

	if c.Len() != 1 {
		t.Fatalf("previous contents lost: %d entries", c.Len())
	}
}

func TestLoadDropsInvertedIntervals(t *testing.T) {
	bad := mkAppt("bad", 4)
	bad.Start, bad.End = bad.End, bad.Start
	api := &stubAPI{appointments: []models.Appointment{mkAppt("a", 4), bad}}
	c := New(api)

	if _, err := c.Load(context.Background(), testRange(), ""); err != nil {
		t.Fatal(err)
	}
	for _, a := range c.All() {
		if a.End.Before(a.Start) {
			t.Fatalf("cached appointment %s ends before it starts", a.ID)
		}
	}
	if c.Len() != 1 {
		t.Fatalf("expected the inverted entry to be dropped, got %d entries", c.Len())
	}
}

func TestLoadFiltersByCalendar(t *testing.T) {
	a, b := mkAppt("a", 4), mkAppt("b", 5)
	a.CalendarID, b.CalendarID = "cal-1", "cal-2"
	api := &stubAPI{appointments: []models.Appointment{a, b}}
	c := New(api)

	if _, err := c.Load(context.Background(), testRange(), "cal-1"); err != nil {
		t.Fatal(err)
	}
	all := c.All()
	if len(all) != 1 || all[0].ID != "a" {
		t.Fatalf("expected only cal-1 appointments, got %v", all)
	}
}

func TestCreateAppendsServerResult(t *testing.T) {
	api := &stubAPI{}
	c := New(api)

	created, err := c.Create(context.Background(), models.Appointment{
		Title: "new",
		Start: time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("created appointment has no server id")
	}

	got, ok := c.GetByID(created.ID)
	if !ok {
		t.Fatal("created appointment not cached")
	}
	if got.Title != "new" {
		t.Fatalf("cached title %q", got.Title)
	}
}

func TestCreateFailureLeavesCacheUntouched(t *testing.T) {
	api := &stubAPI{createErr: errors.New("boom")}
	c := New(api)

	_, err := c.Create(context.Background(), mkAppt("", 4))
	if err == nil {
		t.Fatal("expected error")
	}
	if c.Len() != 0 {
		t.Fatalf("cache grew on failure: %d", c.Len())
	}
}

func TestCreateRejectsInvertedInterval(t *testing.T) {
	api := &stubAPI{}
	c := New(api)

	bad := mkAppt("", 4)
	bad.Start, bad.End = bad.End, bad.Start
	if _, err := c.Create(context.Background(), bad); err == nil {
		t.Fatal("expected validation error")
	}
	if api.createCalls != 0 {
		t.Fatal("invalid appointment reached the server")
	}
}

func TestUpdatePreservesIdentity(t *testing.T) {
	api := &stubAPI{appointments: []models.Appointment{mkAppt("a", 4)}}
	c := New(api)
	if _, err := c.Load(context.Background(), testRange(), ""); err != nil {
		t.Fatal(err)
	}

	change := models.Appointment{ID: "a", Status: models.AppointmentStatusCanceled}
	updated, err := c.Update(context.Background(), change)
	if err != nil {
		t.Fatal(err)
	}

	if updated.ID != "a" {
		t.Fatalf("identity changed to %q", updated.ID)
	}
	if updated.Status != models.AppointmentStatusCanceled {
		t.Fatalf("status not applied: %q", updated.Status)
	}
	if updated.Title != "appt a" {
		t.Fatalf("unset fields must keep old values, got title %q", updated.Title)
	}
	if c.Len() != 1 {
		t.Fatalf("update changed entry count to %d", c.Len())
	}

	// The server receives both versions.
	if api.lastOld.Title != "appt a" || api.lastNew.Status != models.AppointmentStatusCanceled {
		t.Fatalf("server saw old=%+v new=%+v", api.lastOld, api.lastNew)
	}
}

func TestUpdateMissSkipsNetwork(t *testing.T) {
	api := &stubAPI{}
	c := New(api)

	_, err := c.Update(context.Background(), models.Appointment{ID: "ghost"})
	if !errors.Is(err, ErrNotCached) {
		t.Fatalf("expected ErrNotCached, got %v", err)
	}
	if api.updateCalls != 0 {
		t.Fatal("cache miss must not hit the server")
	}
}

func TestDeleteRemovesOptimistically(t *testing.T) {
	api := &stubAPI{appointments: []models.Appointment{mkAppt("a", 4), mkAppt("b", 5)}}
	c := New(api)
	if _, err := c.Load(context.Background(), testRange(), ""); err != nil {
		t.Fatal(err)
	}

	if err := c.Delete(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.GetByID("a"); ok {
		t.Fatal("deleted appointment still cached")
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}
}

func TestDeleteRollsBackOnServerFailure(t *testing.T) {
	api := &stubAPI{appointments: []models.Appointment{mkAppt("a", 4), mkAppt("b", 5), mkAppt("c", 6)}}
	c := New(api)
	if _, err := c.Load(context.Background(), testRange(), ""); err != nil {
		t.Fatal(err)
	}

	api.deleteErr = errors.New("rejected")
	if err := c.Delete(context.Background(), "b"); err == nil {
		t.Fatal("expected delete error")
	}

	all := c.All()
	if len(all) != 3 {
		t.Fatalf("expected rollback to restore 3 entries, got %d", len(all))
	}
	if all[1].ID != "b" {
		t.Fatalf("rolled-back entry at wrong position: %v", []string{all[0].ID, all[1].ID, all[2].ID})
	}
}

func TestDeleteMissSkipsNetwork(t *testing.T) {
	api := &stubAPI{}
	c := New(api)

	if err := c.Delete(context.Background(), "ghost"); !errors.Is(err, ErrNotCached) {
		t.Fatalf("expected ErrNotCached, got %v", err)
	}
	if api.deleteCalls != 0 {
		t.Fatal("cache miss must not hit the server")
	}
}

func TestFetchByIDBypassesCache(t *testing.T) {
	api := &stubAPI{appointments: []models.Appointment{mkAppt("a", 4)}}
	c := New(api)

	// Nothing loaded locally, but the server knows the appointment.
	if _, ok := c.GetByID("a"); ok {
		t.Fatal("GetByID must stay cache-local")
	}
	got, err := c.FetchByID(context.Background(), "a")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "a" {
		t.Fatalf("fetched %q", got.ID)
	}
	if c.Len() != 0 {
		t.Fatal("FetchByID must not populate the cache")
	}
}
