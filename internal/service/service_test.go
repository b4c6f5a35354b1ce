package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"agenda-service/api"
	"agenda-service/internal/models"
	"agenda-service/internal/timegrid"
	"agenda-service/internal/validate"
	"agenda-service/pkg/response"
)

type fakeStore struct {
	blocks       map[string]models.AvailabilityBlock
	appointments map[string]models.Appointment
	services     map[string]models.BookableService
	nextID       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		blocks:       make(map[string]models.AvailabilityBlock),
		appointments: make(map[string]models.Appointment),
		services:     make(map[string]models.BookableService),
	}
}

func (f *fakeStore) mintID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

// BeginTx is unreachable in these tests: every covered path either has no
// write or is rejected before the transaction starts.
func (f *fakeStore) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return nil, errors.New("transactions unavailable in tests")
}

func (f *fakeStore) CreateAvailabilityBlock(ctx context.Context, block *models.AvailabilityBlock) (string, error) {
	id := f.mintID("blk")

	b := *block
	b.ID = id
	f.blocks[id] = b

	return id, nil
}

func (f *fakeStore) GetAvailabilityBlock(ctx context.Context, id string) (*models.AvailabilityBlock, error) {
	b, ok := f.blocks[id]
	if !ok {
		return nil, response.ErrNotFound
	}

	return &b, nil
}

func (f *fakeStore) ListAvailabilityBlocks(ctx context.Context, from, to time.Time) ([]models.AvailabilityBlock, error) {
	var out []models.AvailabilityBlock
	for _, b := range f.blocks {
		if b.Start.Before(to) && b.End.After(from) {
			out = append(out, b)
		}
	}

	return out, nil
}

func (f *fakeStore) UpdateAvailabilityBlock(ctx context.Context, block *models.AvailabilityBlock) error {
	if _, ok := f.blocks[block.ID]; !ok {
		return response.ErrNotFound
	}
	f.blocks[block.ID] = *block

	return nil
}

func (f *fakeStore) DeleteAvailabilityBlock(ctx context.Context, id string) error {
	if _, ok := f.blocks[id]; !ok {
		return response.ErrNotFound
	}
	delete(f.blocks, id)

	return nil
}

func (f *fakeStore) CreateAppointment(ctx context.Context, tx *sql.Tx, apt *models.Appointment) (string, error) {
	id := f.mintID("apt")

	a := *apt
	a.ID = id
	f.appointments[id] = a

	return id, nil
}

func (f *fakeStore) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok {
		return nil, response.ErrNotFound
	}

	return &a, nil
}

func (f *fakeStore) ListAppointments(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range f.appointments {
		if a.Start.Before(to) && a.End().After(from) {
			out = append(out, a)
		}
	}

	return out, nil
}

func (f *fakeStore) UpdateAppointmentTimes(ctx context.Context, tx *sql.Tx, id string, start time.Time, durationMinutes int) error {
	a, ok := f.appointments[id]
	if !ok {
		return response.ErrNotFound
	}

	a.Start = start
	a.DurationMinutes = durationMinutes
	f.appointments[id] = a

	return nil
}

func (f *fakeStore) UpdateAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	a, ok := f.appointments[id]
	if !ok {
		return response.ErrNotFound
	}

	a.Status = status
	f.appointments[id] = a

	return nil
}

func (f *fakeStore) GetService(ctx context.Context, id string) (*models.BookableService, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, response.ErrNotFound
	}

	return &s, nil
}

func (f *fakeStore) ListServices(ctx context.Context) ([]models.BookableService, error) {
	var out []models.BookableService
	for _, s := range f.services {
		out = append(out, s)
	}

	return out, nil
}

type fakeLocker struct {
	allow bool
}

func (l fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.allow, nil
}

func (l fakeLocker) Unlock(ctx context.Context, key string) error {
	return nil
}

const testDay = "2025-09-01"

func parisLocation(t *testing.T) *time.Location {
	t.Helper()

	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	return loc
}

func newTestService(t *testing.T, store *fakeStore, dayLocked bool) *Service {
	t.Helper()

	return NewService(store, fakeLocker{allow: !dayLocked}, timegrid.DefaultConfig(), parisLocation(t))
}

func seedOpenBlock(t *testing.T, s *Service, startMinutes, endMinutes int, allowed ...string) string {
	t.Helper()

	resp, err := s.CreateAvailabilityBlock(context.Background(), &api.AvailabilityBlockRequest{
		Day:               testDay,
		StartMinutes:      startMinutes,
		EndMinutes:        endMinutes,
		Type:              "available",
		AllowedServiceIDs: allowed,
	})
	if err != nil {
		t.Fatalf("seed block: %v", err)
	}

	return resp.ID
}

func seedAppointment(store *fakeStore, loc *time.Location, startMinutes, duration int) string {
	id := store.mintID("apt")
	day, _ := time.ParseInLocation("2006-01-02", testDay, loc)

	store.appointments[id] = models.Appointment{
		ID:              id,
		ServiceID:       "svc-1",
		Start:           timegrid.MinutesToTime(startMinutes, day, loc),
		DurationMinutes: duration,
		Status:          models.AppointmentScheduled,
	}

	return id
}

func TestCreateAndGetAvailabilityBlock(t *testing.T) {
	store := newFakeStore()
	s := newTestService(t, store, false)
	loc := parisLocation(t)

	resp, err := s.CreateAvailabilityBlock(context.Background(), &api.AvailabilityBlockRequest{
		Day:          testDay,
		StartMinutes: 540,
		EndMinutes:   720,
		Type:         "available",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if resp.Type != "available" {
		t.Errorf("type = %q", resp.Type)
	}
	if got := timegrid.TimeToMinutes(resp.Start, loc); got != 540 {
		t.Errorf("start minutes = %d, want 540", got)
	}
	if got := timegrid.TimeToMinutes(resp.End, loc); got != 720 {
		t.Errorf("end minutes = %d, want 720", got)
	}

	fetched, err := s.GetAvailabilityBlock(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.ID != resp.ID || !fetched.Start.Equal(resp.Start) {
		t.Errorf("fetched = %+v, created = %+v", fetched, resp)
	}
}

func TestCreateAvailabilityBlockRejectsBadInput(t *testing.T) {
	s := newTestService(t, newFakeStore(), false)

	tests := []struct {
		name string
		req  api.AvailabilityBlockRequest
	}{
		{"unknown type", api.AvailabilityBlockRequest{Day: testDay, StartMinutes: 540, EndMinutes: 600, Type: "party"}},
		{"span below minimum", api.AvailabilityBlockRequest{Day: testDay, StartMinutes: 540, EndMinutes: 555, Type: "available"}},
		{"malformed day", api.AvailabilityBlockRequest{Day: "yesterday", StartMinutes: 540, EndMinutes: 600, Type: "available"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateAvailabilityBlock(context.Background(), &tt.req)
			if !errors.Is(err, response.ErrBadRequest) {
				t.Errorf("err = %v, want ErrBadRequest", err)
			}
		})
	}
}

func TestMoveAvailabilityBlock(t *testing.T) {
	store := newFakeStore()
	s := newTestService(t, store, false)
	loc := parisLocation(t)

	id := seedOpenBlock(t, s, 540, 720)

	resp, err := s.MoveAvailabilityBlock(context.Background(), id, &api.AvailabilityMoveRequest{
		Day:          "2025-09-02",
		StartMinutes: 600,
		EndMinutes:   780,
	})
	if err != nil {
		t.Fatalf("move: %v", err)
	}

	if got := timegrid.TimeToMinutes(resp.Start, loc); got != 600 {
		t.Errorf("moved start minutes = %d, want 600", got)
	}
	if got := resp.Start.In(loc).Day(); got != 2 {
		t.Errorf("moved day-of-month = %d, want 2", got)
	}

	_, err = s.MoveAvailabilityBlock(context.Background(), id, &api.AvailabilityMoveRequest{
		Day: testDay, StartMinutes: 600, EndMinutes: 600,
	})
	if !errors.Is(err, response.ErrBadRequest) {
		t.Errorf("inverted range err = %v, want ErrBadRequest", err)
	}

	_, err = s.MoveAvailabilityBlock(context.Background(), "blk-missing", &api.AvailabilityMoveRequest{
		Day: testDay, StartMinutes: 600, EndMinutes: 660,
	})
	if !errors.Is(err, response.ErrNotFound) {
		t.Errorf("missing block err = %v, want ErrNotFound", err)
	}
}

func TestResizeAvailabilityBlock(t *testing.T) {
	store := newFakeStore()
	s := newTestService(t, store, false)
	loc := parisLocation(t)

	id := seedOpenBlock(t, s, 540, 720)

	resp, err := s.ResizeAvailabilityBlock(context.Background(), id, &api.AvailabilityResizeRequest{
		Edge: "bottom", EdgeMinutes: 780,
	})
	if err != nil {
		t.Fatalf("resize bottom: %v", err)
	}
	if got := timegrid.TimeToMinutes(resp.End, loc); got != 780 {
		t.Errorf("end after resize = %d, want 780", got)
	}

	resp, err = s.ResizeAvailabilityBlock(context.Background(), id, &api.AvailabilityResizeRequest{
		Edge: "top", EdgeMinutes: 600,
	})
	if err != nil {
		t.Fatalf("resize top: %v", err)
	}
	if got := timegrid.TimeToMinutes(resp.Start, loc); got != 600 {
		t.Errorf("start after resize = %d, want 600", got)
	}

	_, err = s.ResizeAvailabilityBlock(context.Background(), id, &api.AvailabilityResizeRequest{
		Edge: "left", EdgeMinutes: 660,
	})
	if !errors.Is(err, response.ErrBadRequest) {
		t.Errorf("invalid edge err = %v, want ErrBadRequest", err)
	}

	// Shrinking below the minimum span is refused, not clamped, server side.
	_, err = s.ResizeAvailabilityBlock(context.Background(), id, &api.AvailabilityResizeRequest{
		Edge: "top", EdgeMinutes: 765,
	})
	if !errors.Is(err, response.ErrBadRequest) {
		t.Errorf("short span err = %v, want ErrBadRequest", err)
	}
}

func TestBlockMutationsWhenDayLocked(t *testing.T) {
	store := newFakeStore()
	id := seedOpenBlock(t, newTestService(t, store, false), 540, 720)

	// Block moves and resizes change what bookings validate against, so
	// they contend for the same day lock as the appointment commits.
	s := newTestService(t, store, true)

	_, err := s.MoveAvailabilityBlock(context.Background(), id, &api.AvailabilityMoveRequest{
		Day: testDay, StartMinutes: 600, EndMinutes: 780,
	})
	if !errors.Is(err, response.ErrLocked) {
		t.Errorf("locked move err = %v, want ErrLocked", err)
	}

	_, err = s.ResizeAvailabilityBlock(context.Background(), id, &api.AvailabilityResizeRequest{
		Edge: "bottom", EdgeMinutes: 780,
	})
	if !errors.Is(err, response.ErrLocked) {
		t.Errorf("locked resize err = %v, want ErrLocked", err)
	}

	// The block is untouched either way.
	block, err := s.GetAvailabilityBlock(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := timegrid.TimeToMinutes(block.Start, parisLocation(t)); got != 540 {
		t.Errorf("start after rejected mutations = %d, want 540", got)
	}
}

func TestDeleteAvailabilityBlock(t *testing.T) {
	store := newFakeStore()
	s := newTestService(t, store, false)

	id := seedOpenBlock(t, s, 540, 720)

	if err := s.DeleteAvailabilityBlock(context.Background(), id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.GetAvailabilityBlock(context.Background(), id); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("get after delete err = %v, want ErrNotFound", err)
	}

	if err := s.DeleteAvailabilityBlock(context.Background(), id); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("double delete err = %v, want ErrNotFound", err)
	}
}

func TestBookServiceRejections(t *testing.T) {
	store := newFakeStore()
	s := newTestService(t, store, false)
	loc := parisLocation(t)

	store.services["svc-1"] = models.BookableService{ID: "svc-1", Name: "Consultation", DurationMinutes: 60}

	// No availability at all.
	_, err := s.BookService(context.Background(), &api.BookServiceRequest{
		ServiceID: "svc-1", Day: testDay, StartMinutes: 540,
	})
	if !errors.Is(err, response.ErrOutsideAvailability) {
		t.Errorf("empty day err = %v, want ErrOutsideAvailability", err)
	}

	// Block restricted to a different service.
	restrictedID := seedOpenBlock(t, s, 540, 720, "svc-2")
	_, err = s.BookService(context.Background(), &api.BookServiceRequest{
		ServiceID: "svc-1", Day: testDay, StartMinutes: 540,
	})
	if !errors.Is(err, response.ErrServiceNotAllowed) {
		t.Errorf("restricted block err = %v, want ErrServiceNotAllowed", err)
	}
	if err := s.DeleteAvailabilityBlock(context.Background(), restrictedID); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	// Open block, but the slot is taken.
	seedOpenBlock(t, s, 540, 720)
	seedAppointment(store, loc, 570, 60)

	_, err = s.BookService(context.Background(), &api.BookServiceRequest{
		ServiceID: "svc-1", Day: testDay, StartMinutes: 540,
	})
	if !errors.Is(err, response.ErrAppointmentConflict) {
		t.Errorf("occupied slot err = %v, want ErrAppointmentConflict", err)
	}

	_, err = s.BookService(context.Background(), &api.BookServiceRequest{
		ServiceID: "svc-missing", Day: testDay, StartMinutes: 540,
	})
	if !errors.Is(err, response.ErrNotFound) {
		t.Errorf("unknown service err = %v, want ErrNotFound", err)
	}
}

func TestBookServiceWhenDayLocked(t *testing.T) {
	store := newFakeStore()
	store.services["svc-1"] = models.BookableService{ID: "svc-1", DurationMinutes: 60}

	s := newTestService(t, store, true)

	_, err := s.BookService(context.Background(), &api.BookServiceRequest{
		ServiceID: "svc-1", Day: testDay, StartMinutes: 540,
	})
	if !errors.Is(err, response.ErrLocked) {
		t.Errorf("locked day err = %v, want ErrLocked", err)
	}
}

func TestMoveAppointmentRejections(t *testing.T) {
	store := newFakeStore()
	s := newTestService(t, store, false)
	loc := parisLocation(t)

	seedOpenBlock(t, s, 540, 720)
	aptID := seedAppointment(store, loc, 540, 30)
	seedAppointment(store, loc, 600, 30)

	_, err := s.MoveAppointment(context.Background(), aptID, &api.AppointmentMoveRequest{
		Day: testDay, StartMinutes: 590,
	})
	if !errors.Is(err, response.ErrAppointmentConflict) {
		t.Errorf("conflicting move err = %v, want ErrAppointmentConflict", err)
	}

	// 700 + 30min runs past the block's 12:00 end.
	_, err = s.MoveAppointment(context.Background(), aptID, &api.AppointmentMoveRequest{
		Day: testDay, StartMinutes: 700,
	})
	if !errors.Is(err, response.ErrOutsideAvailability) {
		t.Errorf("overflowing move err = %v, want ErrOutsideAvailability", err)
	}
}

func TestResizeAppointmentRejectsBadDuration(t *testing.T) {
	store := newFakeStore()
	s := newTestService(t, store, false)
	loc := parisLocation(t)

	aptID := seedAppointment(store, loc, 540, 30)

	// Top edge past the end inverts the range.
	_, err := s.ResizeAppointment(context.Background(), aptID, &api.AppointmentResizeRequest{
		Edge: "top", EdgeMinutes: 600,
	})
	if !errors.Is(err, response.ErrBadRequest) {
		t.Errorf("inverted resize err = %v, want ErrBadRequest", err)
	}

	// Bottom edge stretching past the duration ceiling.
	_, err = s.ResizeAppointment(context.Background(), aptID, &api.AppointmentResizeRequest{
		Edge: "bottom", EdgeMinutes: 540 + timegrid.MaxAppointmentDuration + 30,
	})
	if !errors.Is(err, response.ErrBadRequest) {
		t.Errorf("over-ceiling resize err = %v, want ErrBadRequest", err)
	}
}

func TestCancelAppointment(t *testing.T) {
	store := newFakeStore()
	s := newTestService(t, store, false)
	loc := parisLocation(t)

	aptID := seedAppointment(store, loc, 540, 30)

	resp, err := s.CancelAppointment(context.Background(), aptID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if resp.Status != string(models.AppointmentCancelled) {
		t.Errorf("status = %q, want cancelled", resp.Status)
	}

	if _, err := s.CancelAppointment(context.Background(), "apt-missing"); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("cancel missing err = %v, want ErrNotFound", err)
	}
}

func TestDropCheck(t *testing.T) {
	store := newFakeStore()
	s := newTestService(t, store, false)

	store.services["svc-1"] = models.BookableService{ID: "svc-1", DurationMinutes: 60}
	seedOpenBlock(t, s, 540, 720)

	res, err := s.DropCheck(context.Background(), &api.DropCheckRequest{
		ServiceID: "svc-1", Day: testDay, StartMinutes: 540,
	})
	if err != nil {
		t.Fatalf("drop check: %v", err)
	}
	if !res.Valid {
		t.Errorf("clean drop = %+v, want valid", res)
	}

	res, err = s.DropCheck(context.Background(), &api.DropCheckRequest{
		ServiceID: "svc-1", Day: testDay, StartMinutes: 700,
	})
	if err != nil {
		t.Fatalf("drop check: %v", err)
	}
	if res.Valid || res.Reason != validate.ReasonOutsideAvailability {
		t.Errorf("overflowing drop = %+v, want %q", res, validate.ReasonOutsideAvailability)
	}
}

func TestGetDaySchedule(t *testing.T) {
	store := newFakeStore()
	s := newTestService(t, store, false)
	loc := parisLocation(t)

	seedOpenBlock(t, s, 540, 720)
	seedAppointment(store, loc, 600, 30)

	resp, err := s.GetDaySchedule(context.Background(), testDay)
	if err != nil {
		t.Fatalf("day schedule: %v", err)
	}
	if len(resp.Blocks) != 1 || len(resp.Appointments) != 1 {
		t.Fatalf("schedule = %d blocks, %d appointments", len(resp.Blocks), len(resp.Appointments))
	}

	// An adjacent day sees neither.
	empty, err := s.GetDaySchedule(context.Background(), "2025-09-02")
	if err != nil {
		t.Fatalf("day schedule: %v", err)
	}
	if len(empty.Blocks) != 0 || len(empty.Appointments) != 0 {
		t.Errorf("adjacent day not empty: %+v", empty)
	}
}

func TestListServices(t *testing.T) {
	store := newFakeStore()
	s := newTestService(t, store, false)

	store.services["svc-1"] = models.BookableService{ID: "svc-1", Name: "Consultation", DurationMinutes: 30}
	store.services["svc-2"] = models.BookableService{ID: "svc-2", Name: "Suivi", DurationMinutes: 45}

	services, err := s.ListServices(context.Background())
	if err != nil {
		t.Fatalf("list services: %v", err)
	}
	if len(services) != 2 {
		t.Errorf("len = %d, want 2", len(services))
	}
}
