package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"agenda-service/api"
	"agenda-service/internal/lock"
	"agenda-service/internal/models"
	"agenda-service/internal/timegrid"
	"agenda-service/internal/validate"
	"agenda-service/pkg/response"
)

// Service is the commit side of the drag engine: every mutation re-runs the
// scheduling validator against fresh storage reads before writing, because
// the client-side check is advisory only.
type Service struct {
	store  Store
	locker lock.Locker
	grid   timegrid.Config
	loc    *time.Location
}

func NewService(store Store, locker lock.Locker, grid timegrid.Config, loc *time.Location) *Service {
	return &Service{store: store, locker: locker, grid: grid, loc: loc}
}

type Store interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)

	// Availability blocks
	CreateAvailabilityBlock(ctx context.Context, block *models.AvailabilityBlock) (string, error)
	GetAvailabilityBlock(ctx context.Context, id string) (*models.AvailabilityBlock, error)
	ListAvailabilityBlocks(ctx context.Context, from, to time.Time) ([]models.AvailabilityBlock, error)
	UpdateAvailabilityBlock(ctx context.Context, block *models.AvailabilityBlock) error
	DeleteAvailabilityBlock(ctx context.Context, id string) error

	// Appointments
	CreateAppointment(ctx context.Context, tx *sql.Tx, apt *models.Appointment) (string, error)
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	ListAppointments(ctx context.Context, from, to time.Time) ([]models.Appointment, error)
	UpdateAppointmentTimes(ctx context.Context, tx *sql.Tx, id string, start time.Time, durationMinutes int) error
	UpdateAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) error

	// Services
	GetService(ctx context.Context, id string) (*models.BookableService, error)
	ListServices(ctx context.Context) ([]models.BookableService, error)
}

// Availability blocks

func (s *Service) CreateAvailabilityBlock(ctx context.Context, req *api.AvailabilityBlockRequest) (*api.AvailabilityBlockResponse, error) {
	const op = "service.CreateAvailabilityBlock"

	day, err := s.parseDay(req.Day)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid day: %w", op, response.ErrBadRequest)
	}

	blockType := models.AvailabilityType(req.Type)
	switch blockType {
	case models.AvailabilityAvailable, models.AvailabilityBlocked, models.AvailabilityVacation,
		models.AvailabilityBreak, models.AvailabilityImported:
	default:
		return nil, fmt.Errorf("%s: invalid type: %w", op, response.ErrBadRequest)
	}

	if req.EndMinutes-req.StartMinutes < timegrid.MinDuration(timegrid.EntityAvailability) {
		return nil, fmt.Errorf("%s: span below minimum: %w", op, response.ErrBadRequest)
	}

	block := &models.AvailabilityBlock{
		Type:              blockType,
		Start:             timegrid.MinutesToTime(req.StartMinutes, day, s.loc),
		End:               timegrid.MinutesToTime(req.EndMinutes, day, s.loc),
		AllowedServiceIDs: req.AllowedServiceIDs,
		VisibleToClients:  req.VisibleToClients,
	}

	id, err := s.store.CreateAvailabilityBlock(ctx, block)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAvailabilityBlock(ctx, id)
}

func (s *Service) GetAvailabilityBlock(ctx context.Context, id string) (*api.AvailabilityBlockResponse, error) {
	const op = "service.GetAvailabilityBlock"

	block, err := s.store.GetAvailabilityBlock(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return blockResponse(block), nil
}

func (s *Service) GetDaySchedule(ctx context.Context, dayStr string) (*api.DayScheduleResponse, error) {
	const op = "service.GetDaySchedule"

	day, err := s.parseDay(dayStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid day: %w", op, response.ErrBadRequest)
	}

	from, to := s.dayWindow(day)

	blocks, err := s.store.ListAvailabilityBlocks(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	appointments, err := s.store.ListAppointments(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := &api.DayScheduleResponse{
		Blocks:       make([]api.AvailabilityBlockResponse, 0, len(blocks)),
		Appointments: make([]api.AppointmentResponse, 0, len(appointments)),
	}
	for i := range blocks {
		resp.Blocks = append(resp.Blocks, *blockResponse(&blocks[i]))
	}
	for i := range appointments {
		resp.Appointments = append(resp.Appointments, *appointmentResponse(&appointments[i]))
	}

	return resp, nil
}

func (s *Service) MoveAvailabilityBlock(ctx context.Context, id string, req *api.AvailabilityMoveRequest) (*api.AvailabilityBlockResponse, error) {
	const op = "service.MoveAvailabilityBlock"

	day, err := s.parseDay(req.Day)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid day: %w", op, response.ErrBadRequest)
	}

	if req.EndMinutes <= req.StartMinutes {
		return nil, fmt.Errorf("%s: inverted range: %w", op, response.ErrBadRequest)
	}

	// Block writes change what bookings validate against, so they hold the
	// same day lock as the appointment commit paths.
	unlock, err := s.lockDay(ctx, req.Day)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer unlock()

	block, err := s.store.GetAvailabilityBlock(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	block.Start = timegrid.MinutesToTime(req.StartMinutes, day, s.loc)
	block.End = timegrid.MinutesToTime(req.EndMinutes, day, s.loc)

	if err := s.store.UpdateAvailabilityBlock(ctx, block); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAvailabilityBlock(ctx, id)
}

func (s *Service) ResizeAvailabilityBlock(ctx context.Context, id string, req *api.AvailabilityResizeRequest) (*api.AvailabilityBlockResponse, error) {
	const op = "service.ResizeAvailabilityBlock"

	block, err := s.store.GetAvailabilityBlock(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	dayKey := block.Start.In(s.loc).Format("2006-01-02")

	unlock, err := s.lockDay(ctx, dayKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer unlock()

	// The first read only located the day; re-read under the lock.
	block, err = s.store.GetAvailabilityBlock(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	edge := timegrid.MinutesToTime(req.EdgeMinutes, block.Start, s.loc)

	switch req.Edge {
	case "top":
		block.Start = edge
	case "bottom":
		block.End = edge
	default:
		return nil, fmt.Errorf("%s: invalid edge: %w", op, response.ErrBadRequest)
	}

	minSpan := time.Duration(timegrid.MinDuration(timegrid.EntityAvailability)) * time.Minute
	if block.End.Sub(block.Start) < minSpan {
		return nil, fmt.Errorf("%s: span below minimum: %w", op, response.ErrBadRequest)
	}

	if err := s.store.UpdateAvailabilityBlock(ctx, block); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAvailabilityBlock(ctx, id)
}

func (s *Service) DeleteAvailabilityBlock(ctx context.Context, id string) error {
	const op = "service.DeleteAvailabilityBlock"

	err := s.store.DeleteAvailabilityBlock(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Appointments

func (s *Service) GetAppointment(ctx context.Context, id string) (*api.AppointmentResponse, error) {
	const op = "service.GetAppointment"

	apt, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return appointmentResponse(apt), nil
}

func (s *Service) MoveAppointment(ctx context.Context, id string, req *api.AppointmentMoveRequest) (*api.AppointmentResponse, error) {
	const op = "service.MoveAppointment"

	apt, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	day, err := s.parseDay(req.Day)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid day: %w", op, response.ErrBadRequest)
	}

	newStart := timegrid.MinutesToTime(req.StartMinutes, day, s.loc)

	unlock, err := s.lockDay(ctx, req.Day)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer unlock()

	blocks, appointments, err := s.daySnapshot(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if res := validate.ValidateAppointmentMove(*apt, newStart, blocks, appointments); !res.Valid {
		return nil, fmt.Errorf("%s: %w", op, validationErr(res))
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := s.store.UpdateAppointmentTimes(ctx, tx, id, newStart, apt.DurationMinutes); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return s.GetAppointment(ctx, id)
}

func (s *Service) ResizeAppointment(ctx context.Context, id string, req *api.AppointmentResizeRequest) (*api.AppointmentResponse, error) {
	const op = "service.ResizeAppointment"

	apt, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	edge := timegrid.MinutesToTime(req.EdgeMinutes, apt.Start, s.loc)

	newStart := apt.Start
	newEnd := apt.End()

	switch req.Edge {
	case "top":
		newStart = edge
	case "bottom":
		newEnd = edge
	default:
		return nil, fmt.Errorf("%s: invalid edge: %w", op, response.ErrBadRequest)
	}

	duration := int(newEnd.Sub(newStart) / time.Minute)
	if duration < timegrid.MinDuration(timegrid.EntityAppointment) || duration > timegrid.MaxAppointmentDuration {
		return nil, fmt.Errorf("%s: invalid duration: %w", op, response.ErrBadRequest)
	}

	dayKey := newStart.In(s.loc).Format("2006-01-02")

	unlock, err := s.lockDay(ctx, dayKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer unlock()

	blocks, appointments, err := s.daySnapshot(ctx, newStart)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if res := validate.WithinAvailability(newStart, newEnd, blocks); !res.Valid {
		return nil, fmt.Errorf("%s: %w", op, validationErr(res))
	}
	if res := validate.AppointmentConflict(newStart, newEnd, appointments, apt.ID); !res.Valid {
		return nil, fmt.Errorf("%s: %w", op, validationErr(res))
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := s.store.UpdateAppointmentTimes(ctx, tx, id, newStart, duration); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return s.GetAppointment(ctx, id)
}

func (s *Service) BookService(ctx context.Context, req *api.BookServiceRequest) (*api.AppointmentResponse, error) {
	const op = "service.BookService"

	service, err := s.store.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	day, err := s.parseDay(req.Day)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid day: %w", op, response.ErrBadRequest)
	}

	start := timegrid.MinutesToTime(req.StartMinutes, day, s.loc)

	unlock, err := s.lockDay(ctx, req.Day)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer unlock()

	blocks, appointments, err := s.daySnapshot(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if res := validate.ValidateServiceDrop(*service, start, blocks, appointments); !res.Valid {
		return nil, fmt.Errorf("%s: %w", op, validationErr(res))
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	apt := &models.Appointment{
		ServiceID:       service.ID,
		Start:           start,
		DurationMinutes: service.DurationMinutes,
		Status:          models.AppointmentScheduled,
	}

	aptID, err := s.store.CreateAppointment(ctx, tx, apt)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("%s: create appointment: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return s.GetAppointment(ctx, aptID)
}

func (s *Service) CancelAppointment(ctx context.Context, id string) (*api.AppointmentResponse, error) {
	const op = "service.CancelAppointment"

	err := s.store.UpdateAppointmentStatus(ctx, id, models.AppointmentCancelled)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAppointment(ctx, id)
}

// Services

func (s *Service) ListServices(ctx context.Context) ([]api.ServiceResponse, error) {
	const op = "service.ListServices"

	services, err := s.store.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]api.ServiceResponse, 0, len(services))
	for _, service := range services {
		result = append(result, api.ServiceResponse{
			ID:              service.ID,
			Name:            service.Name,
			DurationMinutes: service.DurationMinutes,
		})
	}

	return result, nil
}

// Validation

// DropCheck runs the same validator the live drag preview uses, against
// fresh reads, so clients can surface a reason before attempting a commit.
func (s *Service) DropCheck(ctx context.Context, req *api.DropCheckRequest) (*validate.Result, error) {
	const op = "service.DropCheck"

	service, err := s.store.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	day, err := s.parseDay(req.Day)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid day: %w", op, response.ErrBadRequest)
	}

	blocks, appointments, err := s.daySnapshot(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	start := timegrid.MinutesToTime(req.StartMinutes, day, s.loc)
	res := validate.ValidateServiceDrop(*service, start, blocks, appointments)

	return &res, nil
}

// helpers

func (s *Service) parseDay(day string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", day, s.loc)
}

func (s *Service) dayWindow(day time.Time) (time.Time, time.Time) {
	d := day.In(s.loc)
	from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)

	return from.UTC(), from.AddDate(0, 0, 1).UTC()
}

func (s *Service) daySnapshot(ctx context.Context, day time.Time) ([]models.AvailabilityBlock, []models.Appointment, error) {
	from, to := s.dayWindow(day)

	blocks, err := s.store.ListAvailabilityBlocks(ctx, from, to)
	if err != nil {
		return nil, nil, err
	}

	appointments, err := s.store.ListAppointments(ctx, from, to)
	if err != nil {
		return nil, nil, err
	}

	return blocks, appointments, nil
}

func (s *Service) lockDay(ctx context.Context, dayKey string) (func(), error) {
	lockKey := fmt.Sprintf("day:%s", dayKey)

	locked, err := s.locker.Lock(ctx, lockKey, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("lock error: %w", err)
	}
	if !locked {
		return nil, response.ErrLocked
	}

	return func() {
		_ = s.locker.Unlock(ctx, lockKey)
	}, nil
}

func validationErr(res validate.Result) error {
	switch res.Reason {
	case validate.ReasonServiceNotAllowed:
		return response.ErrServiceNotAllowed
	case validate.ReasonAppointmentConflict:
		return response.ErrAppointmentConflict
	default:
		return response.ErrOutsideAvailability
	}
}

func blockResponse(block *models.AvailabilityBlock) *api.AvailabilityBlockResponse {
	return &api.AvailabilityBlockResponse{
		ID:                block.ID,
		Type:              string(block.Type),
		Start:             block.Start,
		End:               block.End,
		AllowedServiceIDs: block.AllowedServiceIDs,
		VisibleToClients:  block.VisibleToClients,
	}
}

func appointmentResponse(apt *models.Appointment) *api.AppointmentResponse {
	return &api.AppointmentResponse{
		ID:              apt.ID,
		ServiceID:       apt.ServiceID,
		Start:           apt.Start,
		DurationMinutes: apt.DurationMinutes,
		Status:          string(apt.Status),
	}
}
