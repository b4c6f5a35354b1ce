package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"agenda-service/internal/models"
	"agenda-service/pkg/response"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *Storage) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// #### availability blocks ####

func (s *Storage) CreateAvailabilityBlock(ctx context.Context, block *models.AvailabilityBlock) (string, error) {
	const op = "storage.postgres.CreateAvailabilityBlock"

	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO availability_blocks (id, block_type, start_time, end_time, allowed_service_ids, visible_to_clients)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, string(block.Type), block.Start, block.End, pq.Array(block.AllowedServiceIDs), block.VisibleToClients,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetAvailabilityBlock(ctx context.Context, id string) (*models.AvailabilityBlock, error) {
	const op = "storage.postgres.GetAvailabilityBlock"

	var block models.AvailabilityBlock
	var blockType string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, block_type, start_time, end_time, allowed_service_ids, visible_to_clients
		FROM availability_blocks WHERE id=$1`, id,
	).Scan(&block.ID, &blockType, &block.Start, &block.End, pq.Array(&block.AllowedServiceIDs), &block.VisibleToClients)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	block.Type = models.AvailabilityType(blockType)

	return &block, nil
}

func (s *Storage) ListAvailabilityBlocks(ctx context.Context, from, to time.Time) ([]models.AvailabilityBlock, error) {
	const op = "storage.postgres.ListAvailabilityBlocks"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, block_type, start_time, end_time, allowed_service_ids, visible_to_clients
		FROM availability_blocks
		WHERE start_time < $2 AND end_time > $1
		ORDER BY start_time`, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var blocks []models.AvailabilityBlock
	for rows.Next() {
		var block models.AvailabilityBlock
		var blockType string

		err := rows.Scan(&block.ID, &blockType, &block.Start, &block.End, pq.Array(&block.AllowedServiceIDs), &block.VisibleToClients)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		block.Type = models.AvailabilityType(blockType)
		blocks = append(blocks, block)
	}

	return blocks, nil
}

func (s *Storage) UpdateAvailabilityBlock(ctx context.Context, block *models.AvailabilityBlock) error {
	const op = "storage.postgres.UpdateAvailabilityBlock"

	res, err := s.db.ExecContext(ctx, `
		UPDATE availability_blocks
		SET block_type=$1, start_time=$2, end_time=$3, allowed_service_ids=$4, visible_to_clients=$5
		WHERE id=$6`,
		string(block.Type), block.Start, block.End, pq.Array(block.AllowedServiceIDs), block.VisibleToClients, block.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) DeleteAvailabilityBlock(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteAvailabilityBlock"

	res, err := s.db.ExecContext(ctx, `DELETE FROM availability_blocks WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

// #### appointments ####

func (s *Storage) CreateAppointment(ctx context.Context, tx *sql.Tx, apt *models.Appointment) (string, error) {
	const op = "storage.postgres.CreateAppointment"

	id := uuid.NewString()

	_, err := tx.ExecContext(ctx, `
		INSERT INTO appointments (id, service_id, start_time, duration_minutes, status)
		VALUES ($1, $2, $3, $4, $5)`,
		id, apt.ServiceID, apt.Start, apt.DurationMinutes, string(apt.Status),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	const op = "storage.postgres.GetAppointment"

	var apt models.Appointment
	var status string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, service_id, start_time, duration_minutes, status
		FROM appointments WHERE id=$1`, id,
	).Scan(&apt.ID, &apt.ServiceID, &apt.Start, &apt.DurationMinutes, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	apt.Status = models.AppointmentStatus(status)

	return &apt, nil
}

func (s *Storage) ListAppointments(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	const op = "storage.postgres.ListAppointments"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, service_id, start_time, duration_minutes, status
		FROM appointments
		WHERE start_time < $2 AND start_time + make_interval(mins => duration_minutes) > $1
		ORDER BY start_time`, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var appointments []models.Appointment
	for rows.Next() {
		var apt models.Appointment
		var status string

		err := rows.Scan(&apt.ID, &apt.ServiceID, &apt.Start, &apt.DurationMinutes, &status)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		apt.Status = models.AppointmentStatus(status)
		appointments = append(appointments, apt)
	}

	return appointments, nil
}

func (s *Storage) UpdateAppointmentTimes(ctx context.Context, tx *sql.Tx, id string, start time.Time, durationMinutes int) error {
	const op = "storage.postgres.UpdateAppointmentTimes"

	res, err := tx.ExecContext(ctx, `
		UPDATE appointments SET start_time=$1, duration_minutes=$2 WHERE id=$3`,
		start, durationMinutes, id,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) UpdateAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	const op = "storage.postgres.UpdateAppointmentStatus"

	res, err := s.db.ExecContext(ctx, `UPDATE appointments SET status=$1 WHERE id=$2`, string(status), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

// #### services ####

func (s *Storage) GetService(ctx context.Context, id string) (*models.BookableService, error) {
	const op = "storage.postgres.GetService"

	var service models.BookableService

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, duration_minutes FROM services WHERE id=$1`, id,
	).Scan(&service.ID, &service.Name, &service.DurationMinutes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &service, nil
}

func (s *Storage) ListServices(ctx context.Context) ([]models.BookableService, error) {
	const op = "storage.postgres.ListServices"

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, duration_minutes FROM services ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var services []models.BookableService
	for rows.Next() {
		var service models.BookableService

		err := rows.Scan(&service.ID, &service.Name, &service.DurationMinutes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		services = append(services, service)
	}

	return services, nil
}
