package models

import "time"

type AvailabilityType string

const (
	AvailabilityAvailable AvailabilityType = "available"
	AvailabilityBlocked   AvailabilityType = "blocked"
	AvailabilityVacation  AvailabilityType = "vacation"
	AvailabilityBreak     AvailabilityType = "break"
	AvailabilityImported  AvailabilityType = "imported"
)

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// AvailabilityBlock is a clinic-defined window constraining where
// appointments may be placed. Only "available" blocks accept appointments;
// an empty AllowedServiceIDs means every service is permitted.
type AvailabilityBlock struct {
	ID                string           `db:"id"`
	Type              AvailabilityType `db:"block_type"`
	Start             time.Time        `db:"start_time"`
	End               time.Time        `db:"end_time"`
	AllowedServiceIDs []string         `db:"allowed_service_ids"`
	VisibleToClients  bool             `db:"visible_to_clients"`
}

type Appointment struct {
	ID              string            `db:"id"`
	ServiceID       string            `db:"service_id"`
	Start           time.Time         `db:"start_time"`
	DurationMinutes int               `db:"duration_minutes"`
	Status          AppointmentStatus `db:"status"`
}

func (a Appointment) End() time.Time {
	return a.Start.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

type BookableService struct {
	ID              string `db:"id"`
	Name            string `db:"name"`
	DurationMinutes int    `db:"duration_minutes"`
}
