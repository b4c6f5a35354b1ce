package validate

import (
	"time"

	"agenda-service/internal/models"
)

// User-facing reasons, surfaced verbatim by the clients.
const (
	ReasonOutsideAvailability = "En dehors des disponibilités"
	ReasonServiceNotAllowed   = "Ce service n'est pas autorisé sur ce créneau"
	ReasonAppointmentConflict = "Conflit avec un autre rendez-vous"
)

// Result is the structured outcome of a validation question. Failures are
// values, never errors: callers branch on Valid and surface Reason.
type Result struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func ok() Result {
	return Result{Valid: true}
}

func fail(reason string) Result {
	return Result{Valid: false, Reason: reason}
}

// WithinAvailability reports whether [start, end) is fully contained in a
// single "available" block. Partial overlap is not sufficient.
func WithinAvailability(start, end time.Time, blocks []models.AvailabilityBlock) Result {
	for _, block := range blocks {
		if block.Type != models.AvailabilityAvailable {
			continue
		}

		if !block.Start.After(start) && !block.End.Before(end) {
			return ok()
		}
	}

	return fail(ReasonOutsideAvailability)
}

// ServiceAllowed reports whether the service may start at the given instant.
// The containing available block's AllowedServiceIDs decides; absent or
// empty means every service is permitted. No containing block at all fails
// with the outside-availability reason.
func ServiceAllowed(service models.BookableService, start time.Time, blocks []models.AvailabilityBlock) Result {
	block := containingBlock(start, blocks)
	if block == nil {
		return fail(ReasonOutsideAvailability)
	}

	if len(block.AllowedServiceIDs) == 0 {
		return ok()
	}

	for _, id := range block.AllowedServiceIDs {
		if id == service.ID {
			return ok()
		}
	}

	return fail(ReasonServiceNotAllowed)
}

// AppointmentConflict reports whether [start, end) overlaps any non-cancelled
// appointment other than excludeID. Overlap is strict half-open: touching
// endpoints do not conflict.
func AppointmentConflict(start, end time.Time, appointments []models.Appointment, excludeID string) Result {
	for _, apt := range appointments {
		if apt.Status == models.AppointmentCancelled {
			continue
		}
		if excludeID != "" && apt.ID == excludeID {
			continue
		}

		if start.Before(apt.End()) && end.After(apt.Start) {
			return fail(ReasonAppointmentConflict)
		}
	}

	return ok()
}

// ValidateServiceDrop checks a service dropped at start: containment, then
// service compatibility, then conflicts, short-circuiting on the first
// failure. The order guarantees the most fundamental reason wins.
func ValidateServiceDrop(service models.BookableService, start time.Time, blocks []models.AvailabilityBlock, appointments []models.Appointment) Result {
	end := start.Add(time.Duration(service.DurationMinutes) * time.Minute)

	if res := WithinAvailability(start, end, blocks); !res.Valid {
		return res
	}
	if res := ServiceAllowed(service, start, blocks); !res.Valid {
		return res
	}

	return AppointmentConflict(start, end, appointments, "")
}

// ValidateAppointmentMove checks moving an existing appointment to newStart:
// containment, then conflicts excluding the appointment itself. Moves do not
// re-check service compatibility; they preserve the original service choice.
func ValidateAppointmentMove(apt models.Appointment, newStart time.Time, blocks []models.AvailabilityBlock, appointments []models.Appointment) Result {
	end := newStart.Add(time.Duration(apt.DurationMinutes) * time.Minute)

	if res := WithinAvailability(newStart, end, blocks); !res.Valid {
		return res
	}

	return AppointmentConflict(newStart, end, appointments, apt.ID)
}

func containingBlock(point time.Time, blocks []models.AvailabilityBlock) *models.AvailabilityBlock {
	for i := range blocks {
		block := &blocks[i]
		if block.Type != models.AvailabilityAvailable {
			continue
		}

		if !block.Start.After(point) && block.End.After(point) {
			return block
		}
	}

	return nil
}
