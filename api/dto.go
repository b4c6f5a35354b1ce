package api

import "time"

// Availability blocks

type AvailabilityBlockRequest struct {
	Day               string   `json:"day"` // "2006-01-02", clinic timezone
	StartMinutes      int      `json:"start_minutes"`
	EndMinutes        int      `json:"end_minutes"`
	Type              string   `json:"type"`
	AllowedServiceIDs []string `json:"allowed_service_ids,omitempty"`
	VisibleToClients  bool     `json:"visible_to_clients"`
}

type AvailabilityBlockResponse struct {
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	AllowedServiceIDs []string  `json:"allowed_service_ids,omitempty"`
	VisibleToClients  bool      `json:"visible_to_clients"`
}

type AvailabilityMoveRequest struct {
	Day          string `json:"day"`
	StartMinutes int    `json:"start_minutes"`
	EndMinutes   int    `json:"end_minutes"`
}

type AvailabilityResizeRequest struct {
	Edge        string `json:"edge"` // "top" | "bottom"
	EdgeMinutes int    `json:"edge_minutes"`
}

// Appointments

type AppointmentResponse struct {
	ID              string    `json:"id"`
	ServiceID       string    `json:"service_id"`
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
}

type AppointmentMoveRequest struct {
	Day          string `json:"day"`
	StartMinutes int    `json:"start_minutes"`
}

type AppointmentResizeRequest struct {
	Edge        string `json:"edge"`
	EdgeMinutes int    `json:"edge_minutes"`
}

type BookServiceRequest struct {
	ServiceID    string `json:"service_id"`
	Day          string `json:"day"`
	StartMinutes int    `json:"start_minutes"`
}

// Services

type ServiceResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
}

// Validation

type DropCheckRequest struct {
	ServiceID    string `json:"service_id"`
	Day          string `json:"day"`
	StartMinutes int    `json:"start_minutes"`
}

type DayScheduleResponse struct {
	Blocks       []AvailabilityBlockResponse `json:"blocks"`
	Appointments []AppointmentResponse       `json:"appointments"`
}
