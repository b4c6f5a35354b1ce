package book

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"agenda-service/api"
	"agenda-service/internal/validate"
	"agenda-service/pkg/response"
	"agenda-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type ServiceBooker interface {
	BookService(ctx context.Context, req *api.BookServiceRequest) (*api.AppointmentResponse, error)
}

type Request struct {
	api.BookServiceRequest
}

type Response struct {
	response.Response
	Appointment api.AppointmentResponse `json:"appointment,omitempty"`
}

func New(log *slog.Logger, booker ServiceBooker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.book.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		if req.ServiceID == "" {
			log.Error("service_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "service_id is required"))
			return
		}

		if req.Day == "" {
			log.Error("day is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "day is required"))
			return
		}

		apt, err := booker.BookService(r.Context(), &req.BookServiceRequest)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("service not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "service not found"))
			return
		}

		if errors.Is(err, response.ErrLocked) {
			log.Error("day is locked")
			w.WriteHeader(http.StatusLocked)
			render.JSON(w, r, response.Error(string(response.LOCKED), "day is locked by another operation"))
			return
		}

		if errors.Is(err, response.ErrOutsideAvailability) {
			log.Error("placement outside availability")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.OUTSIDE_AVAILABILITY), validate.ReasonOutsideAvailability))
			return
		}

		if errors.Is(err, response.ErrServiceNotAllowed) {
			log.Error("service not allowed on block")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.SERVICE_NOT_ALLOWED), validate.ReasonServiceNotAllowed))
			return
		}

		if errors.Is(err, response.ErrAppointmentConflict) {
			log.Error("placement conflicts with another appointment")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), validate.ReasonAppointmentConflict))
			return
		}

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid booking payload", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid booking payload"))
			return
		}

		if err != nil {
			log.Error("Failed to book service", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to book service"))
			return
		}

		log.Info("Service booked", slog.Any("appointment", apt))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Appointment: *apt,
		})
	}
}
